package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestParseCatalog_SemicolonBrazilianPrices(t *testing.T) {
	csv := "\ufeffMarca;Modelo;Descricao;Mensalidade;Seguro;Residual\n" +
		"Samsung;Galaxy S23;128GB;R$ 1.099,90;19,90;850,50\n" +
		";sem marca;;;;\n" +
		"Motorola;Moto G84;;89,00;;\n"

	items, err := parseCatalog(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Samsung", items[0].Brand)
	assert.Equal(t, "1099.9", items[0].MonthlyPrice.String())
	assert.Equal(t, "19.9", items[0].InsurancePrice.String())
	assert.Equal(t, "850.5", items[0].ResidualValue.String())
	assert.Nil(t, items[1].InsurancePrice)
	assert.Nil(t, items[1].ResidualValue)
}

func TestParseCatalog_StableIDs(t *testing.T) {
	csv := "marca,modelo,mensalidade\nApple,iPhone 15,150.00\n"
	a, err := parseCatalog(strings.NewReader(csv))
	require.NoError(t, err)
	b, err := parseCatalog(strings.NewReader(strings.ReplaceAll(csv, "Apple", "APPLE")))
	require.NoError(t, err)
	assert.Equal(t, a[0].ID, b[0].ID, "el id no depende de mayúsculas")
}

func TestParseCatalog_Errors(t *testing.T) {
	_, err := parseCatalog(strings.NewReader("marca;preco\nX;1\n"))
	assert.ErrorContains(t, err, "modelo")

	_, err = parseCatalog(strings.NewReader("marca;modelo;mensalidade\nX;Y;abc\n"))
	assert.ErrorContains(t, err, "línea 2")

	_, err = parseCatalog(strings.NewReader("marca;modelo;seguro\nX;Y;-5\n"))
	assert.Error(t, err)
}

func TestParseCatalog_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("marca;modelo;descricao\nXiaomi;Redmi Note 13;Câmera de 108MP\n")
	require.NoError(t, err)

	items, err := parseCatalog(transform.NewReader(strings.NewReader(encoded), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Câmera de 108MP", items[0].Description)
}

func TestWriteSQL(t *testing.T) {
	items, err := parseCatalog(strings.NewReader("marca;modelo;mensalidade\nLG;K62 'Plus';49,90\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, items))
	out := buf.String()
	assert.Contains(t, out, "'K62 ''Plus'''")
	assert.Contains(t, out, "49.90, NULL, NULL")
	assert.Contains(t, out, "ON CONFLICT (id) DO UPDATE")
}
