package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// catalogNamespace base de los ids deterministas: volver a correr el seed actualiza en vez de duplicar.
var catalogNamespace = uuid.MustParse("6f1b7c1e-4d1a-4c55-9a7e-7472656b0001")

type item struct {
	ID             string
	Brand          string
	Model          string
	Description    string
	ImageURL       string
	MonthlyPrice   *decimal.Decimal
	InsurancePrice *decimal.Decimal
	ResidualValue  *decimal.Decimal
}

// columnas esperadas (el orden del proveedor varía; se ubican por encabezado).
var columns = []string{"marca", "modelo", "descricao", "mensalidade", "seguro", "residual", "imagem"}

// parseCatalog lee el CSV (';' o ',') con encabezado. Filas sin marca o modelo se ignoran.
func parseCatalog(r io.Reader) ([]item, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")
	firstLine, _, _ := strings.Cut(text, "\n")

	reader := csv.NewReader(strings.NewReader(text))
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range columns[:2] {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	var items []item
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		it := item{
			Brand:       get("marca"),
			Model:       get("modelo"),
			Description: get("descricao"),
			ImageURL:    get("imagem"),
		}
		if it.Brand == "" || it.Model == "" {
			continue
		}
		for name, dst := range map[string]**decimal.Decimal{
			"mensalidade": &it.MonthlyPrice,
			"seguro":      &it.InsurancePrice,
			"residual":    &it.ResidualValue,
		} {
			v, err := parsePrice(get(name))
			if err != nil {
				return nil, fmt.Errorf("línea %d, %s: %w", line, name, err)
			}
			*dst = v
		}
		it.ID = uuid.NewSHA1(catalogNamespace, []byte(strings.ToLower(it.Brand+"|"+it.Model))).String()
		items = append(items, it)
	}
	return items, nil
}

// parsePrice acepta "1.234,56", "1234,56", "1234.56" y "R$ 99,90". Vacío = nulo.
func parsePrice(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return nil, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("precio negativo %s", d)
	}
	return &d, nil
}

// writeSQL escribe un INSERT ... ON CONFLICT por aparelho.
func writeSQL(w io.Writer, items []item) error {
	if _, err := io.WriteString(w, "-- Catálogo de aparelhos (generado por cmd/seed)\n\n"); err != nil {
		return err
	}
	for _, it := range items {
		_, err := fmt.Fprintf(w,
			"INSERT INTO products (id, brand, model, description, image_url, monthly_price, insurance_price, residual_value)\n"+
				"VALUES ('%s', '%s', '%s', '%s', '%s', %s, %s, %s)\n"+
				"ON CONFLICT (id) DO UPDATE SET description = EXCLUDED.description, image_url = EXCLUDED.image_url,\n"+
				"  monthly_price = EXCLUDED.monthly_price, insurance_price = EXCLUDED.insurance_price,\n"+
				"  residual_value = EXCLUDED.residual_value, updated_at = now();\n",
			it.ID, escapeSQL(it.Brand), escapeSQL(it.Model), escapeSQL(it.Description), escapeSQL(it.ImageURL),
			sqlNumeric(it.MonthlyPrice), sqlNumeric(it.InsurancePrice), sqlNumeric(it.ResidualValue))
		if err != nil {
			return err
		}
	}
	return nil
}

func sqlNumeric(d *decimal.Decimal) string {
	if d == nil {
		return "NULL"
	}
	return d.StringFixed(2)
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
