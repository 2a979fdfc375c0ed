// Package pdf renderiza el aditivo de contrato en A4 con Maroto v2.
//
// Layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: ADITIVO AO CONTRATO DE LOCAÇÃO DE EQUIPAMENTO       │
//	│  Empresa + CNPJ                                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  1. DADOS DO ASSINANTE                                       │
//	│  2. DADOS DO APARELHO                                        │
//	│  3. DADOS DA CONTRATAÇÃO                                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Texto de aceite + fecha + línea de firma                    │
//	│  FOOTER: Página N                                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/trek-api/internal/application/contract"
)

// Title encabezado de todas las páginas.
const Title = "ADITIVO AO CONTRATO DE LOCAÇÃO DE EQUIPAMENTO"

// AcceptanceText declaración de aceite digital impresa antes de la firma.
const AcceptanceText = "Ao assinar este documento, o Assinante declara que leu e concorda com todos os termos " +
	"do Contrato-Mãe. Este documento foi gerado eletronicamente após validação de aceite digital."

// SignatureLabel rótulo bajo la línea de firma.
const SignatureLabel = "Assinatura Digital - TREK"

const dateLayout = "02/01/2006"

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Field par rótulo/valor de una sección.
type Field struct {
	Label string
	Value string
}

// Section sección numerada del aditivo.
type Section struct {
	Title  string
	Fields []Field
}

// ── Generator ─────────────────────────────────────────────────────────────────

// ContractGenerator implementa contract.Generator usando Maroto v2.
type ContractGenerator struct{}

var _ contract.Generator = (*ContractGenerator)(nil)

// NewContractGenerator construye el generador.
func NewContractGenerator() *ContractGenerator { return &ContractGenerator{} }

// Generate genera el PDF del aditivo y devuelve sus bytes.
func (g *ContractGenerator) Generate(ctx context.Context, d contract.Data) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current}",
			Place:   props.Bottom,
			Style:   fontstyle.Italic,
			Size:    8,
			Color:   colorGray,
		}).
		WithTitle(Title, true).
		WithAuthor(d.Company.Name, true).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterHeader(headerRows(d.Company)...); err != nil {
		return nil, fmt.Errorf("pdf: registrar encabezado: %w", err)
	}

	for i, s := range Sections(d) {
		m.AddRows(sectionRows(i+1, s)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(acceptanceRows(d)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// Sections contenido de las tres secciones de datos, en orden. No depende de Maroto.
func Sections(d contract.Data) []Section {
	imei := d.Device.IMEI
	if strings.TrimSpace(imei) == "" {
		imei = contract.IMEIPlaceholder
	}
	return []Section{
		{
			Title: "DADOS DO ASSINANTE",
			Fields: []Field{
				{"Nome", d.Subscriber.Name},
				{"CPF", d.Subscriber.CPF},
				{"Endereço", d.Subscriber.Address},
				{"Celular", d.Subscriber.Phone},
				{"E-mail", d.Subscriber.Email},
			},
		},
		{
			Title: "DADOS DO APARELHO",
			Fields: []Field{
				{"Marca", d.Device.Brand},
				{"Modelo", d.Device.Model},
				{"Descrição", d.Device.Description},
				{"IMEI", imei},
			},
		},
		{
			Title: "DADOS DA CONTRATAÇÃO",
			Fields: []Field{
				{"Data de Início", formatDate(d.Terms.StartDate)},
				{"Data Final", formatDate(d.Terms.EndDate)},
				{"Qtd. Meses", strconv.Itoa(d.Terms.Months)},
				{"Valor (c/ Seg)", FormatMoney(d.Terms.MonthlyTotal)},
				{"Valor Residual", FormatMoney(d.Terms.Residual)},
			},
		},
	}
}

// FormatMoney "R$ 0.00" con dos decimales; si el valor no es numérico lo devuelve tal cual.
func FormatMoney(raw string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	return fmt.Sprintf("R$ %.2f", v)
}

// ── Filas ─────────────────────────────────────────────────────────────────────

func headerRows(company contract.Issuer) []core.Row {
	issuer := company.Name
	if company.CNPJ != "" {
		issuer += "  |  CNPJ: " + company.CNPJ
	}
	return []core.Row{
		row.New(10).Add(col.New(12).Add(
			text.New(Title, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center, Color: colorPrimary, Top: 2,
			}),
		)),
		row.New(6).Add(col.New(12).Add(
			text.New(issuer, props.Text{Size: 8, Align: align.Center, Color: colorGray}),
		)),
		line.NewRow(4, props.Line{Color: colorPrimary, Thickness: 0.5}),
	}
}

func sectionRows(n int, s Section) []core.Row {
	rows := []core.Row{
		row.New(9).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%d. %s", n, s.Title), props.Text{
				Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 2,
			}),
		)),
	}
	for _, f := range s.Fields {
		height := 6.0
		if len(f.Value) > 80 {
			height = 11
		}
		rows = append(rows, row.New(height).Add(
			col.New(3).Add(text.New(f.Label+":", props.Text{Style: fontstyle.Bold, Size: 10})),
			col.New(9).Add(text.New(f.Value, props.Text{Size: 10})),
		))
	}
	return append(rows, row.New(4))
}

func acceptanceRows(d contract.Data) []core.Row {
	accepted := "Aceite digital registrado em " + d.AcceptedAt.Format("02/01/2006 15:04")
	if d.AcceptedAt.IsZero() {
		accepted = "Aceite digital registrado"
	}
	return []core.Row{
		row.New(14).Add(col.New(12).Add(
			text.New(AcceptanceText, props.Text{Style: fontstyle.Italic, Size: 9, Top: 3}),
		)),
		row.New(6).Add(col.New(12).Add(
			text.New(accepted, props.Text{Size: 8, Color: colorGray}),
		)),
		row.New(14),
		row.New(6).Add(col.New(12).Add(
			text.New(strings.Repeat(".", 50), props.Text{Align: align.Center}),
		)),
		row.New(6).Add(col.New(12).Add(
			text.New(SignatureLabel, props.Text{Align: align.Center, Style: fontstyle.Bold}),
		)),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
