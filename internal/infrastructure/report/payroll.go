// Package report escribe el relatório de descontos en xlsx con excelize.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/trek-api/internal/application/reports"
)

// SheetName hoja única del relatório.
const SheetName = "Descontos"

var headers = []string{"Pedido", "Colaborador", "CPF", "Empresa", "Aparelho", "Status", "Assinado em", "Valor mensal (R$)"}

var _ reports.PayrollWriter = (*PayrollWriter)(nil)

// PayrollWriter implementa reports.PayrollWriter.
type PayrollWriter struct{}

// NewPayrollWriter construye el writer.
func NewPayrollWriter() *PayrollWriter { return &PayrollWriter{} }

// WritePayroll una fila por pedido y una fila final con el total. Sin pedidos devuelve solo el
// encabezado y el total en cero.
func (PayrollWriter) WritePayroll(rows []reports.PayrollRow, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("renombrar hoja: %w", err)
	}
	if err := setupSheet(f); err != nil {
		return nil, err
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("estilo moneda: %w", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			r.OrderID, r.EmployeeName, r.CPF, r.CompanyName, r.Device, r.Status,
			r.SignedAt.Format("02/01/2006"), r.MonthlyTotal.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("fila %d: %w", i+2, err)
		}
	}

	totalRow := len(rows) + 2
	if err := f.SetCellValue(SheetName, fmt.Sprintf("G%d", totalRow), "TOTAL"); err != nil {
		return nil, err
	}
	formula := "0"
	if len(rows) > 0 {
		formula = fmt.Sprintf("SUM(H2:H%d)", totalRow-1)
	}
	if err := f.SetCellFormula(SheetName, fmt.Sprintf("H%d", totalRow), formula); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "H2", fmt.Sprintf("H%d", totalRow), money); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(SheetName, fmt.Sprintf("A%d", totalRow+2),
		"Gerado em "+generatedAt.Format("02/01/2006 15:04")); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("escribir xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setupSheet(f *excelize.File) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#00467F"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("estilo encabezado: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("encabezado: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("estilo encabezado: %w", err)
	}
	widths := map[string]float64{"A": 38, "B": 30, "C": 14, "D": 30, "E": 28, "F": 16, "G": 14, "H": 18}
	for col, w := range widths {
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return fmt.Errorf("ancho de columna: %w", err)
		}
	}
	return nil
}
