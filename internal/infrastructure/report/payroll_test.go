package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/trek-api/internal/application/reports"
	"github.com/jhoicas/trek-api/internal/infrastructure/report"
)

func TestWritePayroll(t *testing.T) {
	signed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rows := []reports.PayrollRow{
		{OrderID: "ord-1", EmployeeName: "Maria Oliveira", CPF: "52998224725", CompanyName: "ACME Ltda",
			Device: "Samsung Galaxy S23", Status: "dispatched", SignedAt: signed,
			MonthlyTotal: decimal.RequireFromString("109.80")},
		{OrderID: "ord-2", EmployeeName: "Pedro Santos", CPF: "11144477735", CompanyName: "ACME Ltda",
			Device: "Apple iPhone 15", Status: "contract_signed", SignedAt: signed,
			MonthlyTotal: decimal.RequireFromString("150")},
	}

	t.Run("rows and total", func(t *testing.T) {
		out, err := report.NewPayrollWriter().WritePayroll(rows, signed)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(out))
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{report.SheetName}, f.GetSheetList())

		header, err := f.GetCellValue(report.SheetName, "B1")
		require.NoError(t, err)
		assert.Equal(t, "Colaborador", header)

		name, err := f.GetCellValue(report.SheetName, "B3")
		require.NoError(t, err)
		assert.Equal(t, "Pedro Santos", name)

		date, err := f.GetCellValue(report.SheetName, "G2")
		require.NoError(t, err)
		assert.Equal(t, "10/03/2026", date)

		formula, err := f.GetCellFormula(report.SheetName, "H4")
		require.NoError(t, err)
		assert.Equal(t, "SUM(H2:H3)", formula)

		label, err := f.GetCellValue(report.SheetName, "G4")
		require.NoError(t, err)
		assert.Equal(t, "TOTAL", label)
	})

	t.Run("empty report keeps the header", func(t *testing.T) {
		out, err := report.NewPayrollWriter().WritePayroll(nil, signed)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(out))
		require.NoError(t, err)
		defer f.Close()

		header, err := f.GetCellValue(report.SheetName, "A1")
		require.NoError(t, err)
		assert.Equal(t, "Pedido", header)
	})
}
