// Package reports arma el relatório de descontos en nómina que RH envía a la empresa.
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/pricing"
	"github.com/jhoicas/trek-api/internal/domain/repository"
)

// PayrollRow una línea de descuento: un pedido firmado.
type PayrollRow struct {
	OrderID      string
	EmployeeName string
	CPF          string
	CompanyName  string
	Device       string
	Status       string
	SignedAt     time.Time
	MonthlyTotal decimal.Decimal
}

// PayrollWriter serializa el reporte (xlsx en infrastructure/report).
type PayrollWriter interface {
	WritePayroll(rows []PayrollRow, generatedAt time.Time) ([]byte, error)
}

// PayrollUseCase genera el reporte de descontos.
type PayrollUseCase struct {
	orders repository.OrderRepository
	writer PayrollWriter
	now    func() time.Time
}

// NewPayrollUseCase construye el caso de uso.
func NewPayrollUseCase(orders repository.OrderRepository, writer PayrollWriter) *PayrollUseCase {
	return &PayrollUseCase{orders: orders, writer: writer, now: time.Now}
}

// Rows devuelve las líneas del reporte. companyID vacío = todas las empresas.
func (uc *PayrollUseCase) Rows(ctx context.Context, companyID string) ([]PayrollRow, error) {
	list, err := uc.orders.ListDetails(ctx, repository.OrderFilter{
		CompanyID: companyID,
		Statuses: []string{
			entity.OrderStatusContractSigned,
			entity.OrderStatusIMEILinked,
			entity.OrderStatusDispatched,
		},
	})
	if err != nil {
		return nil, err
	}
	rows := make([]PayrollRow, 0, len(list))
	for _, d := range list {
		total, _ := pricing.CalculateTotals(entity.Product{
			MonthlyPrice:   d.ProductMonthly,
			InsurancePrice: d.ProductInsurance,
		})
		rows = append(rows, PayrollRow{
			OrderID:      d.ID,
			EmployeeName: d.UserName,
			CPF:          d.UserCPF,
			CompanyName:  d.CompanyName,
			Device:       d.ProductBrand + " " + d.ProductModel,
			Status:       d.Status,
			SignedAt:     d.SignedAt,
			MonthlyTotal: total,
		})
	}
	return rows, nil
}

// Generate devuelve el archivo y su nombre sugerido.
func (uc *PayrollUseCase) Generate(ctx context.Context, companyID string) ([]byte, string, error) {
	rows, err := uc.Rows(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	now := uc.now()
	content, err := uc.writer.WritePayroll(rows, now)
	if err != nil {
		return nil, "", err
	}
	return content, "descontos_" + now.Format("2006-01") + ".xlsx", nil
}
