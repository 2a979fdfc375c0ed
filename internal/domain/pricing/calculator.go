package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trek-api/internal/domain/entity"
)

// CalculateTotals implementa el cálculo de valores del contrato (servicio de dominio).
// TotalMensal = Assinatura + Seguro; Residual pasa directo. Valores nulos cuentan como 0.
func CalculateTotals(p entity.Product) (totalMonthly, residual decimal.Decimal) {
	totalMonthly = orZero(p.MonthlyPrice).Add(orZero(p.InsurancePrice))
	residual = orZero(p.ResidualValue)
	return totalMonthly, residual
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
