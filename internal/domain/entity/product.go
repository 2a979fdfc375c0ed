package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un aparelho ofrecido en la tienda.
// MonthlyPrice, InsurancePrice y ResidualValue pueden venir nulos desde la base; ver pricing.CalculateTotals.
type Product struct {
	ID             string
	Brand          string
	Model          string
	Description    string
	ImageURL       string
	MonthlyPrice   *decimal.Decimal // assinatura mensal
	InsurancePrice *decimal.Decimal // seguro mensal
	ResidualValue  *decimal.Decimal // opción de compra al final del contrato
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayName devuelve "Marca Modelo".
func (p *Product) DisplayName() string {
	return p.Brand + " " + p.Model
}
