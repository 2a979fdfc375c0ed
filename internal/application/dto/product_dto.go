package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un aparelho del catálogo. Los precios son opcionales
// (nulos cuentan como cero en el contrato).
type CreateProductRequest struct {
	Brand          string           `json:"brand" validate:"required,min=1,max=100"`
	Model          string           `json:"model" validate:"required,min=1,max=200"`
	Description    string           `json:"description" validate:"omitempty,max=2000"`
	ImageURL       string           `json:"image_url" validate:"omitempty,url"`
	MonthlyPrice   *decimal.Decimal `json:"monthly_price"`
	InsurancePrice *decimal.Decimal `json:"insurance_price"`
	ResidualValue  *decimal.Decimal `json:"residual_value"`
}

// SetProductActiveRequest activa o desactiva un producto.
type SetProductActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ProductResponse salida de un producto con el total mensual ya calculado.
type ProductResponse struct {
	ID             string           `json:"id"`
	Brand          string           `json:"brand"`
	Model          string           `json:"model"`
	Description    string           `json:"description"`
	ImageURL       string           `json:"image_url,omitempty"`
	MonthlyPrice   *decimal.Decimal `json:"monthly_price"`
	InsurancePrice *decimal.Decimal `json:"insurance_price"`
	ResidualValue  *decimal.Decimal `json:"residual_value"`
	TotalMonthly   decimal.Decimal  `json:"total_monthly"`
	Active         bool             `json:"active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
