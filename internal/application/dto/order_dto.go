package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AcceptanceRequest registro del aceite explícito (checkbox) para un producto.
type AcceptanceRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Accepted  bool   `json:"accepted"`
}

// AcceptanceResponse aceite registrado en la sesión.
type AcceptanceResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// SignContractRequest formulario de firma. La validación de campos obligatorios se hace en el
// dominio para reportar todos los faltantes juntos.
type SignContractRequest struct {
	ProductID    string `json:"product_id" validate:"required,uuid"`
	Name         string `json:"name" validate:"omitempty,max=200"`
	Email        string `json:"email" validate:"omitempty,max=200"`
	Phone        string `json:"phone" validate:"omitempty,max=30"`
	CEP          string `json:"cep" validate:"omitempty,max=9"`
	Street       string `json:"street" validate:"omitempty,max=200"`
	Number       string `json:"number" validate:"omitempty,max=20"`
	Complement   string `json:"complement" validate:"omitempty,max=100"`
	Neighborhood string `json:"neighborhood" validate:"omitempty,max=100"`
	City         string `json:"city" validate:"omitempty,max=100"`
	State        string `json:"state" validate:"omitempty,max=2"`
}

// AddressResponse dirección de entrega.
type AddressResponse struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	CEP          string `json:"cep"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Full         string `json:"full"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	ProductID        string          `json:"product_id"`
	CompanyID        string          `json:"company_id"`
	Status           string          `json:"status"`
	SignedAt         time.Time       `json:"signed_at"`
	DeliveryAddress  AddressResponse `json:"delivery_address"`
	ContractURL      string          `json:"contract_url"`
	ContractRevision int             `json:"contract_revision"`
	IMEI             *string         `json:"imei"`
	ContactEmail     string          `json:"contact_email"`
	ContactPhone     string          `json:"contact_phone"`
	DispatchedAt     *time.Time      `json:"dispatched_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Solo en listados con join.
	UserName     string `json:"user_name,omitempty"`
	UserCPF      string `json:"user_cpf,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	ProductBrand string `json:"product_brand,omitempty"`
	ProductModel string `json:"product_model,omitempty"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// SignContractResponse pedido creado, valores del contrato y link para avisar por WhatsApp.
type SignContractResponse struct {
	Order        OrderResponse   `json:"order"`
	TotalMonthly decimal.Decimal `json:"total_monthly"`
	Residual     decimal.Decimal `json:"residual"`
	WhatsAppLink string          `json:"whatsapp_link"`
	// Replayed indica que el aceite ya había generado este pedido (reenvío del formulario).
	Replayed bool `json:"replayed,omitempty"`
}

// LinkIMEIRequest vincula el IMEI del aparelho.
type LinkIMEIRequest struct {
	IMEI string `json:"imei" validate:"required,max=20"`
}

// DispatchRequest marca el pedido como expedido. En el flujo fused el IMEI viene aquí.
type DispatchRequest struct {
	IMEI string `json:"imei" validate:"omitempty,max=20"`
}

// DispatchResponse pedido tras la transición y link manual para avisar al empleado.
type DispatchResponse struct {
	Order               OrderResponse `json:"order"`
	ContractRegenerated bool          `json:"contract_regenerated"`
	WhatsAppLink        string        `json:"whatsapp_link,omitempty"`
}
