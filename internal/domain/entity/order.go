package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido. La tabla de transiciones vive en domain/order.
const (
	OrderStatusContractSigned = "contract_signed"
	OrderStatusIMEILinked     = "imei_linked"
	OrderStatusDispatched     = "dispatched"
)

// DeliveryAddress dirección de entrega estructurada. Full se compone al escribir el pedido.
type DeliveryAddress struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	CEP          string `json:"cep"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Full         string `json:"full"`
}

// ComposeFull arma la línea de dirección usada en el contrato y en el pedido.
// Ej: "Praça da Sé, 100, Apto 3 - Sé - CEP 01001000"
func (a DeliveryAddress) ComposeFull() string {
	var b strings.Builder
	b.WriteString(a.Street)
	b.WriteString(", ")
	b.WriteString(a.Number)
	if a.Complement != "" {
		b.WriteString(", ")
		b.WriteString(a.Complement)
	}
	b.WriteString(" - ")
	b.WriteString(a.Neighborhood)
	b.WriteString(" - CEP ")
	b.WriteString(a.CEP)
	return b.String()
}

// Order representa la suscripción de un empleado a un aparelho.
// Se crea una sola vez por firma de contrato y solo cambia vía transiciones de estado.
type Order struct {
	ID               string
	UserID           string
	ProductID        string
	CompanyID        string
	Status           string
	SignedAt         time.Time
	DeliveryAddress  DeliveryAddress
	ContractURL      string // clave del documento en el DocumentStore
	ContractRevision int
	IMEI             *string // nil hasta que despacho lo vincula; nunca se limpia
	ContactName      string  // nombre como figura en el contrato
	ContactEmail     string
	ContactPhone     string
	AcceptanceID     string // único: deduplica reenvíos del mismo aceite
	AcceptedAt       time.Time
	AcceptanceIP     string
	DispatchedAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasIMEI informa si el pedido ya tiene IMEI vinculado.
func (o *Order) HasIMEI() bool {
	return o.IMEI != nil && *o.IMEI != ""
}

// OrderDetail pedido con los datos del empleado y del aparelho (select con join).
type OrderDetail struct {
	Order
	UserName     string
	UserCPF      string
	UserEmail    string
	CompanyName  string
	ProductBrand string
	ProductModel string
	// Precios vigentes del producto; usados para reportes de nómina.
	ProductMonthly   *decimal.Decimal
	ProductInsurance *decimal.Decimal
}
