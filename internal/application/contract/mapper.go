package contract

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/pricing"
)

// ToOrderResponse mapea un pedido a su DTO.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	a := o.DeliveryAddress
	return dto.OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		ProductID: o.ProductID,
		CompanyID: o.CompanyID,
		Status:    o.Status,
		SignedAt:  o.SignedAt,
		DeliveryAddress: dto.AddressResponse{
			Street:       a.Street,
			Number:       a.Number,
			Complement:   a.Complement,
			Neighborhood: a.Neighborhood,
			CEP:          a.CEP,
			City:         a.City,
			State:        a.State,
			Full:         a.Full,
		},
		ContractURL:      o.ContractURL,
		ContractRevision: o.ContractRevision,
		IMEI:             o.IMEI,
		ContactEmail:     o.ContactEmail,
		ContactPhone:     o.ContactPhone,
		DispatchedAt:     o.DispatchedAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToOrderDetailResponse mapea un pedido con join.
func ToOrderDetailResponse(d *entity.OrderDetail) dto.OrderResponse {
	resp := ToOrderResponse(&d.Order)
	resp.UserName = d.UserName
	resp.UserCPF = d.UserCPF
	resp.CompanyName = d.CompanyName
	resp.ProductBrand = d.ProductBrand
	resp.ProductModel = d.ProductModel
	return resp
}

func totals(p *entity.Product) (decimal.Decimal, decimal.Decimal) {
	return pricing.CalculateTotals(*p)
}
