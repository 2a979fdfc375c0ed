package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/pricing"
	"github.com/jhoicas/trek-api/internal/domain/repository"
)

// ProductUseCase casos de uso del catálogo. Fuera del alta solo se cambia el flag active.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto activo. Los precios no pueden ser negativos.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	for name, v := range map[string]*decimal.Decimal{
		"monthly_price":   in.MonthlyPrice,
		"insurance_price": in.InsurancePrice,
		"residual_value":  in.ResidualValue,
	} {
		if v != nil && v.IsNegative() {
			return nil, fmt.Errorf("%w: %s negativo", domain.ErrInvalidInput, name)
		}
	}
	now := time.Now()
	product := &entity.Product{
		ID:             uuid.New().String(),
		Brand:          in.Brand,
		Model:          in.Model,
		Description:    in.Description,
		ImageURL:       in.ImageURL,
		MonthlyPrice:   in.MonthlyPrice,
		InsurancePrice: in.InsurancePrice,
		ResidualValue:  in.ResidualValue,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto. onlyActive oculta los inactivos (vista de tienda).
func (uc *ProductUseCase) GetByID(ctx context.Context, id string, onlyActive bool) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || (onlyActive && !p.Active) {
		return nil, nil
	}
	return toProductResponse(p), nil
}

// List lista productos; la tienda pide solo los activos.
func (uc *ProductUseCase) List(ctx context.Context, onlyActive bool, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// SetActive activa o desactiva un producto. domain.ErrNotFound si no existe.
func (uc *ProductUseCase) SetActive(ctx context.Context, id string, active bool) error {
	ok, err := uc.repo.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	total, _ := pricing.CalculateTotals(*p)
	return &dto.ProductResponse{
		ID:             p.ID,
		Brand:          p.Brand,
		Model:          p.Model,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		MonthlyPrice:   p.MonthlyPrice,
		InsurancePrice: p.InsurancePrice,
		ResidualValue:  p.ResidualValue,
		TotalMonthly:   total,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
