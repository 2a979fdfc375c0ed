package repository

import (
	"context"

	"github.com/jhoicas/trek-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Fuera del alta, el único cambio permitido es activar/desactivar.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Product, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
}
