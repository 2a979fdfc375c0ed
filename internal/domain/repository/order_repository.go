package repository

import (
	"context"

	"github.com/jhoicas/trek-api/internal/domain/entity"
)

// StatusChange cambio de estado condicionado al estado actual (compare-and-swap).
type StatusChange struct {
	OrderID    string
	FromStatus string
	ToStatus   string
	IMEI       string // vacío = no tocar el IMEI
}

// OrderFilter criterios de listado. Campos vacíos no filtran.
type OrderFilter struct {
	Statuses  []string
	UserID    string
	CompanyID string
	Limit     int
	Offset    int
}

// OrderRepository define el puerto de persistencia para Order (DIP).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByAcceptanceID(ctx context.Context, acceptanceID string) (*entity.Order, error)
	// GetDetail obtiene el pedido con join a usuario, empresa y producto.
	GetDetail(ctx context.Context, id string) (*entity.OrderDetail, error)
	ListDetails(ctx context.Context, filter OrderFilter) ([]*entity.OrderDetail, error)
	// TransitionStatus aplica el cambio solo si el estado actual es FromStatus.
	// Retorna false (sin error) si otro proceso ya cambió el estado.
	TransitionStatus(ctx context.Context, change StatusChange) (bool, error)
	// SetContract registra la clave del documento y su revisión.
	SetContract(ctx context.Context, orderID, contractURL string, revision int) error
}
