package contract

import (
	"context"

	"github.com/jhoicas/trek-api/internal/domain/repository"
)

// Generator renderiza el aditivo a PDF. La implementación con maroto vive en infrastructure/pdf.
type Generator interface {
	Generate(ctx context.Context, data Data) ([]byte, error)
}

// Store guarda y recupera documentos por clave (disco local o MinIO).
type Store interface {
	Put(ctx context.Context, key string, content []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// OrderTxRunner ejecuta una función dentro de una transacción con los repos de pedido y outbox.
// El pedido (o su cambio de estado) y la notificación pendiente se confirman juntos.
type OrderTxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		outboxRepo repository.OutboxRepository,
	) error) error
}
