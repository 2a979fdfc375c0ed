package repository

import (
	"context"

	"github.com/jhoicas/trek-api/internal/domain/entity"
)

// OutboxRepository define el puerto de persistencia del outbox de notificaciones.
type OutboxRepository interface {
	Insert(ctx context.Context, msg *entity.OutboxMessage) error
	GetByID(ctx context.Context, id string) (*entity.OutboxMessage, error)
	// MarkEnqueued solo pasa a enqueued desde pending o failed; false si la entrada ya avanzó
	// (un worker rápido la marcó succeeded) o no existe.
	MarkEnqueued(ctx context.Context, id string) (bool, error)
	MarkSucceeded(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, lastError string) error
	// ListPending devuelve entradas pendientes (o fallidas) para reintento manual.
	ListPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error)
}
