package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo outbox de notificaciones (tabla notification_outbox).
type OutboxRepo struct {
	db Querier
}

// NewOutboxRepository construye el adaptador. db puede ser el pool o una pgx.Tx.
func NewOutboxRepository(db Querier) *OutboxRepo {
	return &OutboxRepo{db: db}
}

const outboxColumns = `id, order_id, kind, recipient, subject, body, attachment_key,
	status, attempts, last_error, created_at, updated_at`

// Insert persiste una notificación en estado pending.
func (r *OutboxRepo) Insert(ctx context.Context, m *entity.OutboxMessage) error {
	query := `INSERT INTO notification_outbox (` + outboxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.OrderID, m.Kind, m.Recipient, m.Subject, m.Body, m.AttachmentKey,
		m.Status, m.Attempts, m.LastError, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada del outbox.
func (r *OutboxRepo) GetByID(ctx context.Context, id string) (*entity.OutboxMessage, error) {
	query := `SELECT ` + outboxColumns + ` FROM notification_outbox WHERE id = $1`
	m, err := scanOutbox(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get outbox: %w", err)
	}
	return m, nil
}

// MarkEnqueued indica que la entrada se publicó en la cola; no cuenta como intento.
// No pisa un succeeded escrito por el worker entre el encolado y esta marca.
func (r *OutboxRepo) MarkEnqueued(ctx context.Context, id string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE notification_outbox SET status = $2, updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'failed')`,
		id, entity.OutboxStatusEnqueued)
	if err != nil {
		return false, fmt.Errorf("update outbox: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// MarkSucceeded registra un envío exitoso.
func (r *OutboxRepo) MarkSucceeded(ctx context.Context, id string) error {
	return r.mark(ctx, `UPDATE notification_outbox
		SET status = $2, attempts = attempts + 1, last_error = '', updated_at = now() WHERE id = $1`,
		id, entity.OutboxStatusSucceeded)
}

// MarkFailed registra un intento fallido con su causa.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id, lastError string) error {
	return r.mark(ctx, `UPDATE notification_outbox
		SET status = $2, attempts = attempts + 1, last_error = $3, updated_at = now() WHERE id = $1`,
		id, entity.OutboxStatusFailed, lastError)
}

// ListPending devuelve entradas pending o failed, las más antiguas primero.
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error) {
	query := `SELECT ` + outboxColumns + ` FROM notification_outbox
		WHERE status IN ('pending', 'failed')
		ORDER BY created_at LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	defer rows.Close()

	var list []*entity.OutboxMessage
	for rows.Next() {
		m, err := scanOutbox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *OutboxRepo) mark(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update outbox: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOutbox(row rowScanner) (*entity.OutboxMessage, error) {
	var m entity.OutboxMessage
	err := row.Scan(
		&m.ID, &m.OrderID, &m.Kind, &m.Recipient, &m.Subject, &m.Body, &m.AttachmentKey,
		&m.Status, &m.Attempts, &m.LastError, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
