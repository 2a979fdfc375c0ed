// Package notification entrega los avisos persistidos en el outbox.
//
// El pedido se confirma primero junto con su entrada de outbox; la entrega ocurre después
// (en línea o desde la cola asynq) y un fallo solo queda registrado en la entrada.
package notification

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/jhoicas/trek-api/internal/application/ports"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/repository"
	"github.com/jhoicas/trek-api/pkg/logger"
)

// ErrNoRecipient la entrada no tiene destinatario; no se reintenta.
var ErrNoRecipient = errors.New("notificación sin destinatario")

// Attachment archivo adjunto.
type Attachment struct {
	FileName string
	Content  []byte
}

// Message e-mail listo para enviar.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Sender canal de entrega (SMTP o log). Sin credenciales la implementación siempre reporta éxito.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// AttachmentSource lee el documento adjunto.
type AttachmentSource interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Publisher despacha entradas del outbox ya confirmadas. Los errores se registran, nunca
// invalidan la operación que originó el aviso.
type Publisher interface {
	Publish(ctx context.Context, ids ...string) error
}

// Dispatcher entrega una entrada del outbox y registra el resultado.
type Dispatcher struct {
	outbox  repository.OutboxRepository
	files   AttachmentSource
	sender  Sender
	log     *logger.Logger
	metrics ports.Recorder
}

// NewDispatcher construye el dispatcher.
func NewDispatcher(outbox repository.OutboxRepository, files AttachmentSource, sender Sender, log *logger.Logger, metrics ports.Recorder) *Dispatcher {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &Dispatcher{outbox: outbox, files: files, sender: sender, log: log, metrics: metrics}
}

// Deliver envía la entrada id. Es idempotente: una entrada ya entregada no se reenvía, así un
// reintento de la cola no duplica el aviso. Devuelve error solo si vale la pena reintentar.
func (d *Dispatcher) Deliver(ctx context.Context, id string) error {
	msg, err := d.outbox.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("outbox %s: %w", id, domain.ErrNotFound)
	}
	if msg.Status == entity.OutboxStatusSucceeded {
		return nil
	}
	if msg.Recipient == "" {
		d.log.Warn().Str("outbox_id", msg.ID).Str("order_id", msg.OrderID).Str("kind", msg.Kind).Msg("notificación omitida: sin destinatario")
		d.metrics.Notification("skipped")
		return d.outbox.MarkFailed(ctx, msg.ID, ErrNoRecipient.Error())
	}

	out := Message{To: msg.Recipient, Subject: msg.Subject, Body: msg.Body}
	if msg.AttachmentKey != "" && d.files != nil {
		content, err := d.files.Get(ctx, msg.AttachmentKey)
		if err != nil {
			// sin adjunto se envía igual
			d.log.Warn().Err(err).Str("outbox_id", msg.ID).Str("key", msg.AttachmentKey).Msg("adjunto no disponible")
		} else {
			out.Attachment = &Attachment{FileName: path.Base(msg.AttachmentKey), Content: content}
		}
	}

	if err := d.sender.Send(ctx, out); err != nil {
		d.log.Error().Err(err).Str("outbox_id", msg.ID).Str("order_id", msg.OrderID).Msg("fallo al enviar notificación")
		d.metrics.Notification("failed")
		if markErr := d.outbox.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
			return errors.Join(err, markErr)
		}
		return err
	}
	d.metrics.Notification("sent")
	return d.outbox.MarkSucceeded(ctx, msg.ID)
}

// InlinePublisher entrega en el mismo request (sin Redis). Los fallos se registran y se tragan.
type InlinePublisher struct {
	dispatcher *Dispatcher
	log        *logger.Logger
}

// NewInlinePublisher construye el publisher en línea.
func NewInlinePublisher(d *Dispatcher, log *logger.Logger) *InlinePublisher {
	return &InlinePublisher{dispatcher: d, log: log}
}

var _ Publisher = (*InlinePublisher)(nil)

func (p *InlinePublisher) Publish(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := p.dispatcher.Deliver(ctx, id); err != nil {
			p.log.Warn().Err(err).Str("outbox_id", id).Msg("notificación no entregada; queda en el outbox")
		}
	}
	return nil
}

// RetryUseCase republica entradas pendientes o fallidas (acción manual del admin).
type RetryUseCase struct {
	outbox    repository.OutboxRepository
	publisher Publisher
}

// NewRetryUseCase construye el caso de uso de reintento.
func NewRetryUseCase(outbox repository.OutboxRepository, publisher Publisher) *RetryUseCase {
	return &RetryUseCase{outbox: outbox, publisher: publisher}
}

// RetryPending republica hasta limit entradas; devuelve cuántas se publicaron.
func (uc *RetryUseCase) RetryPending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	pending, err := uc.outbox.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(pending))
	for _, m := range pending {
		ids = append(ids, m.ID)
	}
	if err := uc.publisher.Publish(ctx, ids...); err != nil {
		return 0, err
	}
	return len(ids), nil
}
