package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/trek-api/internal/application/notification"
	"github.com/jhoicas/trek-api/internal/domain/repository"
	"github.com/jhoicas/trek-api/pkg/config"
	"github.com/jhoicas/trek-api/pkg/logger"
)

const maxRetry = 5

var _ notification.Publisher = (*Publisher)(nil)

// Publisher encola entradas del outbox. El id de la entrada es el TaskID: republicar una entrada
// todavía en cola no crea un segundo envío. Una tarea archivada (agotó MaxRetry) se borra y se
// vuelve a encolar, que es lo que pide el reintento manual.
type Publisher struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	outbox    repository.OutboxRepository
	log       *logger.Logger
}

// NewPublisher construye el publisher desde la configuración de Redis.
func NewPublisher(cfg config.RedisConfig, outbox repository.OutboxRepository, log *logger.Logger) (*Publisher, error) {
	opt, err := RedisClientOpt(cfg.URL)
	if err != nil {
		return nil, err
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "default"
	}
	return &Publisher{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     queue,
		outbox:    outbox,
		log:       log,
	}, nil
}

func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return errors.Join(p.client.Close(), p.inspector.Close())
}

// Publish encola cada id y marca la entrada como enqueued. Sigue con el resto si uno falla.
func (p *Publisher) Publish(ctx context.Context, ids ...string) error {
	var errs []error
	for _, id := range ids {
		if err := p.enqueue(ctx, id); err != nil {
			p.log.Warn().Err(err).Str("outbox_id", id).Msg("no se pudo encolar la notificación")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) enqueue(ctx context.Context, id string) error {
	task, err := NewNotificationTask(NotificationPayload{OutboxID: id})
	if err != nil {
		return err
	}
	opts := []asynq.Option{asynq.Queue(p.queue), asynq.TaskID(id), asynq.MaxRetry(maxRetry)}
	_, err = p.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		var cleared bool
		cleared, err = p.clearFinished(id)
		if err == nil && cleared {
			_, err = p.client.EnqueueContext(ctx, task, opts...)
		}
	}
	if err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	marked, err := p.outbox.MarkEnqueued(ctx, id)
	if err != nil {
		return err
	}
	if !marked {
		p.log.Debug().Str("outbox_id", id).Msg("la entrada ya no estaba pendiente al encolar")
	}
	return nil
}

// clearFinished borra la tarea con ese id si ya terminó (archivada o completada). Devuelve false
// si sigue viva en la cola: pending, scheduled, retry o active ya van a entregar la entrada.
func (p *Publisher) clearFinished(id string) (bool, error) {
	info, err := p.inspector.GetTaskInfo(p.queue, id)
	if errors.Is(err, asynq.ErrTaskNotFound) {
		// se borró entre el conflicto y la consulta
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect task: %w", err)
	}
	switch info.State {
	case asynq.TaskStateArchived, asynq.TaskStateCompleted:
		if err := p.inspector.DeleteTask(p.queue, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
			return false, fmt.Errorf("delete task: %w", err)
		}
		return true, nil
	default:
		return false, nil
	}
}

// RedisClientOpt traduce REDIS_URL a las opciones de asynq.
func RedisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
