package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/pkg/config"
	"github.com/jhoicas/trek-api/pkg/logger"
)

// Deliverer entrega una entrada del outbox (notification.Dispatcher).
type Deliverer interface {
	Deliver(ctx context.Context, id string) error
}

// Worker consume la cola de notificaciones.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	dispatcher Deliverer
	log        *logger.Logger
}

// NewWorker construye el servidor asynq con un handler por tipo de tarea.
func NewWorker(cfg config.RedisConfig, dispatcher Deliverer, log *logger.Logger) (*Worker, error) {
	opt, err := RedisClientOpt(cfg.URL)
	if err != nil {
		return nil, err
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.QueueConcurrency
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
	})
	mux := asynq.NewServeMux()
	w := &Worker{server: server, mux: mux, dispatcher: dispatcher, log: log}
	mux.HandleFunc(TaskNotificationDeliver, w.handleDeliver)
	return w, nil
}

// Run procesa tareas hasta que ctx se cancele.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error().Err(err).Msg("worker de notificaciones detenido")
	}
}

func (w *Worker) handleDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationPayload(task)
	if err != nil {
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}
	if payload.OutboxID == "" {
		return fmt.Errorf("payload sin outboxId: %w", asynq.SkipRetry)
	}
	if err := w.dispatcher.Deliver(ctx, payload.OutboxID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}
