// Package queue entrega las notificaciones del outbox de forma asíncrona con asynq sobre Redis.
package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskNotificationDeliver entrega una entrada del outbox.
const TaskNotificationDeliver = "notification.outbox.deliver"

// NotificationPayload payload de TaskNotificationDeliver.
type NotificationPayload struct {
	OutboxID string `json:"outboxId"`
}

func NewNotificationTask(payload NotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDeliver, data), nil
}

func ParseNotificationPayload(task *asynq.Task) (NotificationPayload, error) {
	var payload NotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationPayload{}, err
	}
	return payload, nil
}
