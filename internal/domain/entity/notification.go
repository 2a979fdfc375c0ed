package entity

import "time"

// Estados de una entrada del outbox de notificaciones.
const (
	OutboxStatusPending   = "pending"
	OutboxStatusEnqueued  = "enqueued"
	OutboxStatusSucceeded = "succeeded"
	OutboxStatusFailed    = "failed"
)

// Tipos de notificación.
const (
	NotificationContractSigned = "contract_signed"
	NotificationDeviceReady    = "device_ready"
	NotificationDeviceShipped  = "device_shipped"
)

// OutboxMessage notificación persistida junto al cambio que la origina.
// El envío es posterior e independiente: un fallo aquí nunca revierte el pedido.
type OutboxMessage struct {
	ID            string
	OrderID       string
	Kind          string
	Recipient     string
	Subject       string
	Body          string
	AttachmentKey string // vacío = sin adjunto
	Status        string
	Attempts      int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
