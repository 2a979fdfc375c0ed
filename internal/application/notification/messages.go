package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/trek-api/internal/domain/entity"
)

func newMessage(orderID, kind, recipient, subject, body, attachmentKey string, now time.Time) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		ID:            uuid.New().String(),
		OrderID:       orderID,
		Kind:          kind,
		Recipient:     recipient,
		Subject:       subject,
		Body:          body,
		AttachmentKey: attachmentKey,
		Status:        entity.OutboxStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ContractSigned confirmación de firma con el aditivo adjunto.
func ContractSigned(orderID, recipient, name, brand, model, attachmentKey string, now time.Time) *entity.OutboxMessage {
	body := fmt.Sprintf("Olá %s,\n\nConfirmação de assinatura do aparelho %s %s.\nSeguem os dados do contrato em anexo.\n\nAtenciosamente,\nEquipe Trek\n",
		name, brand, model)
	return newMessage(orderID, entity.NotificationContractSigned, recipient, "Seu Aditivo de Contrato - Trek", body, attachmentKey, now)
}

// DeviceReady aviso de IMEI vinculado.
func DeviceReady(orderID, recipient, imei string, now time.Time) *entity.OutboxMessage {
	body := fmt.Sprintf("Seu aparelho foi vinculado ao IMEI: %s. Em breve será expedido.", imei)
	return newMessage(orderID, entity.NotificationDeviceReady, recipient, "Trek - Aparelho Preparado", body, "", now)
}

// DeviceShipped aviso de expedición.
func DeviceShipped(orderID, recipient string, now time.Time) *entity.OutboxMessage {
	return newMessage(orderID, entity.NotificationDeviceShipped, recipient, "Trek - Aparelho Expedido",
		"Seu aparelho foi expedido! Aguarde a entrega.", "", now)
}

// ForTransition elige el aviso según el estado destino. En el flujo fused una sola acción
// vincula el IMEI y expide, así que solo sale el aviso de expedición.
func ForTransition(orderID, recipient, toStatus, imei string, now time.Time) *entity.OutboxMessage {
	if toStatus == entity.OrderStatusIMEILinked {
		return DeviceReady(orderID, recipient, imei, now)
	}
	return DeviceShipped(orderID, recipient, now)
}
