// Package order define la tabla de transiciones del pedido y las validaciones de firma.
//
// Hay dos flujos de despacho y se elige uno por configuración (DISPATCH_FLOW):
//
//	staged: contract_signed --link_imei--> imei_linked --dispatch--> dispatched
//	fused:  contract_signed --link_imei|dispatch (con IMEI)--> dispatched
package order

import (
	"fmt"
	"strings"

	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
)

// Flow identifica el flujo de despacho configurado.
type Flow string

const (
	FlowStaged Flow = "staged"
	FlowFused  Flow = "fused"
)

// ParseFlow convierte el valor de configuración; vacío = staged.
func ParseFlow(s string) (Flow, error) {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case "", FlowStaged:
		return FlowStaged, nil
	case FlowFused:
		return FlowFused, nil
	}
	return "", fmt.Errorf("%w: DISPATCH_FLOW desconocido %q", domain.ErrInvalidInput, s)
}

// Action acción de back-office sobre un pedido.
type Action string

const (
	ActionLinkIMEI Action = "link_imei"
	ActionDispatch Action = "dispatch"
)

// Transition una fila de la tabla: desde qué estado se permite la acción y a cuál lleva.
type Transition struct {
	From         string
	To           string
	RequiresIMEI bool // la acción debe traer IMEI
}

// Policy tabla de transiciones cerrada para un flujo.
type Policy struct {
	flow  Flow
	table map[Action]Transition
}

// NewPolicy construye la tabla del flujo indicado.
func NewPolicy(flow Flow) Policy {
	if flow == FlowFused {
		return Policy{flow: flow, table: map[Action]Transition{
			ActionLinkIMEI: {From: entity.OrderStatusContractSigned, To: entity.OrderStatusDispatched, RequiresIMEI: true},
			ActionDispatch: {From: entity.OrderStatusContractSigned, To: entity.OrderStatusDispatched, RequiresIMEI: true},
		}}
	}
	return Policy{flow: FlowStaged, table: map[Action]Transition{
		ActionLinkIMEI: {From: entity.OrderStatusContractSigned, To: entity.OrderStatusIMEILinked, RequiresIMEI: true},
		ActionDispatch: {From: entity.OrderStatusIMEILinked, To: entity.OrderStatusDispatched},
	}}
}

// Flow devuelve el flujo de la política.
func (p Policy) Flow() Flow { return p.flow }

// Next valida la acción contra el estado actual y devuelve la transición a aplicar.
// Retorna domain.ErrInvalidInput si falta el IMEI y domain.ErrConflict si el estado no lo permite.
func (p Policy) Next(action Action, current, imei string) (Transition, error) {
	tr, ok := p.table[action]
	if !ok {
		return Transition{}, fmt.Errorf("%w: acción %q", domain.ErrInvalidInput, action)
	}
	if tr.RequiresIMEI && NormalizeIMEI(imei) == "" {
		return Transition{}, fmt.Errorf("%w: IMEI requerido", domain.ErrInvalidInput)
	}
	if current != tr.From {
		return Transition{}, fmt.Errorf("%w: el pedido está en %s, se esperaba %s", domain.ErrConflict, current, tr.From)
	}
	return tr, nil
}

// PendingStatuses estados que aparecen en la cola de despacho.
func (p Policy) PendingStatuses() []string {
	if p.flow == FlowFused {
		return []string{entity.OrderStatusContractSigned}
	}
	return []string{entity.OrderStatusContractSigned, entity.OrderStatusIMEILinked}
}

// NormalizeIMEI quita espacios del IMEI ingresado.
func NormalizeIMEI(imei string) string {
	return strings.Join(strings.Fields(imei), "")
}
