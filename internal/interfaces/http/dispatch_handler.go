package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/trek-api/internal/application/dispatch"
	"github.com/jhoicas/trek-api/internal/application/dto"
)

// DispatchHandler fila de expedición: vincular IMEI y marcar como enviado.
type DispatchHandler struct {
	uc *dispatch.UseCase
}

// NewDispatchHandler construye el handler.
func NewDispatchHandler(uc *dispatch.UseCase) *DispatchHandler {
	return &DispatchHandler{uc: uc}
}

// Pending godoc
// @Summary      Pedidos pendientes de expedición
// @Tags         dispatch
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/dispatch/orders [get]
func (h *DispatchHandler) Pending(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.ListPending(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LinkIMEI godoc
// @Summary      Vincular IMEI (contract_signed -> imei_linked)
// @Tags         dispatch
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del pedido"
// @Param        body  body  dto.LinkIMEIRequest  true  "IMEI"
// @Success      200   {object}  dto.DispatchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispatch/orders/{id}/imei [post]
func (h *DispatchHandler) LinkIMEI(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.LinkIMEIRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.LinkIMEI(c.UserContext(), id, in.IMEI)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Dispatch godoc
// @Summary      Marcar como expedido
// @Tags         dispatch
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "ID del pedido"
// @Param        body  body  dto.DispatchRequest  false  "IMEI (flujo fused)"
// @Success      200   {object}  dto.DispatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/dispatch/orders/{id}/dispatch [post]
func (h *DispatchHandler) Dispatch(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.DispatchRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.uc.MarkDispatched(c.UserContext(), id, in.IMEI)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
