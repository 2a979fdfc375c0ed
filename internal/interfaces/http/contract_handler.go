package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/usecase"
)

// ContractHandler aceite, firma del aditivo y consulta de pedidos.
type ContractHandler struct {
	contracts *contract.UseCase
	orders    *usecase.OrderUseCase
}

// NewContractHandler construye el handler.
func NewContractHandler(contracts *contract.UseCase, orders *usecase.OrderUseCase) *ContractHandler {
	return &ContractHandler{contracts: contracts, orders: orders}
}

// Accept godoc
// @Summary      Registrar el aceite explícito del Contrato-Mãe
// @Tags         contracts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AcceptanceRequest  true  "product_id, accepted=true"
// @Success      201   {object}  dto.AcceptanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/contracts/acceptance [post]
func (h *ContractHandler) Accept(c *fiber.Ctx) error {
	var in dto.AcceptanceRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.contracts.RecordAcceptance(c.UserContext(), GetSessionID(c), in, c.IP())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Sign godoc
// @Summary      Firmar el aditivo y crear el pedido
// @Tags         contracts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignContractRequest  true  "Contacto y dirección de entrega"
// @Success      201   {object}  dto.SignContractResponse
// @Success      200   {object}  dto.SignContractResponse  "reenvío del mismo aceite"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/contracts/sign [post]
func (h *ContractHandler) Sign(c *fiber.Ctx) error {
	var in dto.SignContractRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.contracts.Sign(c.UserContext(), GetSession(c), in)
	if err != nil {
		return respondError(c, err)
	}
	if out.Replayed {
		return c.JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Mine godoc
// @Summary      Pedidos del usuario autenticado
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders/mine [get]
func (h *ContractHandler) Mine(c *fiber.Ctx) error {
	out, err := h.orders.ListMine(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos (panel admin)
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status      query  string  false  "contract_signed | imei_linked | dispatched"
// @Param        company_id  query  string  false  "Empresa"
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *ContractHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.orders.List(c.UserContext(), c.Query("status"), c.Query("company_id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Document godoc
// @Summary      Descargar la revisión vigente del aditivo
// @Tags         orders
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del pedido"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/contract [get]
func (h *ContractHandler) Document(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	who := usecase.Requester{UserID: GetUserID(c), CompanyID: GetCompanyID(c), Role: GetRole(c)}
	file, err := h.orders.ContractDocument(c.UserContext(), who, id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+file.FileName+`"`)
	return c.Send(file.Content)
}
