package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/usecase"
)

// ProductHandler catálogo de aparelhos: administración y vitrina de la tienda.
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Aparelho"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar productos (incluye inactivos)
// @Tags         products
// @Produce      json
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	return h.list(c, false)
}

// Store godoc
// @Summary      Vitrina: productos activos con total mensual
// @Tags         store
// @Produce      json
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/store/products [get]
func (h *ProductHandler) Store(c *fiber.Ctx) error {
	return h.list(c, true)
}

func (h *ProductHandler) list(c *fiber.Ctx, onlyActive bool) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), onlyActive, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// StoreDetail godoc
// @Summary      Detalle de un producto activo
// @Tags         store
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/store/products/{id} [get]
func (h *ProductHandler) StoreDetail(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id, true)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no disponible"})
	}
	return c.JSON(out)
}

// SetActive godoc
// @Summary      Activar o desactivar producto
// @Tags         products
// @Accept       json
// @Param        id    path  string                       true  "ID del producto"
// @Param        body  body  dto.SetProductActiveRequest  true  "active"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/active [patch]
func (h *ProductHandler) SetActive(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SetProductActiveRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	if err := h.uc.SetActive(c.UserContext(), id, *in.Active); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
