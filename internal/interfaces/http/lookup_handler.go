package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/trek-api/internal/application/usecase"
)

// LookupHandler consultas de CEP, CNPJ y CPF para autocompletar formularios. Un resultado vacío
// responde 404 NOT_FOUND y el formulario sigue editable.
type LookupHandler struct {
	uc *usecase.LookupUseCase
}

// NewLookupHandler construye el handler.
func NewLookupHandler(uc *usecase.LookupUseCase) *LookupHandler {
	return &LookupHandler{uc: uc}
}

// CEP godoc
// @Summary      Dirección por CEP
// @Tags         lookups
// @Produce      json
// @Param        cep  path  string  true  "CEP"
// @Success      200  {object}  dto.AddressLookupResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lookups/cep/{cep} [get]
func (h *LookupHandler) CEP(c *fiber.Ctx) error {
	out, err := h.uc.Address(c.UserContext(), c.Params("cep"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CNPJ godoc
// @Summary      Razón social y dirección por CNPJ
// @Tags         lookups
// @Produce      json
// @Param        cnpj  path  string  true  "CNPJ"
// @Success      200   {object}  dto.CompanyLookupResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lookups/cnpj/{cnpj} [get]
func (h *LookupHandler) CNPJ(c *fiber.Ctx) error {
	out, err := h.uc.Company(c.UserContext(), c.Params("cnpj"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CPF godoc
// @Summary      Nombre y nacimiento por CPF
// @Tags         lookups
// @Produce      json
// @Param        cpf  path  string  true  "CPF"
// @Success      200  {object}  dto.PersonLookupResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lookups/cpf/{cpf} [get]
func (h *LookupHandler) CPF(c *fiber.Ctx) error {
	out, err := h.uc.Person(c.UserContext(), c.Params("cpf"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
