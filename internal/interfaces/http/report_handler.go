package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/notification"
	"github.com/jhoicas/trek-api/internal/application/reports"
	"github.com/jhoicas/trek-api/internal/domain/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler planilla de descuentos para RH y reintento manual de avisos.
type ReportHandler struct {
	payroll *reports.PayrollUseCase
	retry   *notification.RetryUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(payroll *reports.PayrollUseCase, retry *notification.RetryUseCase) *ReportHandler {
	return &ReportHandler{payroll: payroll, retry: retry}
}

// Payroll godoc
// @Summary      Planilla de descuentos en nómina (xlsx)
// @Tags         hr
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        company_id  query  string  false  "Empresa (solo admin)"
// @Success      200
// @Router       /api/hr/reports/payroll [get]
func (h *ReportHandler) Payroll(c *fiber.Ctx) error {
	companyID := c.Query("company_id")
	if GetRole(c) != entity.RoleAdmin {
		companyID = GetCompanyID(c)
	}
	content, name, err := h.payroll.Generate(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(content)
}

// RetryNotifications godoc
// @Summary      Republicar avisos pendientes o fallidos
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query  int  false  "Máximo de entradas"  default(50)
// @Success      200  {object}  dto.RetryNotificationsResponse
// @Router       /api/notifications/retry [post]
func (h *ReportHandler) RetryNotifications(c *fiber.Ctx) error {
	n, err := h.retry.RetryPending(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.RetryNotificationsResponse{Published: n})
}
