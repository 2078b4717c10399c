package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizador-api/internal/application/dto"
	"github.com/jhoicas/Cotizador-api/internal/application/quotation"
	"github.com/jhoicas/Cotizador-api/internal/domain"
	"github.com/jhoicas/Cotizador-api/pkg/logger"
)

// FiscalHandler expone el motor fiscal al editor de cotizaciones (protegido).
type FiscalHandler struct {
	uc  *quotation.PricingUseCase
	log *logger.Logger
}

// NewFiscalHandler construye el handler. log puede ser nil.
func NewFiscalHandler(uc *quotation.PricingUseCase, log *logger.Logger) *FiscalHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &FiscalHandler{uc: uc, log: log}
}

// CalculateLine godoc
// @Summary      Calcular impuestos de una línea
// @Description  ICMS, IPI, ICMS-ST y FCP-ST de una línea de cotización. Montos a 2 decimales.
// @Tags         fiscal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LineItemRequest  true  "Línea de cotización"
// @Success      200   {object}  dto.LineItemTaxResponse
// @Failure      400   {object}  dto.ItemError
// @Failure      422   {object}  dto.ItemError
// @Failure      502   {object}  dto.ItemError
// @Router       /api/fiscal/line-items/calculate [post]
func (h *FiscalHandler) CalculateLine(c *fiber.Ctx) error {
	var in dto.LineItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CalculateLine(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// PriceQuotation godoc
// @Summary      Calcular cotización completa
// @Description  Calcula todas las líneas en una sesión. Los errores de datos se informan por línea;
// @Description  los totales solo vienen cuando todas las líneas se calcularon.
// @Tags         fiscal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PriceQuotationRequest  true  "Líneas de la cotización"
// @Success      200   {object}  dto.PriceQuotationResponse
// @Failure      400   {object}  dto.ItemError
// @Failure      502   {object}  dto.ItemError
// @Router       /api/fiscal/quotations/price [post]
func (h *FiscalHandler) PriceQuotation(c *fiber.Ctx) error {
	var in dto.PriceQuotationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.PriceQuotation(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// RecomputeTotals godoc
// @Summary      Recalcular totales
// @Description  Suma líneas ya calculadas. No consulta reglas fiscales.
// @Tags         fiscal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecomputeTotalsRequest  true  "Líneas calculadas"
// @Success      200   {object}  dto.QuotationTotalsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/fiscal/quotations/totals [post]
func (h *FiscalHandler) RecomputeTotals(c *fiber.Ctx) error {
	var in dto.RecomputeTotalsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return c.JSON(h.uc.RecomputeTotals(in))
}

// fail mapea errores del motor: validación 400, datos fiscales faltantes 422, fuente de reglas 502.
func (h *FiscalHandler) fail(c *fiber.Ctx, err error) error {
	body := dto.ItemError{Code: quotation.ErrorCode(err), Message: err.Error()}
	var ce *domain.CalculationError
	if errors.As(err, &ce) {
		body.Hint = ce.Hint
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case domain.IsMissingReferenceData(err):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Str("user_id", GetUserID(c)).Msg("fuente de reglas fiscales no disponible")
		body.Message = "fuente de reglas fiscales no disponible, intente más tarde"
		return c.Status(fiber.StatusBadGateway).JSON(body)
	}
}
