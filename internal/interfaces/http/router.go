package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizador-api/internal/application/quotation"
	"github.com/jhoicas/Cotizador-api/pkg/jwt"
	"github.com/jhoicas/Cotizador-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PricingUC *quotation.PricingUseCase
	JWTSecret string
	Logger    *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Motor fiscal (requiere Bearer Token con rol de ventas)
	fiscal := api.Group("/fiscal",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(jwt.RoleAdmin, jwt.RoleVendedor),
	)
	fiscalHandler := NewFiscalHandler(deps.PricingUC, deps.Logger)
	fiscal.Post("/line-items/calculate", fiscalHandler.CalculateLine)
	fiscal.Post("/quotations/price", fiscalHandler.PriceQuotation)
	fiscal.Post("/quotations/totals", fiscalHandler.RecomputeTotals)
}
