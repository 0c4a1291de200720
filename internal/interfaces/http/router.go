package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/fuel-tracker/internal/application/depletion"
	"github.com/jhoicas/fuel-tracker/internal/application/resolution"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orchestrator *resolution.Orchestrator
	Ledger       *depletion.Ledger
	Transitions  *depletion.TransitionUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(RoleAdmin, RoleDispatcher, RoleIntegration)
	operators := RequireRole(RoleAdmin, RoleDispatcher)
	adminOnly := RequireRole(RoleAdmin)

	resolutionHandler := NewResolutionHandler(deps.Orchestrator)
	api.Post("/resolve", anyRole, resolutionHandler.Resolve)

	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Transitions, deps.Ledger)
	orders.Post("/:id/transitions", operators, orderHandler.Transition)
	orders.Post("/:id/depletions", operators, orderHandler.Deplete)
	orders.Delete("/:id/depletions", adminOnly, orderHandler.Reverse)
	orders.Get("/:id/depletions", anyRole, orderHandler.Depletions)

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger)
	stock.Get("/available", anyRole, stockHandler.Available)
	stock.Get("/audit", adminOnly, stockHandler.Audit)
}
