package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC         *inventory.StockUseCase
	AdjustStockUC   *inventory.AdjustStockUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	AvailabilityUC  *production.AvailabilityUseCase
	PlanUC          *production.PlanUseCase
	ExecutionUC     *production.ExecutionUseCase
	JWTSecret       string
	MetricsPath     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(requestMetrics)

	metricsPath := deps.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	app.Get(metricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(RoleAdmin, RoleJefeProduccion, RoleOperario)
	planners := RequireRole(RoleAdmin, RoleJefeProduccion)

	// Stock
	stockHandler := NewStockHandler(deps.StockUC, deps.AdjustStockUC, deps.ReplenishmentUC)
	stock := api.Group("/stock-items")
	stock.Post("/", planners, stockHandler.Create)
	stock.Get("/:id", anyRole, stockHandler.GetByID)
	stock.Post("/:id/adjustments", anyRole, stockHandler.Adjust)
	stock.Get("/:id/movements", anyRole, stockHandler.ListMovements)
	stock.Post("/:id/movements", RequireRole(RoleAdmin), stockHandler.RecordMovement)

	alerts := api.Group("/alerts")
	alerts.Get("/", anyRole, stockHandler.ListAlerts)
	alerts.Post("/:id/acknowledge", planners, stockHandler.AcknowledgeAlert)
	api.Get("/replenishment-list", planners, stockHandler.GetReplenishmentList)

	// Producción
	prodHandler := NewProductionHandler(deps.AvailabilityUC, deps.PlanUC, deps.ExecutionUC)
	recipes := api.Group("/recipes")
	recipes.Get("/:id/availability", anyRole, prodHandler.CheckAvailability)
	recipes.Get("/:id/breakdown", anyRole, prodHandler.Breakdown)

	plans := api.Group("/production-plans")
	plans.Post("/", planners, prodHandler.Schedule)
	plans.Get("/", anyRole, prodHandler.ListPlans)
	plans.Get("/:id", anyRole, prodHandler.GetPlan)
	plans.Post("/:id/status", planners, prodHandler.TransitionStatus)
	plans.Post("/:id/archive", planners, prodHandler.Archive)
	plans.Post("/:id/start", anyRole, prodHandler.Start)
	plans.Post("/:id/complete", anyRole, prodHandler.Complete)
	plans.Get("/:id/divergences", anyRole, prodHandler.ListDivergences)
	plans.Get("/:id/availability-record", anyRole, prodHandler.GetAvailabilityRecord)
}

// requestMetrics registra la duración por ruta registrada (no por path crudo).
func requestMetrics(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	route := c.Route().Path
	metrics.HTTPRequestDuration.
		WithLabelValues(c.Method(), route, strconv.Itoa(c.Response().StatusCode())).
		Observe(time.Since(start).Seconds())
	return err
}
