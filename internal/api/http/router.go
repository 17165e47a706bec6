package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/api/http/handlers"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/auth"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	SLAPolicies    *handlers.SLAPoliciesHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Health and metrics are public; everything
// under /api/v1 requires a bearer token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	policies := api.Group("/sla-policies")
	policies.Post("", cfg.SLAPolicies.Create)
	policies.Get("", cfg.SLAPolicies.List)
	policies.Get("/:id", cfg.SLAPolicies.Get)
	policies.Patch("/:id", cfg.SLAPolicies.Update)
	policies.Delete("/:id", cfg.SLAPolicies.Deactivate)

	tickets := api.Group("/:kind")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id/transition", cfg.Tickets.Transition)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/unassign", cfg.Tickets.Unassign)
	tickets.Get("/:id/sla", cfg.Tickets.SLA)
	tickets.Get("/:id/history", cfg.Tickets.History)
}
