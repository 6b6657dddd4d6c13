package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/manday-tracker/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Customers *handlers.CustomersHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/estimate", cfg.Tickets.EstimateTicket)
	tickets.Post("/:id/approve", cfg.Tickets.ApproveTicket)
	tickets.Post("/:id/reject", cfg.Tickets.RejectTicket)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
	tickets.Post("/:id/confirm", cfg.Tickets.ConfirmTicket)

	customers := app.Group("/customers")
	customers.Get("/", cfg.Customers.ListCustomers)
	customers.Post("/import", cfg.Customers.ImportCustomers)

	settings := app.Group("/settings")
	settings.Get("/sheet-url", cfg.Customers.GetSheetURL)
	settings.Put("/sheet-url", cfg.Customers.SetSheetURL)
}
