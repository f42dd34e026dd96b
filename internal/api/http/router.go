package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erp-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/erp-ticket-service/internal/auth"
	"github.com/spec-kit/erp-ticket-service/internal/policy"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Dashboard      *handlers.DashboardHandler
	Directory      *handlers.DirectoryHandler
	AuthMiddleware *auth.AuthMiddleware
	Policy         *policy.Policy
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)

	api.Post("/auth/login", cfg.Auth.Login)
	api.Post("/auth/register", cfg.Auth.Register)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Auth.Me)

	protected.Get("/modules", cfg.Directory.Modules)
	protected.Get("/developers", cfg.Directory.Developers)
	protected.Get("/support-engineers", cfg.Directory.SupportEngineers)

	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Post("/tickets/intake", cfg.Tickets.Intake)
	protected.Get("/tickets/:ticket_number", cfg.Tickets.GetTicket)
	protected.Put("/tickets/:ticket_number", cfg.Tickets.UpdateTicket)
	protected.Put("/tickets/:ticket_number/status", cfg.Tickets.UpdateStatus)

	protected.Get("/dashboard/stats", cfg.Dashboard.Stats)

	protected.Put("/users/change-password", cfg.Auth.ChangePassword)
	manageUsers := auth.RequirePermission(cfg.Policy, policy.ActionManageUsers)
	protected.Get("/users", manageUsers, cfg.Users.List)
	protected.Post("/users", manageUsers, cfg.Users.Create)
	protected.Put("/users/:username/role", manageUsers, cfg.Users.UpdateRole)
	protected.Put("/users/:username/reset-password", manageUsers, cfg.Users.ResetPassword)
	protected.Delete("/users/:username", manageUsers, cfg.Users.Delete)

	manageDirectory := auth.RequirePermission(cfg.Policy, policy.ActionManageDirectory)
	protected.Get("/directory", manageDirectory, cfg.Directory.List)
	protected.Put("/directory/:module", manageDirectory, cfg.Directory.Upsert)

	protected.Get("/metrics", auth.RequirePermission(cfg.Policy, policy.ActionViewMetrics), cfg.Health.Metrics)
}
