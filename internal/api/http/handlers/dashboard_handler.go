package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erp-ticket-service/internal/service"
)

// DashboardHandler serves aggregate counts.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := h.dashboard.ComputeStats(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
