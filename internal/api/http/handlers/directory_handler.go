package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erp-ticket-service/internal/api/dto"
	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/service"
)

// DirectoryHandler serves the module directory.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Modules GET /api/modules.
func (h *DirectoryHandler) Modules(c *fiber.Ctx) error {
	modules, err := h.directory.ListModules(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"modules": modules})
}

// Developers GET /api/developers.
func (h *DirectoryHandler) Developers(c *fiber.Ctx) error {
	developers, err := h.directory.ListDevelopers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"developers": developers})
}

// SupportEngineers GET /api/support-engineers.
func (h *DirectoryHandler) SupportEngineers(c *fiber.Ctx) error {
	engineers, err := h.directory.ListSupportEngineers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"support_engineers": engineers})
}

// List GET /api/directory.
func (h *DirectoryHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	entries, err := h.directory.ListAssignments(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

// Upsert PUT /api/directory/:module.
func (h *DirectoryHandler) Upsert(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpsertAssignmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	entry, err := h.directory.UpsertAssignment(c.UserContext(), actor, domain.ModuleAssignment{
		Module:          pathParam(c, "module"),
		SupportEngineer: req.SupportEngineer,
		Developer:       req.Developer,
		DeveloperEmail:  req.DeveloperEmail,
	})
	if err != nil {
		return err
	}
	return c.JSON(entry)
}
