package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erp-ticket-service/internal/api/dto"
	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/repository"
	"github.com/spec-kit/erp-ticket-service/internal/service"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), actor, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ticket)
}

// Intake POST /api/tickets/intake.
func (h *TicketsHandler) Intake(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.IntakeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.IntakeEmail(c.UserContext(), actor, service.IntakeInput{
		Subject: req.Subject,
		Body:    req.Body,
		From:    req.From,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ticket)
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(tickets)
}

// GetTicket GET /api/tickets/:ticket_number.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), actor, pathParam(c, "ticket_number"))
	if err != nil {
		return err
	}
	return c.JSON(ticket)
}

// UpdateTicket PUT /api/tickets/:ticket_number.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), actor, pathParam(c, "ticket_number"), req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(ticket)
}

// UpdateStatus PUT /api/tickets/:ticket_number/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), actor, pathParam(c, "ticket_number"), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(ticket)
}

// parseTicketQuery reads list filters. Empty values and "all" impose no constraint.
func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, error) {
	var q dto.TicketListQuery
	if err := c.QueryParser(&q); err != nil {
		return repository.TicketFilter{}, apperrors.NewValidationError("invalid query", nil)
	}
	clean := func(v string) string {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, "all") {
			return ""
		}
		return v
	}
	q.FromDate, q.ToDate = clean(q.FromDate), clean(q.ToDate)
	if err := dto.Validate(q); err != nil {
		return repository.TicketFilter{}, err
	}

	filter := repository.TicketFilter{
		Module:    clean(q.Module),
		Customer:  clean(q.Customer),
		Developer: clean(q.Developer),
		SEName:    clean(q.SEName),
		IssueType: clean(q.IssueType),
		FromDate:  q.FromDate,
		ToDate:    q.ToDate,
	}
	if v := clean(q.Status); v != "" {
		status, ok := domain.ParseTicketStatus(v)
		if !ok {
			return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"field": "status"})
		}
		filter.Status = status
	}
	if v := clean(q.CRType); v != "" {
		crType, ok := domain.ParseCRType(v)
		if !ok {
			return filter, apperrors.NewValidationError("invalid cr_type filter", map[string]any{"field": "cr_type"})
		}
		filter.CRType = crType
	}
	return filter, nil
}
