package service

import (
	"context"
	"strings"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/policy"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

// IntakeInput is an inbound change-request email.
type IntakeInput struct {
	Subject string
	Body    string
	From    string
}

// ParsedSubject holds the fields encoded in an intake subject line.
type ParsedSubject struct {
	Customer    string
	Module      string
	CRType      string
	IssueType   string
	Description string
}

// ParseEmailSubject splits "Customer | Module | CRType | Issue Type | Description".
// Parts after the fifth belong to the description.
func ParseEmailSubject(subject string) (ParsedSubject, bool) {
	parts := strings.Split(subject, "|")
	if len(parts) < 5 {
		return ParsedSubject{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return ParsedSubject{
		Customer:    parts[0],
		Module:      parts[1],
		CRType:      parts[2],
		IssueType:   parts[3],
		Description: strings.Join(parts[4:], " | "),
	}, true
}

// IntakeEmail creates a ticket from a change-request email.
func (s *TicketService) IntakeEmail(ctx context.Context, actor *domain.User, input IntakeInput) (*domain.Ticket, error) {
	if actor == nil || !s.policy.Can(actor.Role, policy.ActionCreateTicket) {
		return nil, apperrors.NewForbidden("your role cannot create tickets")
	}
	parsed, ok := ParseEmailSubject(input.Subject)
	if !ok {
		return nil, apperrors.NewValidationError(
			"subject must look like: Customer | Module | CRType | Issue Type | Description",
			map[string]any{"field": "subject"})
	}

	create := TicketCreateInput{
		Customer:    parsed.Customer,
		Module:      parsed.Module,
		CRType:      parsed.CRType,
		IssueType:   parsed.IssueType,
		Description: parsed.Description,
	}
	if body := strings.TrimSpace(input.Body); body != "" {
		summary := parsed.Description
		create.Type = &summary
		create.Description = body
	}
	if from := strings.TrimSpace(input.From); from != "" {
		remarks := "Received by email from " + from
		create.Remarks = &remarks
	}
	return s.create(ctx, actor, create, strings.TrimSpace(input.Subject))
}
