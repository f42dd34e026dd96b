package events

import (
	"time"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketNumber string      `json:"ticket_number"`
	Actor        string      `json:"actor"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// TicketCreatedPayload carries the summary needed to notify the assignee.
type TicketCreatedPayload struct {
	Customer       string                `json:"customer"`
	Module         string                `json:"module"`
	CRType         domain.CRType         `json:"cr_type"`
	IssueType      string                `json:"issue_type"`
	Description    string                `json:"description"`
	Priority       domain.TicketPriority `json:"priority"`
	SEName         string                `json:"se_name"`
	Developer      string                `json:"developer"`
	DeveloperEmail string                `json:"developer_email,omitempty"`
	CRDate         string                `json:"cr_date"`
	CRTime         string                `json:"cr_time"`
	EmailSubject   string                `json:"email_subject,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	CompletedBy *string             `json:"completed_by,omitempty"`
}

// NewTicketCreatedPayload summarises a freshly created ticket.
func NewTicketCreatedPayload(t *domain.Ticket) TicketCreatedPayload {
	return TicketCreatedPayload{
		Customer:       t.Customer,
		Module:         t.Module,
		CRType:         t.CRType,
		IssueType:      t.IssueType,
		Description:    t.Description,
		Priority:       t.Priority,
		SEName:         t.SEName,
		Developer:      t.Developer,
		DeveloperEmail: t.DeveloperEmail,
		CRDate:         t.CRDate,
		CRTime:         t.CRTime,
	}
}
