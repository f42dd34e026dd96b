package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/erp-ticket-service/internal/events"
)

// Job is one assignment email waiting to be delivered.
type Job struct {
	ID           string                      `json:"id"`
	TicketNumber string                      `json:"ticket_number"`
	To           string                      `json:"to"`
	CC           string                      `json:"cc,omitempty"`
	Ticket       events.TicketCreatedPayload `json:"ticket"`
	EnqueuedAt   time.Time                   `json:"enqueued_at"`
}

// NewAssignmentJob builds the job announcing a new ticket to its developer.
func NewAssignmentJob(ticketNumber string, ticket events.TicketCreatedPayload, cc string, now time.Time) Job {
	return Job{
		ID:           uuid.NewString(),
		TicketNumber: ticketNumber,
		To:           ticket.DeveloperEmail,
		CC:           cc,
		Ticket:       ticket,
		EnqueuedAt:   now.UTC(),
	}
}
