package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/erp-ticket-service/internal/config"
	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/events"
	"github.com/spec-kit/erp-ticket-service/internal/notification"
	"github.com/spec-kit/erp-ticket-service/internal/service"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (s *recordingSender) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Message(nil), s.sent...)
}

func TestStartNotificationWorkerDeliversAssignmentMail(t *testing.T) {
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher(logger)
	queue := notification.NewMemoryQueue(8)
	sender := &recordingSender{}
	notifications := service.NewNotificationService(dispatcher, queue, logger, config.MailConfig{CCAddress: "lead@example.com"})

	stop := StartNotificationWorker(context.Background(), notifications, notification.NewWorker(queue, sender, logger, 2, 1))
	defer stop()

	ticket := &domain.Ticket{
		TicketNumber:   "2026-00001",
		Customer:       "Acme",
		Module:         "Billing",
		CRType:         domain.CRTypeCustomer,
		IssueType:      "Bug",
		Description:    "Totals wrong",
		Priority:       domain.TicketPriorityHigh,
		SEName:         "SE1",
		Developer:      "Dev1",
		DeveloperEmail: "dev1@example.com",
		CRDate:         "2026-03-01",
		CRTime:         "10:00:00",
	}
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:         events.EventTicketCreated,
		TicketNumber: ticket.TicketNumber,
		Payload:      events.NewTicketCreatedPayload(ticket),
	}))

	require.Eventually(t, func() bool { return len(sender.messages()) == 1 }, 5*time.Second, 10*time.Millisecond)
	msg := sender.messages()[0]
	assert.Equal(t, "dev1@example.com", msg.To)
	assert.Equal(t, "lead@example.com", msg.CC)
	assert.Contains(t, msg.Subject, "2026-00001")
}

func TestStartNotificationWorkerWithoutPool(t *testing.T) {
	stop := StartNotificationWorker(context.Background(), nil, nil)
	assert.NotPanics(t, stop)
}
