package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/erp-ticket-service/internal/config"
	"github.com/spec-kit/erp-ticket-service/internal/events"
	"github.com/spec-kit/erp-ticket-service/internal/notification"
)

// NotificationService turns domain events into queued notification jobs.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      notification.Queue
	logger     *zap.Logger
	cc         string
	now        Clock
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, queue notification.Queue, logger *zap.Logger, cfg config.MailConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger,
		cc:         cfg.CCAddress,
		now:        time.Now,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.DeveloperEmail == "" {
		n.logger.Warn("no email on file for developer; skipping notification",
			zap.String("ticket_number", event.TicketNumber),
			zap.String("developer", payload.Developer))
		return nil
	}

	job := notification.NewAssignmentJob(event.TicketNumber, payload, n.cc, n.now())
	if err := n.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue notification for %s: %w", event.TicketNumber, err)
	}
	n.logger.Info("notification queued",
		zap.String("job_id", job.ID),
		zap.String("ticket_number", event.TicketNumber),
		zap.String("to", job.To))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("ticket status changed",
		zap.String("ticket_number", event.TicketNumber),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload))
	return nil
}
