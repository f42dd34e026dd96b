package worker

import (
	"context"

	"github.com/spec-kit/erp-ticket-service/internal/notification"
	"github.com/spec-kit/erp-ticket-service/internal/service"
)

// StartNotificationWorker registers notification handlers and starts the
// delivery pool. The returned func stops the pool and waits for it.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, pool *notification.Worker) func() {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if pool == nil {
		return func() {}
	}
	pool.Start(ctx)
	return pool.Stop
}
