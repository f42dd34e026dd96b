package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/erp-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

// Clock returns the current instant. Tests swap it for a fixed time.
type Clock func() time.Time

const defaultMutationTimeout = 10 * time.Second

// detach keeps a write running after the client goes away, bounded by timeout.
func detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultMutationTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// notFound translates the repository sentinel into the API error for resource.
func notFound(err error, resource, key string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": key})
	}
	return err
}
