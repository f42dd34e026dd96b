package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const pollTimeout = 2 * time.Second

// Worker drains the queue with a fixed pool of goroutines.
type Worker struct {
	queue       Queue
	sender      Sender
	logger      *zap.Logger
	workers     int
	maxAttempts int
	backoff     time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewWorker creates a worker pool. Non-positive sizes fall back to one
// goroutine and three attempts.
func NewWorker(queue Queue, sender Sender, logger *zap.Logger, workers, maxAttempts int) *Worker {
	if workers <= 0 {
		workers = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Worker{
		queue:       queue,
		sender:      sender,
		logger:      logger,
		workers:     workers,
		maxAttempts: maxAttempts,
		backoff:     time.Second,
	}
}

// Start launches the pool. It returns immediately.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	w.logger.Info("notification workers started", zap.Int("workers", w.workers))
}

// Stop signals the pool and waits for in-flight jobs.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) loop(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}
		delivery, err := w.queue.Dequeue(ctx, pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.Error("dequeue notification", zap.Int("worker", id), zap.Error(err))
			w.sleep(ctx, w.backoff)
			continue
		}
		if delivery == nil {
			continue
		}
		w.Process(ctx, delivery)
	}
}

// Process delivers one job with retries and acknowledges it whatever the
// outcome; the final failure is logged.
func (w *Worker) Process(ctx context.Context, d *Delivery) {
	msg := Render(d.Job)
	var err error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err = w.sender.Send(ctx, msg)
		if err == nil {
			w.logger.Info("notification sent",
				zap.String("job_id", d.Job.ID),
				zap.String("ticket_number", d.Job.TicketNumber),
				zap.String("to", d.Job.To),
				zap.Int("attempt", attempt),
			)
			break
		}
		w.logger.Warn("notification attempt failed",
			zap.String("job_id", d.Job.ID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < w.maxAttempts && !w.sleep(ctx, w.backoff*time.Duration(attempt)) {
			// shutting down: leave the job unacknowledged for redelivery
			return
		}
	}
	if err != nil {
		w.logger.Error("notification failed",
			zap.String("job_id", d.Job.ID),
			zap.String("ticket_number", d.Job.TicketNumber),
			zap.String("to", d.Job.To),
			zap.Error(err),
		)
	}
	if ackErr := w.queue.Ack(context.WithoutCancel(ctx), d); ackErr != nil {
		w.logger.Error("ack notification", zap.String("job_id", d.Job.ID), zap.Error(ackErr))
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
