package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/events"
)

type flakySender struct {
	mu       sync.Mutex
	failures int
	sent     []Message
	calls    int
}

func (s *flakySender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testJob() Job {
	return NewAssignmentJob("2026-00001", events.TicketCreatedPayload{
		Customer:       "Acme",
		Module:         "Billing",
		Priority:       domain.TicketPriorityHigh,
		SEName:         "SE1",
		Developer:      "Dev1",
		DeveloperEmail: "dev1@example.com",
		Description:    "Invoice <script>alert(1)</script> totals are wrong",
	}, "dev-team@example.com", time.Now())
}

func TestRender(t *testing.T) {
	msg := Render(testJob())
	assert.Equal(t, "dev1@example.com", msg.To)
	assert.Equal(t, "dev-team@example.com", msg.CC)
	assert.Equal(t, "New CR Assigned - Ticket 2026-00001", msg.Subject)
	assert.Contains(t, msg.PlainBody, "Customer: Acme")
	assert.Contains(t, msg.PlainBody, "Subject: N/A")
	assert.Contains(t, msg.HTMLBody, "2026-00001")
	assert.NotContains(t, msg.HTMLBody, "<script>")
}

func TestMemoryQueue(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testJob()))
	assert.ErrorIs(t, q.Enqueue(ctx, testJob()), ErrQueueFull)

	d, err := q.Dequeue(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2026-00001", d.Job.TicketNumber)
	assert.NoError(t, q.Ack(ctx, d))

	d, err = q.Dequeue(ctx, 10*time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, d)
}

func TestWorkerRetriesUntilSent(t *testing.T) {
	sender := &flakySender{failures: 2}
	w := NewWorker(NewMemoryQueue(1), sender, zap.NewNop(), 1, 3)
	w.backoff = 0

	w.Process(context.Background(), &Delivery{Job: testJob()})

	assert.Equal(t, 3, sender.calls)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "dev1@example.com", sender.sent[0].To)
}

func TestWorkerLogsFinalFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sender := &flakySender{failures: 10}
	w := NewWorker(NewMemoryQueue(1), sender, zap.New(core), 1, 2)
	w.backoff = 0

	w.Process(context.Background(), &Delivery{Job: testJob()})

	assert.Equal(t, 2, sender.calls)
	assert.Empty(t, sender.sent)
	assert.Equal(t, 1, logs.FilterMessage("notification failed").Len())
}

func TestWorkerPoolDrainsQueue(t *testing.T) {
	q := NewMemoryQueue(8)
	sender := &flakySender{}
	w := NewWorker(q, sender, zap.NewNop(), 2, 1)

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(context.Background(), testJob()))
	}
	w.Start(context.Background())
	assert.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) == 3
	}, 2*time.Second, 10*time.Millisecond)
	w.Stop()
}
