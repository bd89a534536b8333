package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/microblog/internal/models"
)

// OutboxSource claims stored emails that still need delivery. A claimed
// message is not returned again until lease has passed.
type OutboxSource interface {
	ClaimRetryable(ctx context.Context, maxAttempts, limit int, lease time.Duration) ([]models.OutboxMessage, error)
}

// Requeuer hands a stored email back to the mail queue.
type Requeuer interface {
	Retry(m models.OutboxMessage) error
}

const (
	retryBatch = 100
	// claimLease outlasts a full queue drained at the send timeout, so a
	// claimed message is delivered or back in the outbox before it expires.
	claimLease = 15 * time.Minute
)

// RetryOutbox claims up to one batch of retryable outbox messages, re-queues
// them and returns how many were accepted. It stops early when the queue is
// full; the rest stay claimed until the lease runs out.
func RetryOutbox(ctx context.Context, src OutboxSource, q Requeuer, maxAttempts int) (int, error) {
	list, err := src.ClaimRetryable(ctx, maxAttempts, retryBatch, claimLease)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range list {
		if err := q.Retry(m); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Start runs RetryOutbox on the cron spec until Stop is called on the returned cron.
func Start(spec string, src OutboxSource, q Requeuer, maxAttempts int) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := RetryOutbox(ctx, src, q, maxAttempts)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("scheduler: outbox retry: %v (requeued %d)", err, n)
			return
		}
		if n > 0 {
			log.Printf("scheduler: requeued %d outbox message(s)", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
