package mail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crucial707/microblog/internal/metrics"
	"github.com/crucial707/microblog/internal/models"
)

var (
	ErrQueueFull   = errors.New("mail queue full")
	ErrQueueClosed = errors.New("mail queue closed")
)

// Outbox persists messages that still need delivery.
type Outbox interface {
	Save(ctx context.Context, m models.OutboxMessage) error
	MarkSent(ctx context.Context, id string) error
}

type job struct {
	msg      Message
	attempts int
	retry    bool
}

// Queue sends email on a fixed pool of workers fed by a bounded channel.
// Enqueue never blocks the caller.
type Queue struct {
	sender  Sender
	outbox  Outbox
	jobs    chan job
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(sender Sender, outbox Outbox, workers, size int) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	q := &Queue{
		sender:  sender,
		outbox:  outbox,
		jobs:    make(chan job, size),
		timeout: 30 * time.Second,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue schedules msg for delivery. When the queue is full or closed the
// message is written to the outbox for the retry job and the error says so.
func (q *Queue) Enqueue(msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if err := q.push(job{msg: msg}); err != nil {
		metrics.IncMail("spilled")
		q.persist(msg, models.OutboxPending, 0, err.Error())
		return err
	}
	return nil
}

// Retry re-queues a stored outbox message. A full queue leaves it stored for
// the next run.
func (q *Queue) Retry(m models.OutboxMessage) error {
	return q.push(job{
		msg:      Message{ID: m.ID, To: m.To, Subject: m.Subject, Text: m.Text, HTML: m.HTML},
		attempts: m.Attempts,
		retry:    true,
	})
}

func (q *Queue) push(j job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- j:
		metrics.SetMailQueueDepth(len(q.jobs))
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting messages and waits for queued ones to be sent.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		metrics.SetMailQueueDepth(len(q.jobs))
		q.deliver(j)
	}
}

func (q *Queue) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.sender.Send(ctx, j.msg); err != nil {
		metrics.IncMail("failed")
		slog.Error("mail send failed", "id", j.msg.ID, "provider", q.sender.Name(), "attempt", j.attempts+1, "error", err)
		q.persist(j.msg, models.OutboxFailed, j.attempts+1, err.Error())
		return
	}

	metrics.IncMail("sent")
	if j.retry && q.outbox != nil {
		if err := q.outbox.MarkSent(ctx, j.msg.ID); err != nil {
			slog.Error("mail outbox mark sent", "id", j.msg.ID, "error", err)
		}
	}
}

func (q *Queue) persist(msg Message, status string, attempts int, lastErr string) {
	if q.outbox == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := q.outbox.Save(ctx, models.OutboxMessage{
		ID:        msg.ID,
		To:        msg.To,
		Subject:   msg.Subject,
		Text:      msg.Text,
		HTML:      msg.HTML,
		Status:    status,
		Attempts:  attempts,
		LastError: lastErr,
	})
	if err != nil {
		slog.Error("mail outbox save", "id", msg.ID, "error", err)
	}
}
