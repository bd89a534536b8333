package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/microblog/internal/models"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []Message
	fail  error
	block chan struct{}
}

func (s *fakeSender) Name() string { return "fake" }

func (s *fakeSender) Send(ctx context.Context, msg Message) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeOutbox struct {
	mu    sync.Mutex
	saved map[string]models.OutboxMessage
	sent  []string
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{saved: map[string]models.OutboxMessage{}}
}

func (o *fakeOutbox) Save(_ context.Context, m models.OutboxMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.saved[m.ID] = m
	return nil
}

func (o *fakeOutbox) MarkSent(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, id)
	return nil
}

func (o *fakeOutbox) get(id string) (models.OutboxMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.saved[id]
	return m, ok
}

func shutdown(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Shutdown(ctx))
}

func TestQueue_DeliversMessages(t *testing.T) {
	sender := &fakeSender{}
	q := NewQueue(sender, newFakeOutbox(), 2, 10)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Message{To: []string{"a@example.com"}, Subject: "hi"}))
	}
	shutdown(t, q)
	assert.Equal(t, 5, sender.count())
}

func TestQueue_FailedSendGoesToOutbox(t *testing.T) {
	sender := &fakeSender{fail: errors.New("provider down")}
	outbox := newFakeOutbox()
	q := NewQueue(sender, outbox, 1, 10)

	require.NoError(t, q.Enqueue(Message{ID: "m1", To: []string{"a@example.com"}, Subject: "hi"}))
	shutdown(t, q)

	m, ok := outbox.get("m1")
	require.True(t, ok)
	assert.Equal(t, models.OutboxFailed, m.Status)
	assert.Equal(t, 1, m.Attempts)
	assert.Equal(t, "provider down", m.LastError)
}

func TestQueue_FullQueueSpillsWithoutBlocking(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{})}
	outbox := newFakeOutbox()
	q := NewQueue(sender, outbox, 1, 1)

	// The worker takes the first message and blocks; the second fills the buffer.
	require.NoError(t, q.Enqueue(Message{ID: "a"}))
	require.Eventually(t, func() bool { return len(q.jobs) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(Message{ID: "b"}))

	err := q.Enqueue(Message{ID: "c"})
	assert.ErrorIs(t, err, ErrQueueFull)
	m, ok := outbox.get("c")
	require.True(t, ok)
	assert.Equal(t, models.OutboxPending, m.Status)

	close(sender.block)
	shutdown(t, q)
	assert.Equal(t, 2, sender.count())
}

func TestQueue_RetryMarksSent(t *testing.T) {
	sender := &fakeSender{}
	outbox := newFakeOutbox()
	q := NewQueue(sender, outbox, 1, 4)

	require.NoError(t, q.Retry(models.OutboxMessage{ID: "r1", To: []string{"a@example.com"}, Attempts: 2}))
	shutdown(t, q)

	assert.Equal(t, []string{"r1"}, outbox.sent)
}

func TestQueue_EnqueueAfterShutdown(t *testing.T) {
	outbox := newFakeOutbox()
	q := NewQueue(&fakeSender{}, outbox, 1, 1)
	shutdown(t, q)

	err := q.Enqueue(Message{ID: "late"})
	assert.ErrorIs(t, err, ErrQueueClosed)
	_, ok := outbox.get("late")
	assert.True(t, ok)
}
