// Package events publishes domain events after a change has been committed.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectPostCreated    = "microblog.post.created"
	SubjectUserFollowed   = "microblog.user.followed"
	SubjectUserUnfollowed = "microblog.user.unfollowed"
)

type PostCreated struct {
	PostID    int       `json:"post_id"`
	UserID    int       `json:"user_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Language  string    `json:"language,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FollowChanged is the payload of both follow and unfollow events.
type FollowChanged struct {
	FollowerID int       `json:"follower_id"`
	Follower   string    `json:"follower"`
	FollowedID int       `json:"followed_id"`
	Followed   string    `json:"followed"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() {}

type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NATSPublisher struct {
	conn natsConn
}

// Connect returns a NATS publisher, or Nop when url is empty.
func Connect(url string) (Publisher, error) {
	if url == "" {
		return Nop{}, nil
	}
	nc, err := nats.Connect(url,
		nats.Name("microblog"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		if errors.Is(err, nats.ErrConnectionClosed) {
			return fmt.Errorf("publish %s: connection closed: %w", subject, err)
		}
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		slog.Warn("nats drain", "error", err)
	}
}

// Event is one published message kept by a Recorder.
type Event struct {
	Subject string
	Payload any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, subject string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Subject: subject, Payload: payload})
	return nil
}

func (r *Recorder) Close() {}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
