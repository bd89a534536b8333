// Package tokenstore remembers which password reset tokens have been used.
package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "reset:used:"

// Store is a redis-backed ledger of consumed token ids. A Store without a
// client is disabled and treats every token as fresh.
type Store struct {
	client *redis.Client
}

// New connects to redisURL. An empty URL yields a disabled store.
func New(ctx context.Context, redisURL string) (*Store, error) {
	if redisURL == "" {
		return &Store{}, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: client}, nil
}

func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Enabled() bool { return s != nil && s.client != nil }

// Consume marks jti as used for ttl. It reports false when the token had
// already been consumed.
func (s *Store) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if !s.Enabled() {
		return true, nil
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.SetNX(ctx, keyPrefix+jti, 1, ttl).Result()
}

func (s *Store) IsConsumed(ctx context.Context, jti string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	n, err := s.client.Exists(ctx, keyPrefix+jti).Result()
	return n > 0, err
}

// Ping checks the connection; a disabled store is always healthy.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}
