package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client), mr
}

func TestConsume_SingleUse(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := s.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	used, err := s.IsConsumed(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, used)

	ok, err = s.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsume_ExpiresWithToken(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Consume(ctx, "jti-2", 10*time.Second)
	require.NoError(t, err)
	mr.FastForward(11 * time.Second)

	used, err := s.IsConsumed(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, used)
}

func TestDisabledStore(t *testing.T) {
	s, err := New(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	ok, err := s.Consume(context.Background(), "x", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Consume(context.Background(), "x", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, s.Ping(context.Background()))
}

func TestNew_ConnectsByURL(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := New(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, s.Enabled())
}
