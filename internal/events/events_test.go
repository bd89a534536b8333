package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
	drained bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.subject, c.data = subject, data
	return c.err
}

func (c *fakeConn) Drain() error {
	c.drained = true
	return nil
}

func TestNATSPublisher_PublishesJSON(t *testing.T) {
	conn := &fakeConn{}
	p := &NATSPublisher{conn: conn}

	err := p.Publish(context.Background(), SubjectUserFollowed, FollowChanged{FollowerID: 1, Follower: "a", FollowedID: 2, Followed: "b"})
	require.NoError(t, err)
	assert.Equal(t, SubjectUserFollowed, conn.subject)

	var got FollowChanged
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, 2, got.FollowedID)

	p.Close()
	assert.True(t, conn.drained)
}

func TestNATSPublisher_ClosedConnection(t *testing.T) {
	p := &NATSPublisher{conn: &fakeConn{err: nats.ErrConnectionClosed}}
	err := p.Publish(context.Background(), SubjectPostCreated, PostCreated{PostID: 1})
	assert.True(t, errors.Is(err, nats.ErrConnectionClosed))
}

func TestConnect_EmptyURLIsNop(t *testing.T) {
	p, err := Connect("")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), SubjectPostCreated, nil))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_ = r.Publish(context.Background(), SubjectPostCreated, PostCreated{PostID: 3})
	evs := r.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, SubjectPostCreated, evs[0].Subject)
}
