package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("cat-and-dog")
	require.NoError(t, err)
	assert.NotEqual(t, "cat-and-dog", hash)
	assert.True(t, CheckPassword(hash, "cat-and-dog"))
	assert.False(t, CheckPassword(hash, "dog-and-cat"))
	assert.False(t, CheckPassword("", "anything"))
}

func TestResetToken_ValidWithinWindow(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSigner("secret").WithClock(func() time.Time { return start })

	tok, err := s.IssueResetToken(42, 600*time.Second)
	require.NoError(t, err)

	later := s.WithClock(func() time.Time { return start.Add(599 * time.Second) })
	claims, ok := later.VerifyResetToken(tok)
	require.True(t, ok)
	assert.Equal(t, 42, claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestResetToken_Expired(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSigner("secret").WithClock(func() time.Time { return start })

	tok, err := s.IssueResetToken(42, 600*time.Second)
	require.NoError(t, err)

	later := s.WithClock(func() time.Time { return start.Add(601 * time.Second) })
	_, ok := later.VerifyResetToken(tok)
	assert.False(t, ok)
}

func TestResetToken_DifferentSecret(t *testing.T) {
	tok, err := NewSigner("secret").IssueResetToken(42, time.Minute)
	require.NoError(t, err)

	_, ok := NewSigner("other").VerifyResetToken(tok)
	assert.False(t, ok)
}

func TestResetToken_RejectsSessionToken(t *testing.T) {
	s := NewSigner("secret")
	tok, err := s.IssueSession(42, "alice", time.Hour)
	require.NoError(t, err)

	_, ok := s.VerifyResetToken(tok)
	assert.False(t, ok)
}

func TestResetToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := ResetClaims{UserID: 42, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "reset_password",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, ok := NewSigner("secret").VerifyResetToken(tok)
	assert.False(t, ok)
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSigner("secret")
	tok, err := s.IssueSession(7, "bob", time.Hour)
	require.NoError(t, err)

	c, err := s.ParseSession(tok)
	require.NoError(t, err)
	assert.Equal(t, 7, c.UserID)
	assert.Equal(t, "bob", c.Username)

	_, err = s.ParseSession(tok + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	reset, err := s.IssueResetToken(7, time.Hour)
	require.NoError(t, err)
	_, err = s.ParseSession(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
