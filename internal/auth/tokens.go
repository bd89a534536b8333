package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionClaims identify a logged-in user, in the session cookie and in API bearer tokens.
type SessionClaims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ResetClaims bind a password reset link to one user.
type ResetClaims struct {
	UserID int `json:"reset_password"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens with one secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of s that reads the time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	return &Signer{secret: s.secret, now: now}
}

func (s *Signer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *Signer) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// IssueSession returns a session token for the user valid for ttl.
func (s *Signer) IssueSession(userID int, username string, ttl time.Duration) (string, error) {
	return s.sign(SessionClaims{
		UserID:           userID,
		Username:         username,
		RegisteredClaims: s.registered("session", ttl),
	})
}

func (s *Signer) ParseSession(tokenStr string) (*SessionClaims, error) {
	var c SessionClaims
	if err := s.parse(tokenStr, &c); err != nil {
		return nil, err
	}
	if c.Subject != "session" || c.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

// IssueResetToken returns a password reset token for userID valid for ttl.
func (s *Signer) IssueResetToken(userID int, ttl time.Duration) (string, error) {
	return s.sign(ResetClaims{
		UserID:           userID,
		RegisteredClaims: s.registered("reset_password", ttl),
	})
}

// VerifyResetToken returns the claims of a valid reset token. ok is false for
// tampered, foreign or expired tokens; it never reports why.
func (s *Signer) VerifyResetToken(tokenStr string) (claims ResetClaims, ok bool) {
	if err := s.parse(tokenStr, &claims); err != nil {
		return ResetClaims{}, false
	}
	if claims.Subject != "reset_password" || claims.UserID == 0 {
		return ResetClaims{}, false
	}
	return claims, true
}
