package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/microblog/internal/models"
)

type key string

const (
	UserIDKey key = "user_id"
	userKey   key = "user"
	holderKey key = "user_holder"
)

// userHolder lets RequestLog see the user resolved by an inner middleware.
type userHolder struct {
	id int
}

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

// SessionLoader resolves a signed session token to its user.
type SessionLoader interface {
	SessionUser(ctx context.Context, token string) (*models.User, error)
}

// Toucher refreshes a user's last_seen.
type Toucher interface {
	Touch(ctx context.Context, user *models.User) error
}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if h, ok := ctx.Value(holderKey).(*userHolder); ok {
		h.id = user.ID
	}
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, UserIDKey, user.ID)
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func GetUserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserIDKey).(int)
	return id, ok
}

// JWTMiddleware requires a valid "Authorization: Bearer <token>" header.
func JWTMiddleware(sessions SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				unauthorized(w, "invalid authorization header")
				return
			}

			user, err := sessions.SessionUser(r.Context(), tokenStr)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// SessionCookie loads the user named by the session cookie, if any. Requests
// without a valid cookie continue anonymously.
func SessionCookie(name string, sessions SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(name)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := sessions.SessionUser(r.Context(), c.Value)
			if err != nil {
				http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// LastSeen refreshes the current user's last_seen before the handler runs.
// Failures are logged and never block the request.
func LastSeen(t Toucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u := CurrentUser(r.Context()); u != nil {
				if err := t.Touch(r.Context(), u); err != nil {
					slog.Warn("last_seen update failed", "user_id", u.ID, "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
