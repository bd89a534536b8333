package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/config"
	"github.com/crucial707/microblog/internal/middleware"
	"github.com/crucial707/microblog/internal/models"
)

var userCols = []string{"id", "username", "email", "password_hash", "about_me", "last_seen", "created_at"}

var alice = &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}

func newTestApp(t *testing.T) (*app.App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		BaseURL:           "http://localhost:8080",
		SecretKey:         "test-secret",
		SessionTTL:        time.Hour,
		RememberMeTTL:     24 * time.Hour,
		ResetTokenExpiry:  10 * time.Minute,
		PostsPerPage:      10,
		MinPasswordLength: 8,
	}
	return app.New(cfg, db, app.Deps{}), mock
}

// newRequest builds a JSON request, optionally signed in as user, with chi
// URL params given as name/value pairs.
func newRequest(method, target string, body any, user *models.User, params ...string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	if user != nil {
		ctx = middleware.WithUser(ctx, user)
	}
	return req.WithContext(ctx)
}

func userRow(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).AddRow(u.ID, u.Username, u.Email, u.PasswordHash, u.AboutMe, time.Time{}, time.Time{})
}

func checkExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
