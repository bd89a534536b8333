package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
	ErrSelfFollow    = errors.New("cannot follow yourself")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

func uniqueViolation(err error) (*pq.Error, bool) {
	var e *pq.Error
	if errors.As(err, &e) && e.Code == "23505" {
		return e, true
	}
	return nil, false
}

// userConflict maps a unique violation on the users table to a domain error.
func userConflict(err error) error {
	e, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	switch e.Constraint {
	case "users_email_key":
		return ErrEmailTaken
	default:
		return ErrUsernameTaken
	}
}
