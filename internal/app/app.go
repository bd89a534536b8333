// Package app is the explicitly constructed application context shared by
// the HTML and JSON surfaces.
package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crucial707/microblog/internal/auth"
	"github.com/crucial707/microblog/internal/config"
	"github.com/crucial707/microblog/internal/db"
	"github.com/crucial707/microblog/internal/events"
	"github.com/crucial707/microblog/internal/feed"
	"github.com/crucial707/microblog/internal/mail"
	"github.com/crucial707/microblog/internal/repo"
	"github.com/crucial707/microblog/internal/tokenstore"
	"github.com/crucial707/microblog/internal/translate"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Mailer accepts messages for background delivery.
type Mailer interface {
	Enqueue(msg mail.Message) error
}

// Ledger records consumed password reset tokens.
type Ledger interface {
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	IsConsumed(ctx context.Context, jti string) (bool, error)
}

// Deps are the optional collaborators of an App. Nil fields get no-op defaults.
type Deps struct {
	Ledger     Ledger
	Mailer     Mailer
	Events     events.Publisher
	Translator translate.Translator
}

type App struct {
	Config config.Config
	DB     *sql.DB

	Users   *repo.UserRepo
	Posts   *repo.PostRepo
	Follows *repo.FollowRepo
	Audit   *repo.AuditRepo
	Outbox  *repo.OutboxRepo
	Feed    *feed.Engine

	Signer     *auth.Signer
	Ledger     Ledger
	Mailer     Mailer
	Events     events.Publisher
	Translator translate.Translator

	now func() time.Time
}

func New(cfg config.Config, conn *sql.DB, deps Deps) *App {
	a := &App{
		Config:     cfg,
		DB:         conn,
		Users:      repo.NewUserRepo(conn),
		Posts:      repo.NewPostRepo(conn),
		Follows:    repo.NewFollowRepo(conn),
		Audit:      repo.NewAuditRepo(conn),
		Outbox:     repo.NewOutboxRepo(conn),
		Feed:       feed.NewEngine(conn, cfg.PostsPerPage),
		Signer:     auth.NewSigner(cfg.SecretKey),
		Ledger:     deps.Ledger,
		Mailer:     deps.Mailer,
		Events:     deps.Events,
		Translator: deps.Translator,
		now:        time.Now,
	}
	if a.Ledger == nil {
		a.Ledger = &tokenstore.Store{}
	}
	if a.Mailer == nil {
		a.Mailer = discardMailer{}
	}
	if a.Events == nil {
		a.Events = events.Nop{}
	}
	if a.Translator == nil {
		a.Translator = translate.NewDeepL(cfg.DeepLAPIKey, cfg.DeepLAPIURL)
	}
	return a
}

// SetClock replaces the time source of the app and its signer.
func (a *App) SetClock(now func() time.Time) {
	a.now = now
	a.Signer = a.Signer.WithClock(now)
}

type discardMailer struct{}

func (discardMailer) Enqueue(mail.Message) error { return nil }

// Tx holds repositories bound to one database transaction.
type Tx struct {
	Users   *repo.UserRepo
	Posts   *repo.PostRepo
	Follows *repo.FollowRepo
	Audit   *repo.AuditRepo
}

// InTx runs fn in a transaction. Every change made through tx is committed
// together, or rolled back when fn fails or panics.
func (a *App) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	return db.WithTx(ctx, a.DB, func(sqlTx *sql.Tx) error {
		return fn(&Tx{
			Users:   repo.NewUserRepo(sqlTx),
			Posts:   repo.NewPostRepo(sqlTx),
			Follows: repo.NewFollowRepo(sqlTx),
			Audit:   repo.NewAuditRepo(sqlTx),
		})
	})
}

// Ping checks the database connection.
func (a *App) Ping(ctx context.Context) error {
	return a.DB.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
