package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/crucial707/microblog/internal/auth"
	"github.com/crucial707/microblog/internal/forms"
	"github.com/crucial707/microblog/internal/mail"
	"github.com/crucial707/microblog/internal/models"
)

// RequestPasswordReset emails a reset link when f.Email belongs to a user.
// Unknown addresses succeed silently so the response does not reveal
// which emails are registered.
func (a *App) RequestPasswordReset(ctx context.Context, f *forms.ResetPasswordRequest) error {
	if err := f.Validate(ctx); err != nil {
		return err
	}
	user, err := a.Users.GetByEmail(ctx, f.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	ttl := a.Config.ResetTokenExpiry
	token, err := a.Signer.IssueResetToken(user.ID, ttl)
	if err != nil {
		return err
	}
	msg, err := mail.ResetPassword(user.Email, mail.ResetPasswordData{
		Username: user.Username,
		Link:     a.Config.BaseURL + "/reset_password/" + token,
		Minutes:  int(ttl / time.Minute),
	})
	if err != nil {
		return err
	}

	if err := a.Mailer.Enqueue(msg); err != nil {
		// The message is kept in the outbox for the retry job.
		slog.Warn("reset email deferred", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetTokenUser returns the user a reset token was issued for, or
// ErrInvalidToken for bad, expired or already used tokens.
func (a *App) ResetTokenUser(ctx context.Context, token string) (*models.User, auth.ResetClaims, error) {
	claims, ok := a.Signer.VerifyResetToken(token)
	if !ok {
		return nil, auth.ResetClaims{}, ErrInvalidToken
	}
	used, err := a.Ledger.IsConsumed(ctx, claims.ID)
	if err != nil {
		return nil, auth.ResetClaims{}, err
	}
	if used {
		return nil, auth.ResetClaims{}, ErrInvalidToken
	}
	user, err := a.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ResetClaims{}, ErrInvalidToken
		}
		return nil, auth.ResetClaims{}, err
	}
	return user, claims, nil
}

// ResetPassword sets a new password for the token's user and burns the token.
func (a *App) ResetPassword(ctx context.Context, token string, f *forms.ResetPassword) (*models.User, error) {
	user, claims, err := a.ResetTokenUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(ctx, a.Config.MinPasswordLength); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(f.Password)
	if err != nil {
		return nil, err
	}

	err = a.InTx(ctx, func(tx *Tx) error {
		if err := tx.Users.SetPassword(ctx, user.ID, hash); err != nil {
			return err
		}
		if err := tx.Audit.Log(ctx, user.ID, "reset_password", ""); err != nil {
			return err
		}
		fresh, err := a.Ledger.Consume(ctx, claims.ID, claims.ExpiresAt.Time.Sub(a.now()))
		if err != nil {
			return err
		}
		if !fresh {
			return ErrInvalidToken
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	user.PasswordHash = hash
	return user, nil
}
