package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/crucial707/microblog/internal/auth"
	"github.com/crucial707/microblog/internal/forms"
	"github.com/crucial707/microblog/internal/models"
	"github.com/crucial707/microblog/internal/repo"
)

// lastSeenInterval throttles last_seen writes.
const lastSeenInterval = time.Minute

// Register validates f and creates the account.
func (a *App) Register(ctx context.Context, f *forms.Registration) (*models.User, error) {
	if err := f.Validate(ctx, a.Users, a.Config.MinPasswordLength); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(f.Password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = a.InTx(ctx, func(tx *Tx) error {
		var err error
		user, err = tx.Users.Create(ctx, f.Username, f.Email, hash)
		if err != nil {
			return err
		}
		return tx.Audit.Log(ctx, user.ID, "register", "")
	})
	if err != nil {
		return nil, conflictErrors(err)
	}
	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// conflictErrors turns a unique violation that slipped past validation into a field error.
func conflictErrors(err error) error {
	switch {
	case errors.Is(err, repo.ErrUsernameTaken):
		return forms.Errors{"username": {"Please use a different username."}}
	case errors.Is(err, repo.ErrEmailTaken):
		return forms.Errors{"email": {"Please use a different email address."}}
	}
	return err
}

// Authenticate checks credentials and records the login.
func (a *App) Authenticate(ctx context.Context, f *forms.Login) (*models.User, error) {
	if err := f.Validate(ctx); err != nil {
		return nil, err
	}
	user, err := a.Users.GetByUsername(ctx, f.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, f.Password) {
		return nil, ErrInvalidCredentials
	}
	if err := a.RecordLogin(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RecordLogin refreshes last_seen and writes a login audit entry.
func (a *App) RecordLogin(ctx context.Context, user *models.User) error {
	now := a.now().UTC()
	err := a.InTx(ctx, func(tx *Tx) error {
		if err := tx.Users.TouchLastSeen(ctx, user.ID, now); err != nil {
			return err
		}
		return tx.Audit.Log(ctx, user.ID, "login", "")
	})
	if err != nil {
		return err
	}
	user.LastSeen = now
	return nil
}

// SessionToken issues a session token; remember extends its lifetime.
func (a *App) SessionToken(user *models.User, remember bool) (string, time.Duration, error) {
	ttl := a.Config.SessionTTL
	if remember {
		ttl = a.Config.RememberMeTTL
	}
	tok, err := a.Signer.IssueSession(user.ID, user.Username, ttl)
	return tok, ttl, err
}

// SessionUser resolves a session token to its user.
func (a *App) SessionUser(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.Signer.ParseSession(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := a.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (a *App) UserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := a.Users.GetByID(ctx, id)
	return user, notFound(err)
}

func (a *App) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := a.Users.GetByUsername(ctx, username)
	return user, notFound(err)
}

// Touch refreshes the user's last_seen, at most once per minute.
func (a *App) Touch(ctx context.Context, user *models.User) error {
	now := a.now().UTC()
	if now.Sub(user.LastSeen) < lastSeenInterval {
		return nil
	}
	if err := a.Users.TouchLastSeen(ctx, user.ID, now); err != nil {
		return err
	}
	user.LastSeen = now
	return nil
}

// UpdateProfile validates f against user and stores the new profile.
func (a *App) UpdateProfile(ctx context.Context, user *models.User, f *forms.EditProfile) (*models.User, error) {
	if err := f.Validate(ctx, a.Users, user.ID, user.Username); err != nil {
		return nil, err
	}
	var updated *models.User
	err := a.InTx(ctx, func(tx *Tx) error {
		var err error
		updated, err = tx.Users.UpdateProfile(ctx, user.ID, f.Username, f.AboutMe)
		if err != nil {
			return err
		}
		return tx.Audit.Log(ctx, user.ID, "profile", f.Username)
	})
	if err != nil {
		return nil, conflictErrors(notFound(err))
	}
	return updated, nil
}

// ProfileOf loads username's profile as seen by viewer, who may be nil.
func (a *App) ProfileOf(ctx context.Context, viewer *models.User, username string) (*models.Profile, error) {
	user, err := a.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	p := &models.Profile{User: *user}
	if p.Followers, err = a.Follows.FollowersCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if p.Following, err = a.Follows.FollowingCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if p.Posts, err = a.Posts.CountByAuthor(ctx, user.ID); err != nil {
		return nil, err
	}
	if viewer != nil {
		p.IsSelf = viewer.ID == user.ID
		if !p.IsSelf {
			if p.IsFollowing, err = a.Follows.IsFollowing(ctx, viewer.ID, user.ID); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func (a *App) Activity(ctx context.Context, user *models.User, limit, offset int) ([]models.AuditEntry, error) {
	return a.Audit.ListForUser(ctx, user.ID, limit, offset)
}
