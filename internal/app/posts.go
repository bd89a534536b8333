package app

import (
	"context"
	"log/slog"

	"github.com/crucial707/microblog/internal/events"
	"github.com/crucial707/microblog/internal/forms"
	"github.com/crucial707/microblog/internal/metrics"
	"github.com/crucial707/microblog/internal/models"
	"github.com/crucial707/microblog/internal/repo"
)

// CreatePost validates f and stores it as a post by author.
func (a *App) CreatePost(ctx context.Context, author *models.User, f *forms.Post, acceptLanguage string) (*models.Post, error) {
	if err := f.Validate(ctx, acceptLanguage); err != nil {
		return nil, err
	}
	var post *models.Post
	err := a.InTx(ctx, func(tx *Tx) error {
		var err error
		post, err = tx.Posts.Create(ctx, author, f.Body, f.Language)
		if err != nil {
			return err
		}
		return tx.Audit.Log(ctx, author.ID, "post", "")
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPostsCreated()
	a.publish(ctx, events.SubjectPostCreated, events.PostCreated{
		PostID:    post.ID,
		UserID:    author.ID,
		Author:    author.Username,
		Body:      post.Body,
		Language:  post.Language,
		Timestamp: post.Timestamp,
	})
	return post, nil
}

// Follow makes follower follow username. added is false when the edge
// already existed.
func (a *App) Follow(ctx context.Context, follower *models.User, username string) (*models.User, bool, error) {
	return a.changeFollow(ctx, follower, username, true)
}

// Unfollow removes the edge; removed is false when there was none.
func (a *App) Unfollow(ctx context.Context, follower *models.User, username string) (*models.User, bool, error) {
	return a.changeFollow(ctx, follower, username, false)
}

func (a *App) changeFollow(ctx context.Context, follower *models.User, username string, follow bool) (*models.User, bool, error) {
	target, err := a.UserByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if target.ID == follower.ID {
		return target, false, repo.ErrSelfFollow
	}

	action := "unfollow"
	if follow {
		action = "follow"
	}

	var changed bool
	err = a.InTx(ctx, func(tx *Tx) error {
		var err error
		if follow {
			changed, err = tx.Follows.Follow(ctx, follower.ID, target.ID)
		} else {
			changed, err = tx.Follows.Unfollow(ctx, follower.ID, target.ID)
		}
		if err != nil || !changed {
			return err
		}
		return tx.Audit.Log(ctx, follower.ID, action, target.Username)
	})
	if err != nil {
		return target, false, err
	}

	if changed {
		metrics.IncFollow(action)
		subject := events.SubjectUserUnfollowed
		if follow {
			subject = events.SubjectUserFollowed
		}
		a.publish(ctx, subject, events.FollowChanged{
			FollowerID: follower.ID,
			Follower:   follower.Username,
			FollowedID: target.ID,
			Followed:   target.Username,
			At:         a.now().UTC(),
		})
	}
	return target, changed, nil
}

// FollowersOf pages through the users following username.
func (a *App) FollowersOf(ctx context.Context, username string, page int) (repo.Page[models.User], error) {
	user, err := a.UserByUsername(ctx, username)
	if err != nil {
		return repo.Page[models.User]{}, err
	}
	return repo.Paginate(ctx, a.DB, a.Follows.EdgesTo(user.ID), page, a.Config.PostsPerPage, repo.ScanUser)
}

// FollowingOf pages through the users that username follows.
func (a *App) FollowingOf(ctx context.Context, username string, page int) (repo.Page[models.User], error) {
	user, err := a.UserByUsername(ctx, username)
	if err != nil {
		return repo.Page[models.User]{}, err
	}
	return repo.Paginate(ctx, a.DB, a.Follows.EdgesFrom(user.ID), page, a.Config.PostsPerPage, repo.ScanUser)
}

// Translate renders text in dest; an empty source is auto-detected.
func (a *App) Translate(ctx context.Context, text, source, dest string) (string, error) {
	return a.Translator.Translate(ctx, text, source, dest)
}

// publish runs after commit; a failed publish never fails the request.
func (a *App) publish(ctx context.Context, subject string, payload any) {
	if err := a.Events.Publish(ctx, subject, payload); err != nil {
		slog.Warn("event publish failed", "subject", subject, "error", err)
	}
}
