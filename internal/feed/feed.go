// Package feed builds the post timelines shown to a user.
package feed

import (
	"context"

	"github.com/crucial707/microblog/internal/models"
	"github.com/crucial707/microblog/internal/repo"
)

// followingFrom joins each post to its author and to the viewer's edge
// towards that author, if any. The edge key is (follower_id, followed_id)
// and follower_id is pinned to the viewer, so at most one edge matches a
// post and every post appears once.
const followingFrom = `posts p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN followers f ON f.followed_id = p.user_id AND f.follower_id = $1
	WHERE f.follower_id = $1 OR p.user_id = $1`

type Engine struct {
	DB      repo.DBTX
	PerPage int
}

func NewEngine(db repo.DBTX, perPage int) *Engine {
	return &Engine{DB: db, PerPage: perPage}
}

// FollowingPosts is the query of posts written by userID or by anyone
// userID follows, newest first.
func (e *Engine) FollowingPosts(userID int) repo.Query {
	return repo.Query{
		Columns: repo.PostColumns,
		From:    followingFrom,
		Args:    []any{userID},
		OrderBy: repo.PostOrder,
	}
}

// Home is one page of the viewer's following feed.
func (e *Engine) Home(ctx context.Context, userID, page int) (repo.Page[models.Post], error) {
	return e.paginate(ctx, e.FollowingPosts(userID), page)
}

// Explore is one page of every post on the site.
func (e *Engine) Explore(ctx context.Context, page int) (repo.Page[models.Post], error) {
	return e.paginate(ctx, repo.NewPostRepo(e.DB).All(), page)
}

// Profile is one page of the posts written by userID.
func (e *Engine) Profile(ctx context.Context, userID, page int) (repo.Page[models.Post], error) {
	return e.paginate(ctx, repo.NewPostRepo(e.DB).ByAuthor(userID), page)
}

func (e *Engine) paginate(ctx context.Context, q repo.Query, page int) (repo.Page[models.Post], error) {
	return repo.Paginate(ctx, e.DB, q, page, e.PerPage, repo.ScanPost)
}
