package repo

import (
	"context"
)

// FollowRepo stores the follow graph as a set of (follower, followed) edges.
type FollowRepo struct {
	DB DBTX
}

func NewFollowRepo(db DBTX) *FollowRepo {
	return &FollowRepo{DB: db}
}

// Follow adds the edge follower -> followed. Adding an existing edge is a
// no-op; added reports whether a new edge was stored.
func (r *FollowRepo) Follow(ctx context.Context, followerID, followedID int) (added bool, err error) {
	if followerID == followedID {
		return false, ErrSelfFollow
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO followers (follower_id, followed_id) VALUES ($1, $2)
		 ON CONFLICT (follower_id, followed_id) DO NOTHING`,
		followerID, followedID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Unfollow removes the edge if present; removing a missing edge is a no-op.
func (r *FollowRepo) Unfollow(ctx context.Context, followerID, followedID int) (removed bool, err error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM followers WHERE follower_id = $1 AND followed_id = $2`,
		followerID, followedID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *FollowRepo) IsFollowing(ctx context.Context, followerID, followedID int) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM followers WHERE follower_id = $1 AND followed_id = $2)`,
		followerID, followedID,
	).Scan(&ok)
	return ok, err
}

func (r *FollowRepo) FollowersCount(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM followers WHERE followed_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *FollowRepo) FollowingCount(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM followers WHERE follower_id = $1`, userID).Scan(&n)
	return n, err
}

// EdgesFrom is the query of users that userID follows.
func (r *FollowRepo) EdgesFrom(userID int) Query {
	return Query{
		Columns: userColumns,
		From:    `followers f JOIN users u ON u.id = f.followed_id WHERE f.follower_id = $1`,
		Args:    []any{userID},
		OrderBy: `u.username`,
	}
}

// EdgesTo is the query of users following userID.
func (r *FollowRepo) EdgesTo(userID int) Query {
	return Query{
		Columns: userColumns,
		From:    `followers f JOIN users u ON u.id = f.follower_id WHERE f.followed_id = $1`,
		Args:    []any{userID},
		OrderBy: `u.username`,
	}
}
