package feed

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "body", "created_at", "language", "user_id", "username", "email"}

func TestFollowingPosts_SingleQueryShape(t *testing.T) {
	q := NewEngine(nil, 10).FollowingPosts(7)

	require.Equal(t, []any{7}, q.Args)
	sql := q.SQL()
	assert.Contains(t, sql, "LEFT JOIN followers f ON f.followed_id = p.user_id AND f.follower_id = $1")
	assert.Contains(t, sql, "WHERE f.follower_id = $1 OR p.user_id = $1")
	assert.Contains(t, sql, "ORDER BY p.created_at DESC, p.id DESC")
	assert.True(t, strings.HasSuffix(sql, "LIMIT $2 OFFSET $3"))
}

func TestHome_OwnAndFollowedPostsNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// A (id 1) follows B (id 2); B posted twice and A once.
	now := time.Now()
	rows := sqlmock.NewRows(cols).
		AddRow(3, "b2", now, "", 2, "b", "b@example.com").
		AddRow(2, "a1", now.Add(-time.Minute), "", 1, "a", "a@example.com").
		AddRow(1, "b1", now.Add(-2*time.Minute), "", 2, "b", "b@example.com")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts p")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`LEFT JOIN followers f`).WithArgs(1, 10, 0).WillReturnRows(rows)

	page, err := NewEngine(db, 10).Home(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	seen := map[int]bool{}
	for i, p := range page.Items {
		assert.False(t, seen[p.ID], "post %d repeated", p.ID)
		seen[p.ID] = true
		if i > 0 {
			assert.False(t, p.Timestamp.After(page.Items[i-1].Timestamp), "not newest first")
		}
	}
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHome_PastLastPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	page, err := NewEngine(db, 2).Home(context.Background(), 1, 99)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExploreAndProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p JOIN users u ON u.id = p.user_id$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`WHERE p.user_id = \$1`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	e := NewEngine(db, 10)
	_, err = e.Explore(context.Background(), 1)
	require.NoError(t, err)
	_, err = e.Profile(context.Background(), 4, 1)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
