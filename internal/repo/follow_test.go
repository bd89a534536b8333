package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestFollowRepo_Follow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO followers \(follower_id, followed_id\)`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO followers`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewFollowRepo(db)
	added, err := repo.Follow(context.Background(), 1, 2)
	if err != nil || !added {
		t.Fatalf("first Follow: added=%v err=%v", added, err)
	}
	added, err = repo.Follow(context.Background(), 1, 2)
	if err != nil || added {
		t.Fatalf("repeated Follow should be a no-op: added=%v err=%v", added, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFollowRepo_FollowSelf(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	_, err = NewFollowRepo(db).Follow(context.Background(), 3, 3)
	if !errors.Is(err, ErrSelfFollow) {
		t.Errorf("expected ErrSelfFollow, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no query should run: %v", err)
	}
}

func TestFollowRepo_UnfollowMissingIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM followers WHERE follower_id = \$1 AND followed_id = \$2`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := NewFollowRepo(db).Unfollow(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if removed {
		t.Error("expected removed=false")
	}
}

func TestFollowRepo_Counts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM followers`).WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`WHERE followed_id = \$1`).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`WHERE follower_id = \$1`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewFollowRepo(db)
	ctx := context.Background()
	if ok, err := repo.IsFollowing(ctx, 1, 2); err != nil || !ok {
		t.Errorf("IsFollowing: ok=%v err=%v", ok, err)
	}
	if n, err := repo.FollowersCount(ctx, 2); err != nil || n != 4 {
		t.Errorf("FollowersCount: n=%d err=%v", n, err)
	}
	if n, err := repo.FollowingCount(ctx, 1); err != nil || n != 7 {
		t.Errorf("FollowingCount: n=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFollowRepo_EdgesFrom(t *testing.T) {
	q := NewFollowRepo(nil).EdgesFrom(9)
	if len(q.Args) != 1 || q.Args[0] != 9 {
		t.Errorf("unexpected args: %v", q.Args)
	}
	want := "SELECT COUNT(*) FROM followers f JOIN users u ON u.id = f.followed_id WHERE f.follower_id = $1"
	if q.CountSQL() != want {
		t.Errorf("CountSQL: got %q", q.CountSQL())
	}
}
