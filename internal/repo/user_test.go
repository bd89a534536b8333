package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "about_me", "last_seen", "created_at"}

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users AS u \(username, email, password_hash\)`).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "alice", "alice@example.com", "hash", "", now, now))

	user, err := NewUserRepo(db).Create(context.Background(), "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || user.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Create_Duplicates(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{"users_username_key", ErrUsernameTaken},
		{"users_email_key", ErrEmailTaken},
	}
	for _, c := range cases {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: c.constraint})

		_, err = NewUserRepo(db).Create(context.Background(), "alice", "alice@example.com", "hash")
		if !errors.Is(err, c.want) {
			t.Errorf("%s: got %v, want %v", c.constraint, err, c.want)
		}
		db.Close()
	}
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users u WHERE u.username = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err = NewUserRepo(db).GetByUsername(context.Background(), "ghost")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_UsernameTaken_ExcludesSelf(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE username = \$1 AND id <> \$2\)`).
		WithArgs("alice", 1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := NewUserRepo(db).UsernameTaken(context.Background(), "alice", 1)
	if err != nil {
		t.Fatalf("UsernameTaken: %v", err)
	}
	if taken {
		t.Error("expected own username not to count as taken")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_SetPassword_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET password_hash = \$1 WHERE id = \$2`).
		WithArgs("h", 42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewUserRepo(db).SetPassword(context.Background(), 42, "h"); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUserRepo_UpdateProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE users AS u`).
		WithArgs("alice2", "hello", 1).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "alice2", "a@example.com", "h", "hello", now, now))

	u, err := NewUserRepo(db).UpdateProfile(context.Background(), 1, "alice2", "hello")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.Username != "alice2" || u.AboutMe != "hello" {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
