package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/microblog/internal/models"
)

const userColumns = `u.id, u.username, u.email, COALESCE(u.password_hash, ''), u.about_me, u.last_seen, u.created_at`

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{DB: db}
}

// ScanUser reads a row selected with the user columns.
func ScanUser(s Scanner) (models.User, error) {
	var u models.User
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AboutMe, &u.LastSeen, &u.CreatedAt)
	return u, err
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users AS u (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := ScanUser(r.DB.QueryRowContext(ctx, query, username, email, passwordHash))
	if err != nil {
		return nil, userConflict(err)
	}
	return &user, nil
}

// ==========================
// Lookups
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getBy(ctx, "u.id", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "u.username", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "u.email", email)
}

func (r *UserRepo) getBy(ctx context.Context, column string, value any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE ` + column + ` = $1`
	user, err := ScanUser(r.DB.QueryRowContext(ctx, query, value))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken reports whether a user other than exceptID owns username.
// Pass exceptID 0 when no user is excluded.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string, exceptID int) (bool, error) {
	var taken bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`,
		username, exceptID,
	).Scan(&taken)
	return taken, err
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string, exceptID int) (bool, error) {
	var taken bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, exceptID,
	).Scan(&taken)
	return taken, err
}

// ==========================
// Updates
// ==========================
func (r *UserRepo) UpdateProfile(ctx context.Context, id int, username, aboutMe string) (*models.User, error) {
	query := `
		UPDATE users AS u
		SET username = $1, about_me = $2
		WHERE u.id = $3
		RETURNING ` + userColumns

	user, err := ScanUser(r.DB.QueryRowContext(ctx, query, username, aboutMe, id))
	if err != nil {
		return nil, userConflict(err)
	}
	return &user, nil
}

func (r *UserRepo) SetPassword(ctx context.Context, id int, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
}

func (r *UserRepo) TouchLastSeen(ctx context.Context, id int, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_seen = $1 WHERE id = $2`, at, id)
}

func (r *UserRepo) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ==========================
// List Users
// ==========================
func (r *UserRepo) All() Query {
	return Query{Columns: userColumns, From: `users u`, OrderBy: `u.username`}
}

func (r *UserRepo) List(ctx context.Context, page, perPage int) (Page[models.User], error) {
	return Paginate(ctx, r.DB, r.All(), page, perPage, ScanUser)
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
