package repo

import (
	"context"

	"github.com/crucial707/microblog/internal/models"
)

// PostColumns selects a post together with its author's username and email.
const PostColumns = `p.id, p.body, p.created_at, COALESCE(p.language, ''), p.user_id, u.username, u.email`

// PostOrder is newest first, with the id breaking timestamp ties.
const PostOrder = `p.created_at DESC, p.id DESC`

const postFrom = `posts p JOIN users u ON u.id = p.user_id`

type PostRepo struct {
	DB DBTX
}

func NewPostRepo(db DBTX) *PostRepo {
	return &PostRepo{DB: db}
}

func ScanPost(s Scanner) (models.Post, error) {
	var p models.Post
	err := s.Scan(&p.ID, &p.Body, &p.Timestamp, &p.Language, &p.UserID, &p.Author, &p.AuthorEmail)
	return p, err
}

// Create stores a post by author. An empty language is stored as NULL.
func (r *PostRepo) Create(ctx context.Context, author *models.User, body, language string) (*models.Post, error) {
	p := models.Post{Author: author.Username, AuthorEmail: author.Email}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO posts (body, language, user_id)
		 VALUES ($1, NULLIF($2, ''), $3)
		 RETURNING id, body, created_at, COALESCE(language, ''), user_id`,
		body, language, author.ID,
	).Scan(&p.ID, &p.Body, &p.Timestamp, &p.Language, &p.UserID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepo) Get(ctx context.Context, id int) (*models.Post, error) {
	p, err := ScanPost(r.DB.QueryRowContext(ctx,
		`SELECT `+PostColumns+` FROM `+postFrom+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ByAuthor is the query of every post written by userID.
func (r *PostRepo) ByAuthor(userID int) Query {
	return Query{
		Columns: PostColumns,
		From:    postFrom + ` WHERE p.user_id = $1`,
		Args:    []any{userID},
		OrderBy: PostOrder,
	}
}

// All is the global timeline.
func (r *PostRepo) All() Query {
	return Query{Columns: PostColumns, From: postFrom, OrderBy: PostOrder}
}

func (r *PostRepo) CountByAuthor(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}
