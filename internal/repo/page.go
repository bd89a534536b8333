package repo

import (
	"context"
	"fmt"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Query is an unexecuted SELECT. From holds everything after the FROM keyword
// (joins and WHERE clause); Args are bound to its $n placeholders.
type Query struct {
	Columns string
	From    string
	Args    []any
	OrderBy string
}

// SQL renders the full item query with LIMIT and OFFSET placeholders appended.
func (q Query) SQL() string {
	s := "SELECT " + q.Columns + " FROM " + q.From
	if q.OrderBy != "" {
		s += " ORDER BY " + q.OrderBy
	}
	n := len(q.Args)
	return s + fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
}

func (q Query) CountSQL() string {
	return "SELECT COUNT(*) FROM " + q.From
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
	NextNum int  `json:"next_num,omitempty"`
	PrevNum int  `json:"prev_num,omitempty"`
}

// Paginate counts the rows matched by q and fetches the requested page.
// Pages past the end yield an empty page, not an error.
func Paginate[T any](ctx context.Context, db DBTX, q Query, page, perPage int, scan func(Scanner) (T, error)) (Page[T], error) {
	page, perPage = normalize(page, perPage)
	p := Page[T]{Items: []T{}, Page: page, PerPage: perPage}

	if err := db.QueryRowContext(ctx, q.CountSQL(), q.Args...).Scan(&p.Total); err != nil {
		return p, err
	}

	p.HasPrev = page > 1
	p.HasNext = page*perPage < p.Total
	if p.HasPrev {
		p.PrevNum = page - 1
	}
	if p.HasNext {
		p.NextNum = page + 1
	}

	offset := (page - 1) * perPage
	if offset >= p.Total {
		return p, nil
	}

	args := append(append([]any{}, q.Args...), perPage, offset)
	rows, err := db.QueryContext(ctx, q.SQL(), args...)
	if err != nil {
		return p, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return p, err
		}
		p.Items = append(p.Items, item)
	}
	return p, rows.Err()
}

func normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
