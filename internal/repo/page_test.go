package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var postRowColumns = []string{"id", "body", "created_at", "language", "user_id", "username", "email"}

func postRows(n int) *sqlmock.Rows {
	rows := sqlmock.NewRows(postRowColumns)
	now := time.Now()
	for i := n; i > 0; i-- {
		rows.AddRow(i, "post", now.Add(time.Duration(i)*time.Minute), "", 1, "alice", "alice@example.com")
	}
	return rows
}

func TestQuery_SQLNumbersPlaceholdersAfterArgs(t *testing.T) {
	q := Query{Columns: "a", From: "t WHERE x = $1", Args: []any{1}, OrderBy: "a"}
	want := "SELECT a FROM t WHERE x = $1 ORDER BY a LIMIT $2 OFFSET $3"
	if got := q.SQL(); got != want {
		t.Errorf("SQL: got %q, want %q", got, want)
	}
	if got := q.CountSQL(); got != "SELECT COUNT(*) FROM t WHERE x = $1" {
		t.Errorf("CountSQL: got %q", got)
	}
}

func TestPaginate_FirstPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	q := NewPostRepo(db).ByAuthor(1)
	mock.ExpectQuery(regexp.QuoteMeta(q.CountSQL())).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).WithArgs(1, 2, 0).WillReturnRows(postRows(2))

	page, err := Paginate(context.Background(), db, q, 1, 2, ScanPost)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(page.Items) != 2 || !page.HasNext || page.HasPrev || page.NextNum != 2 {
		t.Errorf("unexpected page: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaginate_LastPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	q := NewPostRepo(db).All()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).WithArgs(2, 4).WillReturnRows(postRows(1))

	page, err := Paginate(context.Background(), db, q, 3, 2, ScanPost)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(page.Items) != 1 || page.HasNext || !page.HasPrev || page.PrevNum != 2 {
		t.Errorf("unexpected page: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaginate_OutOfRangeIsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	page, err := Paginate(context.Background(), db, NewPostRepo(db).All(), 99, 2, ScanPost)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %#v", page.Items)
	}
	if page.HasNext || !page.HasPrev {
		t.Errorf("unexpected flags: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct{ page, per, wantPage, wantPer int }{
		{0, 0, 1, DefaultPerPage},
		{-3, 5, 1, 5},
		{2, 1000, 2, MaxPerPage},
	}
	for _, c := range cases {
		p, pp := normalize(c.page, c.per)
		if p != c.wantPage || pp != c.wantPer {
			t.Errorf("normalize(%d,%d) = %d,%d; want %d,%d", c.page, c.per, p, pp, c.wantPage, c.wantPer)
		}
	}
}

