package repo

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/crucial707/microblog/internal/models"
)

// OutboxRepo stores emails awaiting (re)delivery.
type OutboxRepo struct {
	DB DBTX
}

func NewOutboxRepo(db DBTX) *OutboxRepo {
	return &OutboxRepo{DB: db}
}

// Save inserts m or updates its delivery state when it is already stored.
func (r *OutboxRepo) Save(ctx context.Context, m models.OutboxMessage) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO mail_outbox (id, recipients, subject, text_body, html_body, status, attempts, last_error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE
		 SET status = EXCLUDED.status, attempts = EXCLUDED.attempts,
		     last_error = EXCLUDED.last_error, updated_at = NOW()`,
		m.ID, pq.Array(m.To), m.Subject, m.Text, m.HTML, m.Status, m.Attempts, m.LastError,
	)
	return err
}

func (r *OutboxRepo) MarkSent(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE mail_outbox SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.OutboxSent, id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ClaimRetryable marks up to limit unsent messages with fewer than
// maxAttempts tries as queued and returns them, oldest first. Rows claimed
// less than lease ago are skipped, so a message still waiting in the mail
// queue is not handed out twice.
func (r *OutboxRepo) ClaimRetryable(ctx context.Context, maxAttempts, limit int, lease time.Duration) ([]models.OutboxMessage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`UPDATE mail_outbox SET status = $1, updated_at = NOW()
		 WHERE id IN (
		     SELECT id FROM mail_outbox
		     WHERE status <> $2 AND attempts < $3
		       AND (status <> $1 OR updated_at < NOW() - make_interval(secs => $4))
		     ORDER BY updated_at
		     LIMIT $5
		     FOR UPDATE SKIP LOCKED)
		 RETURNING id, recipients, subject, text_body, html_body, status, attempts, last_error, created_at, updated_at`,
		models.OutboxQueued, models.OutboxSent, maxAttempts, int(lease/time.Second), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OutboxMessage
	for rows.Next() {
		var m models.OutboxMessage
		if err := rows.Scan(&m.ID, pq.Array(&m.To), &m.Subject, &m.Text, &m.HTML,
			&m.Status, &m.Attempts, &m.LastError, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// RETURNING does not keep the subquery order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
