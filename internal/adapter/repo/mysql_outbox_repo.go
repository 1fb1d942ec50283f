package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// OutboxRecord is one pending event row. Rows are written inside the
// confirmation transaction (see MySQLOrderRepo.InsertIfAbsent) and
// drained by the publisher loop.
type OutboxRecord struct {
	ID        int64
	Channel   string
	Payload   []byte
	Retry     int
	CreatedAt time.Time
}

type MySQLOutboxRepo struct{ db *sql.DB }

func NewMySQLOutboxRepo(db *sql.DB) *MySQLOutboxRepo { return &MySQLOutboxRepo{db: db} }

// FetchPending returns due PENDING rows, oldest first.
func (r *MySQLOutboxRepo) FetchPending(ctx context.Context, limit int) ([]OutboxRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, channel, payload, retry_count, created_at
FROM outbox
WHERE status = 'PENDING' AND next_attempt_at <= NOW()
ORDER BY id
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxRecord
	for rows.Next() {
		var rec OutboxRecord
		if err := rows.Scan(&rec.ID, &rec.Channel, &rec.Payload, &rec.Retry, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *MySQLOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status = 'SENT' WHERE id = ?`, id)
	return err
}

// MarkRetry pushes the next attempt out with a linear backoff on the
// retry count.
func (r *MySQLOutboxRepo) MarkRetry(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE outbox
SET retry_count = retry_count + 1,
    next_attempt_at = DATE_ADD(NOW(), INTERVAL LEAST(retry_count + 1, 10) * 5 SECOND)
WHERE id = ?`, id)
	return err
}
