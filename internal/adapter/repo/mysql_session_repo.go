package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
)

type MySQLSessionRepo struct{ db *sql.DB }

func NewMySQLSessionRepo(db *sql.DB) *MySQLSessionRepo { return &MySQLSessionRepo{db: db} }

func (r *MySQLSessionRepo) Put(ctx context.Context, s *domain.CheckoutSession) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO checkout_sessions
  (session_id, service_id, tier, buyer_id, amount_cents, currency, status, metadata_sig, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
		s.SessionID, s.ServiceID, string(s.Tier), s.BuyerID,
		s.Amount.Cents, s.Amount.Currency, string(s.Status), s.MetadataSig,
		s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *MySQLSessionRepo) Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT session_id, service_id, tier, buyer_id, amount_cents, currency, status, metadata_sig, created_at, updated_at
FROM checkout_sessions WHERE session_id = ?`, sessionID)

	var s domain.CheckoutSession
	var tier, status string
	if err := row.Scan(&s.SessionID, &s.ServiceID, &tier, &s.BuyerID,
		&s.Amount.Cents, &s.Amount.Currency, &status, &s.MetadataSig,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("session query: %w", err)
	}
	s.Tier = domain.Tier(tier)
	s.Status = domain.SessionStatus(status)
	return &s, nil
}

// ExpireStale sweeps CREATED sessions past the cutoff. The NOT EXISTS
// guard keeps a session with an order out of the sweep even if the
// status flip raced the reaper.
func (r *MySQLSessionRepo) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE checkout_sessions cs
SET cs.status = 'EXPIRED', cs.updated_at = NOW()
WHERE cs.status = 'CREATED'
  AND cs.created_at < ?
  AND NOT EXISTS (SELECT 1 FROM orders o WHERE o.session_id = cs.session_id)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire sweep: %w", err)
	}
	return res.RowsAffected()
}

var _ usecase.SessionStore = (*MySQLSessionRepo)(nil)
