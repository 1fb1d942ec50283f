package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the server error for a unique-key violation.
const mysqlDuplicateEntry = 1062

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

// InsertIfAbsent commits the whole confirmation in one transaction:
// order insert, session CREATED->CONFIRMED, order.paid outbox row.
// The unique key on orders.session_id is the serialization point: a
// concurrent duplicate delivery loses with ErrDuplicateOrder and the
// caller resolves it through FindBySessionID.
func (r *MySQLOrderRepo) InsertIfAbsent(ctx context.Context, o *domain.Order) error {
	snapshot, err := json.Marshal(o.PackageSnapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	payload, err := json.Marshal(usecase.OrderPaidMsg{
		OrderID:     o.ID,
		SessionID:   o.SessionID,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		ServiceID:   o.ServiceID,
		AmountCents: o.AgreedPrice.Cents,
		Currency:    o.AgreedPrice.Currency,
	})
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders
  (id, session_id, transaction_id, buyer_id, seller_id, service_id, service_title,
   tier, agreed_price_cents, currency, status, package_snapshot, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.SessionID, o.TransactionID, o.BuyerID, o.SellerID, o.ServiceID, o.ServiceTitle,
		string(o.Tier), o.AgreedPrice.Cents, o.AgreedPrice.Currency, string(o.Status), snapshot, o.CreatedAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return domain.ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE checkout_sessions SET status = 'CONFIRMED', updated_at = NOW()
WHERE session_id = ?`, o.SessionID); err != nil {
		return fmt.Errorf("confirm session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO outbox (channel, payload, status, retry_count, next_attempt_at, created_at)
VALUES ('order.paid.v1', ?, 'PENDING', 0, NOW(), NOW())`, payload); err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const orderColumns = `
id, session_id, transaction_id, buyer_id, seller_id, service_id, service_title,
tier, agreed_price_cents, currency, status, package_snapshot, created_at`

func (r *MySQLOrderRepo) FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE session_id = ?`, sessionID)
	return scanOrder(row)
}

func (r *MySQLOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return scanOrder(row)
}

func scanOrder(row *sql.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		tier     string
		status   string
		snapshot []byte
	)
	if err := row.Scan(&o.ID, &o.SessionID, &o.TransactionID, &o.BuyerID, &o.SellerID,
		&o.ServiceID, &o.ServiceTitle, &tier, &o.AgreedPrice.Cents, &o.AgreedPrice.Currency,
		&status, &snapshot, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("order query: %w", err)
	}
	o.Tier = domain.Tier(tier)
	o.Status = domain.OrderStatus(status)
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &o.PackageSnapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
	}
	return &o, nil
}

var _ usecase.OrderStore = (*MySQLOrderRepo)(nil)
