package usecase

import (
	"context"
	"time"

	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
)

// CatalogReader resolves a service and its owning seller. Read-only;
// the catalog is maintained outside this service. A missing owner comes
// back as sellerID == ""; the materializer decides how loud to fail.
type CatalogReader interface {
	GetServiceWithOwner(ctx context.Context, serviceID string) (*domain.Service, string, error)
}

// SessionStore persists issued checkout sessions. The CONFIRMED
// transition is not here: it happens inside the order store's
// confirmation transaction so that session flip and order insert commit
// or roll back together.
type SessionStore interface {
	Put(ctx context.Context, s *domain.CheckoutSession) error
	Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)
	// ExpireStale flips CREATED sessions older than cutoff to EXPIRED,
	// skipping any session that already has an order. Returns the number
	// of sessions expired.
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderStore owns the single serialization point of the pipeline: a
// unique key on orders.session_id.
type OrderStore interface {
	// InsertIfAbsent atomically confirms the session and inserts the
	// order (plus the order.paid outbox row) in one transaction. A
	// unique-key collision returns domain.ErrDuplicateOrder so the
	// caller can fall back to FindBySessionID.
	InsertIfAbsent(ctx context.Context, o *domain.Order) error
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

// ConfirmationCache is a best-effort fast path for webhook replays:
// sessionID -> orderID, so a redelivered event is answered without a
// database round trip. Misses always fall through to the order store.
type ConfirmationCache interface {
	Remember(ctx context.Context, sessionID, orderID string) error
	Recall(ctx context.Context, sessionID string) (string, bool, error)
}

// MetadataSigner signs session metadata before it round-trips through
// the payment provider.
type MetadataSigner interface {
	Sign(payload []byte) string
}

// AlertNotifier surfaces failures that retries cannot fix
// (price mismatch, unresolvable seller) to operators.
type AlertNotifier interface {
	Notify(ctx context.Context, a AlertMsg) error
}
