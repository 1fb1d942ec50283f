package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/observ"
	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/logging"
	"github.com/google/uuid"
)

type MaterializeOutput struct {
	OrderID string
	// Replay is true when the event had already been processed and the
	// existing order was returned.
	Replay bool
}

// MaterializeOrder turns a verified payment_success event into exactly
// one order. Deliveries are at-least-once and unordered; all exclusion
// lives in the order store's unique key on session_id.
//
// Nothing carried in the event is trusted as a value: the session id,
// service id and tier are lookup keys, the seller and price are
// re-resolved from the catalog, and the event's amount field is ignored
// outright.
type MaterializeOrder struct {
	catalog  CatalogReader
	sessions SessionStore
	orders   OrderStore
	cache    ConfirmationCache
	alerts   AlertNotifier
}

func NewMaterializeOrder(catalog CatalogReader, sessions SessionStore, orders OrderStore, cache ConfirmationCache, alerts AlertNotifier) *MaterializeOrder {
	return &MaterializeOrder{
		catalog:  catalog,
		sessions: sessions,
		orders:   orders,
		cache:    cache,
		alerts:   alerts,
	}
}

func (uc *MaterializeOrder) Execute(ctx context.Context, ev PaymentEventMsg) (MaterializeOutput, error) {
	l := logging.FromCtx(ctx).With("session_id", ev.Metadata.SessionID, "tx_id", ev.TransactionID)

	sessionID := ev.Metadata.SessionID
	if sessionID == "" || ev.TransactionID == "" {
		return MaterializeOutput{}, domain.ErrSessionNotFound
	}

	// Fast path: replayed delivery already answered once.
	if uc.cache != nil {
		if orderID, ok, _ := uc.cache.Recall(ctx, sessionID); ok {
			observ.ReplaysServed.Inc()
			return MaterializeOutput{OrderID: orderID, Replay: true}, nil
		}
	}

	// Durable idempotency check, before anything else.
	if existing, err := uc.orders.FindBySessionID(ctx, sessionID); err == nil && existing != nil {
		uc.remember(ctx, sessionID, existing.ID)
		observ.ReplaysServed.Inc()
		return MaterializeOutput{OrderID: existing.ID, Replay: true}, nil
	} else if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		return MaterializeOutput{}, fmt.Errorf("order lookup: %w", err)
	}

	sess, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return MaterializeOutput{}, err
	}
	if sess.Status == domain.SessionExpired {
		return MaterializeOutput{}, domain.ErrSessionExpired
	}

	// The event's lookup keys must agree with the session we issued.
	if ev.Metadata.ServiceID != sess.ServiceID ||
		domain.Tier(ev.Metadata.Tier) != sess.Tier ||
		ev.Metadata.BuyerID != sess.BuyerID {
		uc.alert(ctx, l, AlertMsg{
			Kind:          "event_mismatch",
			SessionID:     sessionID,
			ServiceID:     ev.Metadata.ServiceID,
			TransactionID: ev.TransactionID,
			Detail:        "event metadata disagrees with issued session",
		})
		return MaterializeOutput{}, domain.ErrEventMismatch
	}

	svc, sellerID, err := uc.catalog.GetServiceWithOwner(ctx, sess.ServiceID)
	if err != nil {
		return MaterializeOutput{}, err
	}
	if sellerID == "" {
		observ.IntegrityFaults.Inc()
		uc.alert(ctx, l, AlertMsg{
			Kind:          "seller_unresolved",
			SessionID:     sessionID,
			ServiceID:     sess.ServiceID,
			TransactionID: ev.TransactionID,
			Detail:        "company has no owner on record",
		})
		return MaterializeOutput{}, domain.ErrSellerUnresolved
	}

	// Re-resolve against the current catalog; the session amount is the
	// contract the buyer saw. Drift means the order is withheld.
	price, err := domain.ResolvePrice(svc, sess.Tier, sess.Amount.Currency)
	if err != nil {
		// Tier definition vanished since issuance: same class of drift.
		observ.PriceMismatches.Inc()
		uc.alert(ctx, l, AlertMsg{
			Kind:          "price_mismatch",
			SessionID:     sessionID,
			ServiceID:     sess.ServiceID,
			TransactionID: ev.TransactionID,
			Detail:        "tier no longer resolvable",
		})
		return MaterializeOutput{}, domain.ErrPriceMismatch
	}
	if price.Cents != sess.Amount.Cents {
		observ.PriceMismatches.Inc()
		uc.alert(ctx, l, AlertMsg{
			Kind:          "price_mismatch",
			SessionID:     sessionID,
			ServiceID:     sess.ServiceID,
			TransactionID: ev.TransactionID,
			Detail:        fmt.Sprintf("session=%d catalog=%d", sess.Amount.Cents, price.Cents),
		})
		return MaterializeOutput{}, domain.ErrPriceMismatch
	}

	pkg, err := domain.ResolvePackage(svc, sess.Tier)
	if err != nil {
		return MaterializeOutput{}, fmt.Errorf("resolve snapshot: %w", err)
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		TransactionID:   ev.TransactionID,
		BuyerID:         sess.BuyerID,
		SellerID:        sellerID,
		ServiceID:       sess.ServiceID,
		ServiceTitle:    svc.Title,
		Tier:            sess.Tier,
		AgreedPrice:     price,
		Status:          domain.OrderPaid,
		PackageSnapshot: pkg,
		CreatedAt:       time.Now().UTC(),
	}

	if err := uc.orders.InsertIfAbsent(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			// Lost the race against a concurrent duplicate delivery:
			// resolve through the read path, never error to the caller.
			existing, lookupErr := uc.orders.FindBySessionID(ctx, sessionID)
			if lookupErr != nil {
				return MaterializeOutput{}, fmt.Errorf("duplicate fallback: %w", lookupErr)
			}
			uc.remember(ctx, sessionID, existing.ID)
			observ.ReplaysServed.Inc()
			return MaterializeOutput{OrderID: existing.ID, Replay: true}, nil
		}
		return MaterializeOutput{}, fmt.Errorf("insert order: %w", err)
	}

	uc.remember(ctx, sessionID, order.ID)
	observ.OrdersMaterialized.Inc()
	l.Info("order materialized", "order_id", order.ID, "seller_id", sellerID, "amount_cents", price.Cents)

	return MaterializeOutput{OrderID: order.ID}, nil
}

func (uc *MaterializeOrder) remember(ctx context.Context, sessionID, orderID string) {
	if uc.cache != nil {
		_ = uc.cache.Remember(ctx, sessionID, orderID)
	}
}

func (uc *MaterializeOrder) alert(ctx context.Context, l *slog.Logger, a AlertMsg) {
	l.Error("confirmation withheld", "kind", a.Kind, "detail", a.Detail)
	if uc.alerts != nil {
		if err := uc.alerts.Notify(ctx, a); err != nil {
			l.Error("alert publish failed", "err", err)
		}
	}
}
