package usecase

import (
	"context"
	"testing"
	"time"

	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type materializeFixture struct {
	catalog  *fakeCatalog
	sessions *fakeSessionStore
	orders   *fakeOrderStore
	cache    *fakeCache
	alerts   *fakeAlerts
	uc       *MaterializeOrder
}

func newMaterializeFixture(t *testing.T) *materializeFixture {
	t.Helper()
	f := &materializeFixture{
		catalog:  newFakeCatalog(),
		sessions: newFakeSessionStore(),
		cache:    newFakeCache(),
		alerts:   &fakeAlerts{},
	}
	f.orders = newFakeOrderStore(f.sessions)
	f.catalog.add(catalogService(), "seller-1")
	f.uc = NewMaterializeOrder(f.catalog, f.sessions, f.orders, f.cache, f.alerts)
	return f
}

func (f *materializeFixture) issueSession(t *testing.T) *domain.CheckoutSession {
	t.Helper()
	sess := &domain.CheckoutSession{
		SessionID:   "sess_abc",
		ServiceID:   "svc-1",
		Tier:        domain.TierStandard,
		BuyerID:     "buyer-1",
		Amount:      domain.Money{Cents: 12000, Currency: "BRL"},
		Status:      domain.SessionCreated,
		MetadataSig: "sig",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, f.sessions.Put(context.Background(), sess))
	return sess
}

func paymentEvent(sess *domain.CheckoutSession, txID string) PaymentEventMsg {
	return PaymentEventMsg{
		Event:         EventPaymentSuccess,
		TransactionID: txID,
		Metadata: PaymentMetadata{
			ServiceID:   sess.ServiceID,
			Tier:        string(sess.Tier),
			BuyerID:     sess.BuyerID,
			AmountCents: sess.Amount.Cents,
			SessionID:   sess.SessionID,
		},
	}
}

func TestMaterialize_HappyPath(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)

	out, err := f.uc.Execute(context.Background(), paymentEvent(sess, "tx-1"))
	require.NoError(t, err)
	assert.False(t, out.Replay)
	assert.NotEmpty(t, out.OrderID)

	order, err := f.orders.FindBySessionID(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, out.OrderID, order.ID)
	assert.Equal(t, "seller-1", order.SellerID)
	assert.Equal(t, "buyer-1", order.BuyerID)
	assert.Equal(t, domain.OrderPaid, order.Status)
	assert.Equal(t, int64(12000), order.AgreedPrice.Cents)
	assert.Equal(t, "BRL", order.AgreedPrice.Currency)
	assert.Equal(t, "tx-1", order.TransactionID)
	assert.Equal(t, int64(12000), order.PackageSnapshot.PriceCents)

	got, err := f.sessions.Get(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionConfirmed, got.Status)
}

func TestMaterialize_ReplayReturnsSameOrder(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)
	ev := paymentEvent(sess, "tx-1")

	first, err := f.uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := f.uc.Execute(context.Background(), ev)
		require.NoError(t, err)
		assert.True(t, again.Replay)
		assert.Equal(t, first.OrderID, again.OrderID)
	}
	assert.Len(t, f.orders.bySession, 1)
}

func TestMaterialize_ReplaySurvivesCacheLoss(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)
	ev := paymentEvent(sess, "tx-1")

	first, err := f.uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	// cache wiped, the order row still answers the replay
	f.cache.m = map[string]string{}

	again, err := f.uc.Execute(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, again.Replay)
	assert.Equal(t, first.OrderID, again.OrderID)
}

func TestMaterialize_DuplicateRaceFallsBackToReadPath(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)

	// A concurrent delivery already inserted; simulate losing the race by
	// seeding the store behind an empty cache.
	winner := &domain.Order{
		ID:          "order-winner",
		SessionID:   sess.SessionID,
		BuyerID:     sess.BuyerID,
		SellerID:    "seller-1",
		ServiceID:   sess.ServiceID,
		Tier:        sess.Tier,
		AgreedPrice: sess.Amount,
		Status:      domain.OrderPaid,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, f.orders.InsertIfAbsent(context.Background(), winner))

	out, err := f.uc.Execute(context.Background(), paymentEvent(sess, "tx-2"))
	require.NoError(t, err)
	assert.True(t, out.Replay)
	assert.Equal(t, "order-winner", out.OrderID)
}

// racingOrderStore loses the insert to a concurrent delivery: the
// pre-insert lookup misses, the insert collides on the unique key, and
// only then does the winner's row become visible.
type racingOrderStore struct {
	winner *domain.Order
	raced  bool
}

func (r *racingOrderStore) InsertIfAbsent(context.Context, *domain.Order) error {
	r.raced = true
	return domain.ErrDuplicateOrder
}

func (r *racingOrderStore) FindBySessionID(context.Context, string) (*domain.Order, error) {
	if !r.raced {
		return nil, domain.ErrOrderNotFound
	}
	return r.winner, nil
}

func (r *racingOrderStore) FindByID(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func TestMaterialize_LosesInsertRace(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)

	store := &racingOrderStore{winner: &domain.Order{ID: "order-winner", SessionID: sess.SessionID}}
	uc := NewMaterializeOrder(f.catalog, f.sessions, store, f.cache, f.alerts)

	out, err := uc.Execute(context.Background(), paymentEvent(sess, "tx-1"))
	require.NoError(t, err)
	assert.True(t, out.Replay)
	assert.Equal(t, "order-winner", out.OrderID)

	// the loser's fallback result is cached for the next replay
	cached, ok, _ := f.cache.Recall(context.Background(), sess.SessionID)
	assert.True(t, ok)
	assert.Equal(t, "order-winner", cached)
}

func TestMaterialize_SessionNotFound(t *testing.T) {
	f := newMaterializeFixture(t)

	ev := PaymentEventMsg{
		Event:         EventPaymentSuccess,
		TransactionID: "tx-1",
		Metadata:      PaymentMetadata{SessionID: "sess_missing", ServiceID: "svc-1", Tier: "standard", BuyerID: "b"},
	}
	_, err := f.uc.Execute(context.Background(), ev)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Empty(t, f.orders.bySession)
}

func TestMaterialize_MissingKeysRejected(t *testing.T) {
	f := newMaterializeFixture(t)

	_, err := f.uc.Execute(context.Background(), PaymentEventMsg{Event: EventPaymentSuccess})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMaterialize_ExpiredSession(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)
	f.sessions.sessions[sess.SessionID].Status = domain.SessionExpired

	_, err := f.uc.Execute(context.Background(), paymentEvent(sess, "tx-1"))
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Empty(t, f.orders.bySession)
}

func TestMaterialize_EventMismatchAlerts(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)

	ev := paymentEvent(sess, "tx-1")
	ev.Metadata.Tier = string(domain.TierPremium)

	_, err := f.uc.Execute(context.Background(), ev)
	assert.ErrorIs(t, err, domain.ErrEventMismatch)
	assert.Equal(t, []string{"event_mismatch"}, f.alerts.kinds())
	assert.Empty(t, f.orders.bySession)
}

func TestMaterialize_TamperedAmountIgnored(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)

	// The amount field in the event is never read; only catalog and
	// session decide the price.
	ev := paymentEvent(sess, "tx-1")
	ev.Metadata.AmountCents = 1

	out, err := f.uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	order, err := f.orders.FindBySessionID(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, out.OrderID, order.ID)
	assert.Equal(t, int64(12000), order.AgreedPrice.Cents)
}

func TestMaterialize_PriceDriftWithholdsOrder(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)

	// catalog price changed after issuance
	svc := catalogService()
	svc.Packages[domain.TierStandard] = domain.Package{PriceCents: 15000}
	f.catalog.add(svc, "seller-1")

	_, err := f.uc.Execute(context.Background(), paymentEvent(sess, "tx-1"))
	assert.ErrorIs(t, err, domain.ErrPriceMismatch)
	assert.Equal(t, []string{"price_mismatch"}, f.alerts.kinds())
	assert.Empty(t, f.orders.bySession)

	got, err := f.sessions.Get(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCreated, got.Status)
}

func TestMaterialize_TierRemovedWithholdsOrder(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)

	svc := catalogService()
	delete(svc.Packages, domain.TierStandard)
	f.catalog.add(svc, "seller-1")

	_, err := f.uc.Execute(context.Background(), paymentEvent(sess, "tx-1"))
	assert.ErrorIs(t, err, domain.ErrPriceMismatch)
	assert.Equal(t, []string{"price_mismatch"}, f.alerts.kinds())
}

func TestMaterialize_SellerUnresolvedAlerts(t *testing.T) {
	f := newMaterializeFixture(t)
	sess := f.issueSession(t)
	f.catalog.add(catalogService(), "")

	_, err := f.uc.Execute(context.Background(), paymentEvent(sess, "tx-1"))
	assert.ErrorIs(t, err, domain.ErrSellerUnresolved)
	assert.Equal(t, []string{"seller_unresolved"}, f.alerts.kinds())
	assert.Empty(t, f.orders.bySession)
}
