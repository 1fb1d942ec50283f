package usecase

import (
	"context"
	"sync"
	"time"

	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
)

type catalogEntry struct {
	svc    *domain.Service
	seller string
}

type fakeCatalog struct {
	mu      sync.Mutex
	entries map[string]catalogEntry
	err     error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{entries: map[string]catalogEntry{}}
}

func (f *fakeCatalog) add(svc *domain.Service, seller string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[svc.ID] = catalogEntry{svc: svc, seller: seller}
}

func (f *fakeCatalog) GetServiceWithOwner(_ context.Context, serviceID string) (*domain.Service, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, "", f.err
	}
	e, ok := f.entries[serviceID]
	if !ok {
		return nil, "", domain.ErrServiceNotFound
	}
	return e.svc, e.seller, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.CheckoutSession
	putErr   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*domain.CheckoutSession{}}
}

func (f *fakeSessionStore) Put(_ context.Context, s *domain.CheckoutSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	cp := *s
	f.sessions[s.SessionID] = &cp
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, sessionID string) (*domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) ExpireStale(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.sessions {
		if s.Status == domain.SessionCreated && s.CreatedAt.Before(cutoff) {
			s.Status = domain.SessionExpired
			n++
		}
	}
	return n, nil
}

// fakeOrderStore mimics the MySQL adapter: insert confirms the session
// and enforces the unique session_id key.
type fakeOrderStore struct {
	mu        sync.Mutex
	bySession map[string]*domain.Order
	sessions  *fakeSessionStore
	insertErr error
}

func newFakeOrderStore(sessions *fakeSessionStore) *fakeOrderStore {
	return &fakeOrderStore{bySession: map[string]*domain.Order{}, sessions: sessions}
}

func (f *fakeOrderStore) InsertIfAbsent(_ context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, exists := f.bySession[o.SessionID]; exists {
		return domain.ErrDuplicateOrder
	}
	cp := *o
	f.bySession[o.SessionID] = &cp
	if f.sessions != nil {
		f.sessions.mu.Lock()
		if s, ok := f.sessions.sessions[o.SessionID]; ok {
			s.Status = domain.SessionConfirmed
		}
		f.sessions.mu.Unlock()
	}
	return nil
}

func (f *fakeOrderStore) FindBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.bySession[sessionID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) FindByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.bySession {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

type fakeCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{m: map[string]string{}} }

func (f *fakeCache) Remember(_ context.Context, sessionID, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[sessionID] = orderID
	return nil
}

func (f *fakeCache) Recall(_ context.Context, sessionID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.m[sessionID]
	return v, ok, nil
}

type fakeAlerts struct {
	mu   sync.Mutex
	sent []AlertMsg
}

func (f *fakeAlerts) Notify(_ context.Context, a AlertMsg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, a)
	return nil
}

func (f *fakeAlerts) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, a := range f.sent {
		out = append(out, a.Kind)
	}
	return out
}

type fakeSigner struct{}

func (fakeSigner) Sign(payload []byte) string { return "sig-" + string(payload[:4]) }
