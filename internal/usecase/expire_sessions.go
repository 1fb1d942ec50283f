package usecase

import (
	"context"
	"time"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/observ"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/logging"
)

// ExpireSessions is the reaper: CREATED -> EXPIRED for sessions with no
// confirmation inside the TTL. The store-level sweep skips any session
// that already has an order, so a late-confirming session can never be
// expired out from under its order.
type ExpireSessions struct {
	sessions SessionStore
	ttl      time.Duration
}

func NewExpireSessions(sessions SessionStore, ttl time.Duration) *ExpireSessions {
	return &ExpireSessions{sessions: sessions, ttl: ttl}
}

func (uc *ExpireSessions) Execute(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-uc.ttl)
	n, err := uc.sessions.ExpireStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		observ.SessionsExpired.Add(float64(n))
		logging.FromCtx(ctx).Info("sessions expired", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (uc *ExpireSessions) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := uc.Execute(ctx); err != nil {
				logging.FromCtx(ctx).Error("session sweep failed", "err", err)
			}
		}
	}
}
