package kafka

import (
	"context"
	"errors"

	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/logging"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
)

// PaymentEventHandler feeds stream-delivered payment events into the
// same materializer the HTTP webhook uses.
type PaymentEventHandler struct {
	Materialize *usecase.MaterializeOrder
}

func NewPaymentEventHandler(m *usecase.MaterializeOrder) *PaymentEventHandler {
	return &PaymentEventHandler{Materialize: m}
}

// Handle returns an error only for failures a redelivery could fix.
// Permanent outcomes (mismatch, integrity fault, expired session) were
// already alerted inside the materializer; retrying them would just
// loop, so the offset is committed.
func (h *PaymentEventHandler) Handle(ctx context.Context, ev usecase.PaymentEventMsg) error {
	if ev.Event != usecase.EventPaymentSuccess {
		return nil
	}

	_, err := h.Materialize.Execute(ctx, ev)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrPriceMismatch),
		errors.Is(err, domain.ErrSellerUnresolved),
		errors.Is(err, domain.ErrEventMismatch),
		errors.Is(err, domain.ErrSessionExpired):
		logging.FromCtx(ctx).Error("payment event not materializable",
			"session_id", ev.Metadata.SessionID, "err", err)
		return nil
	}

	// ErrSessionNotFound included: the session may just not be visible
	// yet (replica lag relative to issuance), so let the stream retry.
	return err
}
