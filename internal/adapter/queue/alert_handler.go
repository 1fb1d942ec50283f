package queue

import (
	"context"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/logging"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
)

// AlertHandler consumes checkout.alert events and surfaces them to
// operators. For now that means a loud structured log line the
// on-call alerting pipeline keys on; a pager integration slots in here
// without touching the publishers.
type AlertHandler struct{}

func NewAlertHandler() *AlertHandler { return &AlertHandler{} }

func (h *AlertHandler) HandleAlert(ctx context.Context, a usecase.AlertMsg) error {
	logging.FromCtx(ctx).Error("OPERATOR ALERT",
		"kind", a.Kind,
		"session_id", a.SessionID,
		"service_id", a.ServiceID,
		"tx_id", a.TransactionID,
		"detail", a.Detail,
	)
	return nil
}
