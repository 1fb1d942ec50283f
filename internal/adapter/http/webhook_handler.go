package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/logging"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	materialize *usecase.MaterializeOrder
}

func NewWebhookHandler(materialize *usecase.MaterializeOrder) *WebhookHandler {
	return &WebhookHandler{materialize: materialize}
}

// webhookBody is the provider callback envelope. Decoded strictly:
// unknown fields fail closed before any field is used.
type webhookBody struct {
	Event string `json:"event"`
	Data  struct {
		TransactionID string                  `json:"transactionId"`
		Metadata      usecase.PaymentMetadata `json:"metadata"`
	} `json:"data"`
}

// HandlePayment handles POST /webhooks/payment. Signature verification
// already happened in middleware; anything here sees an authentic body.
//
// Status mapping follows the provider's retry semantics: 5xx means
// "redeliver", 4xx means "a retry will not fix this".
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var body webhookBody
	if err := dec.Decode(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	// Unrecognized events are acknowledged so the provider does not
	// retry things we do not care about.
	if body.Event != usecase.EventPaymentSuccess {
		logging.From(c).Info("webhook event ignored", "event", body.Event)
		c.JSON(http.StatusOK, gin.H{"ignored": true})
		return
	}

	if body.Data.TransactionID == "" || body.Data.Metadata.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing transactionId or sessionId"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.materialize.Execute(ctx, usecase.PaymentEventMsg{
		Event:         body.Event,
		TransactionID: body.Data.TransactionID,
		Metadata:      body.Data.Metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrServiceNotFound):
			// Session exists but the service vanished: catalog problem.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrPriceMismatch):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSellerUnresolved):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrEventMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Transient (storage down, replica lag): 503 so the
			// provider redelivers.
			logging.From(c).Error("materialize failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"orderId": out.OrderID})
}
