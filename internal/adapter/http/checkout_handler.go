package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/http/middleware"
	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	create   *usecase.CreateSession
	sessions usecase.SessionStore
	orders   usecase.OrderStore
}

func NewCheckoutHandler(create *usecase.CreateSession, sessions usecase.SessionStore, orders usecase.OrderStore) *CheckoutHandler {
	return &CheckoutHandler{create: create, sessions: sessions, orders: orders}
}

type createSessionReq struct {
	ServiceID string `json:"serviceId" binding:"required"`
	Tier      string `json:"tier" binding:"required"`
	// Accepted for wire compatibility with older clients; the buyer
	// identity always comes from the verified token, never from here.
	BuyerID string `json:"buyerId"`
}

type createSessionResp struct {
	SessionID  string `json:"sessionId"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	PaymentURL string `json:"paymentUrl"`
}

// CreateSession handles POST /v1/checkout/sessions.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	buyerID := middleware.Subject(c)
	if buyerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no_subject"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	out, err := h.create.Execute(ctx, usecase.CreateSessionInput{
		ServiceID: req.ServiceID,
		Tier:      domain.Tier(req.Tier),
		BuyerID:   buyerID,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrServiceNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrInvalidTier):
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, createSessionResp{
		SessionID:  out.SessionID,
		Amount:     out.AmountCents,
		Currency:   out.Currency,
		PaymentURL: out.PaymentURL,
	})
}

// GetSession handles GET /v1/checkout/sessions/:id (audit/read path).
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sess, err := h.sessions.Get(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionId": sess.SessionID,
		"serviceId": sess.ServiceID,
		"tier":      sess.Tier,
		"buyerId":   sess.BuyerID,
		"amount":    sess.Amount.Cents,
		"currency":  sess.Amount.Currency,
		"status":    sess.Status,
		"createdAt": sess.CreatedAt,
	})
}

// GetOrderByID handles GET /v1/orders/:id.
func (h *CheckoutHandler) GetOrderByID(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	o, err := h.orders.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            o.ID,
		"sessionId":     o.SessionID,
		"transactionId": o.TransactionID,
		"buyerId":       o.BuyerID,
		"sellerId":      o.SellerID,
		"serviceId":     o.ServiceID,
		"serviceTitle":  o.ServiceTitle,
		"tier":          o.Tier,
		"agreedPrice":   o.AgreedPrice.Cents,
		"currency":      o.AgreedPrice.Currency,
		"status":        o.Status,
		"snapshot":      o.PackageSnapshot,
		"createdAt":     o.CreatedAt,
	})
}
