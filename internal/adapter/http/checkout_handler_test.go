package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/http/middleware"
	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopSigner struct{}

func (noopSigner) Sign([]byte) string { return "sig" }

func newCheckoutTestEnv(t *testing.T) (*gin.Engine, *stubSessions, *stubOrders, *stubCatalog) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := &stubCatalog{
		seller: "seller-1",
		svc: &domain.Service{
			ID:        "svc-1",
			CompanyID: "co-1",
			Title:     "Logo design",
			Packages: map[domain.Tier]domain.Package{
				domain.TierStandard: {PriceCents: 12000},
			},
		},
	}
	sessions := &stubSessions{m: map[string]*domain.CheckoutSession{}}
	orders := &stubOrders{m: map[string]*domain.Order{}}

	create := usecase.NewCreateSession(catalog, sessions, noopSigner{}, "BRL", "https://pay.example/start")
	h := NewCheckoutHandler(create, sessions, orders)

	r := gin.New()
	// stands in for the jwt middleware setting the verified subject
	r.POST("/v1/checkout/sessions", func(c *gin.Context) { c.Set(middleware.SubjectKey, "buyer-1") }, h.CreateSession)
	r.GET("/v1/checkout/sessions/:id", h.GetSession)
	r.GET("/v1/orders/:id", h.GetOrderByID)
	return r, sessions, orders, catalog
}

func TestCreateSessionEndpoint(t *testing.T) {
	r, sessions, _, _ := newCheckoutTestEnv(t)

	body := []byte(`{"serviceId":"svc-1","tier":"standard"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/checkout/sessions", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var resp createSessionResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(12000), resp.Amount)
	assert.Equal(t, "BRL", resp.Currency)
	assert.NotEmpty(t, resp.PaymentURL)

	sess := sessions.m[resp.SessionID]
	require.NotNil(t, sess)
	assert.Equal(t, "buyer-1", sess.BuyerID)
}

func TestCreateSessionEndpoint_ClientPriceIgnored(t *testing.T) {
	r, _, _, _ := newCheckoutTestEnv(t)

	// extra fields like a client-proposed amount do not bind anywhere
	body := []byte(`{"serviceId":"svc-1","tier":"standard","amount":1,"buyerId":"mallory"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/checkout/sessions", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var resp createSessionResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(12000), resp.Amount)
}

func TestCreateSessionEndpoint_Errors(t *testing.T) {
	r, _, _, catalog := newCheckoutTestEnv(t)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/checkout/sessions", bytes.NewReader([]byte(body))))
		return w
	}

	assert.Equal(t, http.StatusBadRequest, post(`{"tier":"standard"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"serviceId":"svc-1","tier":"premium"}`).Code)

	catalog.svc = nil
	assert.Equal(t, http.StatusNotFound, post(`{"serviceId":"svc-1","tier":"standard"}`).Code)
}

func TestGetSessionAndOrderEndpoints(t *testing.T) {
	r, sessions, orders, _ := newCheckoutTestEnv(t)

	sessions.m["sess_1"] = &domain.CheckoutSession{
		SessionID: "sess_1", ServiceID: "svc-1", Tier: domain.TierStandard,
		BuyerID: "buyer-1", Amount: domain.Money{Cents: 12000, Currency: "BRL"},
		Status: domain.SessionCreated, CreatedAt: time.Now().UTC(),
	}
	orders.m["sess_1"] = &domain.Order{
		ID: "order-1", SessionID: "sess_1", BuyerID: "buyer-1", SellerID: "seller-1",
		ServiceID: "svc-1", Tier: domain.TierStandard,
		AgreedPrice: domain.Money{Cents: 12000, Currency: "BRL"}, Status: domain.OrderPaid,
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/checkout/sessions/sess_1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"CREATED"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orders/order-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sellerId":"seller-1"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orders/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
