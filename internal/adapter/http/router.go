package http

import (
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/http/middleware"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(ch *CheckoutHandler, wh *WebhookHandler, th *TokenHandler, authz *middleware.Authz, wv *middleware.WebhookVerify) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	// Provider callback: HMAC-verified, no bearer token.
	r.POST("/webhooks/payment", wv.Verify(), wh.HandlePayment)

	v1 := r.Group("/v1")
	{
		v1.POST("/checkout/sessions", authz.Require("checkout.write"), ch.CreateSession)
		v1.GET("/checkout/sessions/:id", authz.Require("checkout.read"), ch.GetSession)
		v1.GET("/orders/:id", authz.Require("checkout.read"), ch.GetOrderByID)
	}

	return r
}
