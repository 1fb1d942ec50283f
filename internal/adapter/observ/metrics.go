package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters for the checkout pipeline. HTTP-level metrics live in
// the metrics middleware; these track business outcomes regardless of
// which ingestion path (webhook or Kafka) produced them.
var (
	SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_issued_total",
		Help: "Checkout sessions created with a catalog-derived price",
	})

	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_expired_total",
		Help: "Sessions reaped without confirmation",
	})

	OrdersMaterialized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_materialized_total",
		Help: "Orders created from verified payment events",
	})

	ReplaysServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_webhook_replays_total",
		Help: "Duplicate deliveries resolved to an existing order",
	})

	PriceMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_price_mismatch_total",
		Help: "Confirmations withheld because the catalog price drifted",
	})

	IntegrityFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_integrity_faults_total",
		Help: "Confirmations withheld because no seller resolved",
	})

	WebhookRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_webhook_rejected_total",
		Help: "Webhook requests rejected before business logic",
	}, []string{"reason"})
)
