package usecase

// EventPaymentSuccess is the only provider event that materializes an
// order; everything else is acknowledged and ignored.
const EventPaymentSuccess = "payment_success"

// PaymentMetadata is the metadata block this service attached at session
// issuance, round-tripped through the provider. Untrusted on the way
// back: the materializer re-derives price and seller from the catalog
// and only uses these fields as lookup keys.
type PaymentMetadata struct {
	ServiceID   string `json:"serviceId"`
	Tier        string `json:"tier"`
	BuyerID     string `json:"buyerId"`
	AmountCents int64  `json:"amount"`
	SessionID   string `json:"sessionId"`
}

// PaymentEventMsg is a verified, parsed payment event. Arrives via the
// HTTP webhook or the provider's Kafka topic; both feed Materialize.
type PaymentEventMsg struct {
	Event         string          `json:"event"`
	TransactionID string          `json:"transactionId"`
	Metadata      PaymentMetadata `json:"metadata"`
}

// OrderPaidMsg goes through the outbox to RabbitMQ for the
// notifications system.
type OrderPaidMsg struct {
	OrderID     string `json:"orderId"`
	SessionID   string `json:"sessionId"`
	BuyerID     string `json:"buyerId"`
	SellerID    string `json:"sellerId"`
	ServiceID   string `json:"serviceId"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

// AlertMsg is published when a confirmation fails in a way redelivery
// cannot fix and an operator has to look at the catalog.
type AlertMsg struct {
	Kind          string `json:"kind"` // price_mismatch | seller_unresolved | event_mismatch
	SessionID     string `json:"sessionId"`
	ServiceID     string `json:"serviceId"`
	TransactionID string `json:"transactionId"`
	Detail        string `json:"detail"`
}
