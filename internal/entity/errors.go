package domain

import "errors"

// Failure taxonomy for the checkout pipeline. Handlers map these to HTTP
// statuses; the split matters because it decides whether the payment
// provider should redeliver (transient) or an operator should look
// (mismatch/integrity).
var (
	// ErrInvalidTier: the requested tier has no package entry and no
	// legacy base-price fallback applies. Never downgraded silently.
	ErrInvalidTier = errors.New("invalid_tier")

	// ErrServiceNotFound: unknown service id.
	ErrServiceNotFound = errors.New("service_not_found")

	// ErrSessionNotFound: webhook referenced a session we never issued.
	ErrSessionNotFound = errors.New("session_not_found")

	// ErrSessionExpired: the session was reaped before confirmation.
	ErrSessionExpired = errors.New("session_expired")

	// ErrOrderNotFound: no order recorded for the given key.
	ErrOrderNotFound = errors.New("order_not_found")

	// ErrPriceMismatch: catalog price drifted between session issuance
	// and confirmation. Order is withheld; needs a human.
	ErrPriceMismatch = errors.New("price_mismatch")

	// ErrSellerUnresolved: the owning company has no owner on record.
	// Catalog inconsistency, not a user error; retries will not fix it.
	ErrSellerUnresolved = errors.New("seller_unresolved")

	// ErrDuplicateOrder: unique-key collision on insert. Callers resolve
	// it through the idempotent read path, never surface it.
	ErrDuplicateOrder = errors.New("duplicate_order")

	// ErrInvalidSignature: webhook body failed HMAC verification.
	ErrInvalidSignature = errors.New("invalid_signature")

	// ErrEventMismatch: event metadata disagrees with the session record
	// it points at (different service, tier or buyer). Tampering or a
	// provider bug; alerted, never processed.
	ErrEventMismatch = errors.New("event_mismatch")
)
