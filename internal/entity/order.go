package domain

import "time"

type OrderStatus string

const (
	OrderPaid OrderStatus = "PAID"
)

// Order is materialized exactly once per confirmed session and is never
// mutated afterwards. AgreedPrice is re-derived from the catalog at
// confirmation time and must equal the session amount; SellerID is the
// resolved company owner, never a value carried in the event.
type Order struct {
	ID            string
	SessionID     string
	TransactionID string
	BuyerID       string
	SellerID      string
	ServiceID     string
	ServiceTitle  string
	Tier          Tier
	AgreedPrice   Money
	Status        OrderStatus
	// PackageSnapshot freezes the tier definition the buyer paid for,
	// independent of later catalog edits.
	PackageSnapshot Package
	CreatedAt       time.Time
}
