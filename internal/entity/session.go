package domain

import "time"

type SessionStatus string

const (
	SessionCreated   SessionStatus = "CREATED"
	SessionConfirmed SessionStatus = "CONFIRMED"
	SessionExpired   SessionStatus = "EXPIRED"
)

// CheckoutSession is issued once with a resolver-derived amount and is
// the only price record trusted downstream. Only the materializer moves
// it to CONFIRMED, exactly once; the reaper moves unconfirmed sessions
// to EXPIRED after the TTL.
type CheckoutSession struct {
	SessionID   string
	ServiceID   string
	Tier        Tier
	BuyerID     string
	Amount      Money
	Status      SessionStatus
	MetadataSig string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
