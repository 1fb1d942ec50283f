package domain

// Tier names a pricing package of a service.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// ValidTier reports whether t is one of the known tier names. The tier is
// only ever a selector; prices always come from the catalog.
func ValidTier(t Tier) bool {
	switch t {
	case TierBasic, TierStandard, TierPremium:
		return true
	}
	return false
}

type Money struct {
	Cents    int64
	Currency string
}

// Package is one priced tier of a service as defined in the catalog.
type Package struct {
	PriceCents  int64  `json:"price"`
	Description string `json:"description,omitempty"`
}

// Service is the read-only catalog view the checkout core consumes.
// BasePriceCents covers legacy entries that never adopted the package
// schema (nil when unset).
type Service struct {
	ID             string
	CompanyID      string
	Title          string
	BasePriceCents *int64
	Packages       map[Tier]Package
}
