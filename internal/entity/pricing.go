package domain

// ResolvePrice returns the canonical price for (service, tier).
//
// Rules, in order:
//  1. service.Packages[tier] wins when present.
//  2. tier == basic with a base price set falls back to the base price
//     (legacy catalog entries without the package schema).
//  3. anything else is ErrInvalidTier. A missing standard/premium entry
//     is always a hard failure, never a downgrade to another price.
//
// Pure and deterministic; both the issuer and the materializer call it,
// each against its own catalog read.
func ResolvePrice(svc *Service, tier Tier, currency string) (Money, error) {
	if !ValidTier(tier) {
		return Money{}, ErrInvalidTier
	}
	if pkg, ok := svc.Packages[tier]; ok {
		return Money{Cents: pkg.PriceCents, Currency: currency}, nil
	}
	if tier == TierBasic && svc.BasePriceCents != nil {
		return Money{Cents: *svc.BasePriceCents, Currency: currency}, nil
	}
	return Money{}, ErrInvalidTier
}

// ResolvePackage returns the package definition that backs the resolved
// price, synthesizing one for the legacy base-price fallback. The result
// is what gets snapshotted onto the order.
func ResolvePackage(svc *Service, tier Tier) (Package, error) {
	if pkg, ok := svc.Packages[tier]; ok {
		return pkg, nil
	}
	if tier == TierBasic && svc.BasePriceCents != nil {
		return Package{PriceCents: *svc.BasePriceCents, Description: "base price"}, nil
	}
	return Package{}, ErrInvalidTier
}
