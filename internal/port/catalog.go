package port

import "github.com/rl1809/checkout-sim/internal/core/domain"

// Catalog is the canonical reference data. Lookups of unknown keys return an
// error wrapping domain.ErrNotFound.
type Catalog interface {
	// Product looks up a SKU
	Product(sku string) (domain.CatalogEntry, error)

	// Coupon looks up a coupon by code
	Coupon(code string) (domain.Coupon, error)

	// Shipping looks up a shipping option by kind label
	Shipping(kind string) (domain.ShippingOption, error)

	// Address looks up a canonical address by label (Capital, Interior)
	Address(label string) (domain.Address, error)

	// Products lists every SKU, sorted by identifier
	Products() []domain.CatalogEntry

	// Coupons lists every coupon, sorted by code
	Coupons() []domain.Coupon

	// SummaryGuards returns the rules a reviewed summary must satisfy
	SummaryGuards() []domain.GuardRule
}

// PaymentFixtures maps card numbers to static outcomes.
type PaymentFixtures interface {
	// Outcome returns the outcome fixed for number, or an error wrapping
	// domain.ErrNotFound
	Outcome(number string) (domain.PaymentOutcome, error)

	// Card returns the fixture instrument registered under name
	Card(name string) (domain.PaymentInstrument, error)
}
