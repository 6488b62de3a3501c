// Package catalog loads the canonical reference data (SKUs, coupons, shipping
// options, addresses, payment fixtures and summary guards) from YAML and
// serves it through explicit lookup maps.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

//go:embed canonical.yaml
var canonicalYAML []byte

// Catalog is immutable once loaded and safe for concurrent reads.
type Catalog struct {
	products  map[string]domain.CatalogEntry
	coupons   map[string]domain.Coupon
	shipping  map[string]domain.ShippingOption
	addresses map[string]domain.Address
	cards     map[string]domain.PaymentInstrument // by name
	outcomes  map[string]domain.PaymentOutcome    // by card number
	guards    []domain.GuardRule
}

func (c *Catalog) Product(sku string) (domain.CatalogEntry, error) {
	p, ok := c.products[sku]
	if !ok {
		return domain.CatalogEntry{}, fmt.Errorf("sku %q: %w", sku, domain.ErrNotFound)
	}
	return p, nil
}

func (c *Catalog) Coupon(code string) (domain.Coupon, error) {
	cp, ok := c.coupons[code]
	if !ok {
		return domain.Coupon{}, fmt.Errorf("coupon %q: %w", code, domain.ErrNotFound)
	}
	return cp, nil
}

func (c *Catalog) Shipping(kind string) (domain.ShippingOption, error) {
	opt, ok := c.shipping[kind]
	if !ok {
		return domain.ShippingOption{}, fmt.Errorf("shipping kind %q: %w", kind, domain.ErrNotFound)
	}
	return opt, nil
}

func (c *Catalog) Address(label string) (domain.Address, error) {
	addr, ok := c.addresses[label]
	if !ok {
		return domain.Address{}, fmt.Errorf("address %q: %w", label, domain.ErrNotFound)
	}
	return addr, nil
}

func (c *Catalog) Card(name string) (domain.PaymentInstrument, error) {
	card, ok := c.cards[name]
	if !ok {
		return domain.PaymentInstrument{}, fmt.Errorf("card %q: %w", name, domain.ErrNotFound)
	}
	return card, nil
}

func (c *Catalog) Outcome(number string) (domain.PaymentOutcome, error) {
	out, ok := c.outcomes[number]
	if !ok {
		return "", fmt.Errorf("card number: %w", domain.ErrNotFound)
	}
	return out, nil
}

func (c *Catalog) Products() []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

func (c *Catalog) Coupons() []domain.Coupon {
	out := make([]domain.Coupon, 0, len(c.coupons))
	for _, cp := range c.coupons {
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (c *Catalog) SummaryGuards() []domain.GuardRule {
	out := make([]domain.GuardRule, len(c.guards))
	copy(out, c.guards)
	return out
}
