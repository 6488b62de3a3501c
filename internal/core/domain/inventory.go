package domain

import "github.com/shopspring/decimal"

// CatalogEntry is an immutable SKU record. Stock is a ceiling for cart
// quantities, never decremented by the engine.
type CatalogEntry struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
}

type ShippingOption struct {
	Kind         string          `json:"kind"`
	Cost         decimal.Decimal `json:"cost"`
	LeadTimeDays int             `json:"leadTimeDays"`
}
