package domain

import "github.com/shopspring/decimal"

type LineItem struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type Address struct {
	PostalCode string `json:"postalCode" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	Label      string `json:"label"`
}

// CartState is the mutable aggregate. Nil pointers mean "none selected".
type CartState struct {
	Items      []LineItem      `json:"items"`
	CouponCode *string         `json:"couponCode,omitempty"`
	Shipping   *ShippingOption `json:"shipping,omitempty"`
	Address    *string         `json:"address,omitempty"`
}

// Clone returns a deep copy safe to hand to callers.
func (c CartState) Clone() CartState {
	out := CartState{Items: make([]LineItem, len(c.Items))}
	copy(out.Items, c.Items)
	if c.CouponCode != nil {
		code := *c.CouponCode
		out.CouponCode = &code
	}
	if c.Shipping != nil {
		opt := *c.Shipping
		out.Shipping = &opt
	}
	if c.Address != nil {
		addr := *c.Address
		out.Address = &addr
	}
	return out
}

// Find returns the index of the line item for sku, or -1.
func (c CartState) Find(sku string) int {
	for i, item := range c.Items {
		if item.SKU == sku {
			return i
		}
	}
	return -1
}

type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}
