package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventKind string

// Event kinds are a closed set and double as the assertion wire contract.
const (
	EventItemAdded              EventKind = "ItemAdded"
	EventItemRemoved            EventKind = "ItemRemoved"
	EventQuantityChanged        EventKind = "QuantityChanged"
	EventQuantityChangeRejected EventKind = "QuantityChangeRejected"
	EventCouponApplied          EventKind = "CouponApplied"
	EventCouponRejected         EventKind = "CouponRejected"
	EventCouponRemoved          EventKind = "CouponRemoved"
	EventShippingSelected       EventKind = "ShippingSelected"
	EventShippingUnavailable    EventKind = "ShippingUnavailable"
	EventSummaryReviewed        EventKind = "SummaryReviewed"
	EventPaymentApproved        EventKind = "PaymentApproved"
	EventPaymentDeclined        EventKind = "PaymentDeclined"
	EventAddressRejected        EventKind = "AddressRejected"
	EventAddressUpdated         EventKind = "AddressUpdated"
	EventOrderCreated           EventKind = "OrderCreated"
)

// EventKinds lists every kind in declaration order.
func EventKinds() []EventKind {
	return []EventKind{
		EventItemAdded,
		EventItemRemoved,
		EventQuantityChanged,
		EventQuantityChangeRejected,
		EventCouponApplied,
		EventCouponRejected,
		EventCouponRemoved,
		EventShippingSelected,
		EventShippingUnavailable,
		EventSummaryReviewed,
		EventPaymentApproved,
		EventPaymentDeclined,
		EventAddressRejected,
		EventAddressUpdated,
		EventOrderCreated,
	}
}

// Rejection reasons carried in payloads.
const (
	ReasonInvalid           = "invalid"
	ReasonExpired           = "expired"
	ReasonNotCumulative     = "not_cumulative"
	ReasonInsufficientStock = "insufficient_stock"
	ReasonIncompleteData    = "incomplete_data"
)

type DomainEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

type ItemAdded struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type ItemRemoved struct {
	SKU string `json:"sku"`
}

type QuantityChanged struct {
	SKU  string `json:"sku"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

type QuantityChangeRejected struct {
	SKU    string `json:"sku"`
	Reason string `json:"reason"`
}

type CouponApplied struct {
	Code  string          `json:"code"`
	Kind  CouponKind      `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

type CouponRejected struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type CouponRemoved struct {
	Code string `json:"code"`
}

type ShippingSelected struct {
	Kind     string          `json:"kind"`
	LeadTime int             `json:"leadTime"`
	Cost     decimal.Decimal `json:"cost"`
}

type ShippingUnavailable struct {
	Kind string `json:"kind"`
}

type SummaryReviewed struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type PaymentApproved struct {
	Method       string `json:"method"`
	Installments int    `json:"installments"`
}

type PaymentDeclined struct {
	Reason string `json:"reason"`
}

type AddressRejected struct {
	Reason string `json:"reason"`
}

type AddressUpdated struct {
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	State      string `json:"state"`
}

type OrderCreated struct {
	ID    string          `json:"id"`
	Total decimal.Decimal `json:"total"`
}
