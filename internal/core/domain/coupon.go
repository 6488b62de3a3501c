package domain

import "github.com/shopspring/decimal"

type CouponKind string

const (
	CouponPercentual CouponKind = "percentual"
	CouponValor      CouponKind = "valor"
)

// Coupon is reference data. Cumulative is carried for completeness but no
// rule consults it: a cart holds at most one distinct code regardless.
type Coupon struct {
	Code       string          `json:"code"`
	Kind       CouponKind      `json:"kind"`
	Value      decimal.Decimal `json:"value"`
	Valid      bool            `json:"valid"`
	Expired    bool            `json:"expired"`
	Cumulative bool            `json:"cumulative"`
}
