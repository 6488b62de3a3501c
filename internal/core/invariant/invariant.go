// Package invariant holds the pure business predicates and calculations the
// cart commands validate against. Nothing here mutates state or publishes.
package invariant

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

var (
	hundred = decimal.NewFromInt(100)

	// Tolerance is the largest difference still treated as equal for derived
	// monetary values.
	Tolerance = decimal.RequireFromString("0.01")
)

func StockSufficient(stock, requested int) bool {
	return stock >= requested
}

func Subtotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// Discount returns subtotal * percent / 100.
func Discount(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred)
}

func TotalNonNegative(total decimal.Decimal) bool {
	return !total.IsNegative()
}

func DiscountWithinBounds(discount, subtotal decimal.Decimal) bool {
	return !discount.IsNegative() && discount.LessThanOrEqual(subtotal)
}

func ShippingValid(opt domain.ShippingOption) bool {
	return !opt.Cost.IsNegative() && opt.LeadTimeDays > 0
}

// CouponExclusive reports whether requested may become the active code.
// Reapplying the active code is tolerated.
func CouponExclusive(current *string, requested string) bool {
	return current == nil || *current == requested
}

// Equal compares two monetary values within Tolerance.
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}

// TotalConsistent checks total == subtotal + shipping - discount.
func TotalConsistent(s domain.Summary) bool {
	return Equal(s.Total, s.Subtotal.Add(s.Shipping).Sub(s.Discount))
}
