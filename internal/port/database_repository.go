package port

import (
	"context"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

type ProductSeeder interface {
	// UpsertProduct creates or replaces a product row and its inventory
	UpsertProduct(ctx context.Context, entry domain.CatalogEntry) error

	// UpsertCoupon creates or replaces a coupon row
	UpsertCoupon(ctx context.Context, coupon domain.Coupon) error

	// GetCoupon reads a coupon row back, returns domain.ErrNotFound if absent
	GetCoupon(ctx context.Context, code string) (domain.Coupon, error)

	// ResetInventory sets stock back to the canonical value with a version check
	ResetInventory(ctx context.Context, entry domain.CatalogEntry) error
}
