package port

import (
	"context"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

// StockSeeder mirrors canonical stock ceilings into a cache used by the
// backend under test.
type StockSeeder interface {
	// GetStock reads the stock of one SKU, returns domain.ErrNotFound if unset
	GetStock(ctx context.Context, sku string) (int, error)

	// ResetStock restores every entry to its canonical stock
	ResetStock(ctx context.Context, entries []domain.CatalogEntry) error
}
