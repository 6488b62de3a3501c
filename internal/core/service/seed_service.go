package service

import (
	"context"
	"fmt"

	"github.com/rl1809/checkout-sim/internal/port"
)

// SeedService mirrors the canonical catalog into the stores a backend under
// test reads from. Either store may be nil.
type SeedService struct {
	catalog  port.Catalog
	stock    port.StockSeeder
	products port.ProductSeeder
}

type SeedResult struct {
	Products int
	Coupons  int
	Stock    int
}

func NewSeedService(catalog port.Catalog, stock port.StockSeeder, products port.ProductSeeder) *SeedService {
	return &SeedService{catalog: catalog, stock: stock, products: products}
}

func (s *SeedService) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult
	entries := s.catalog.Products()

	if s.products != nil {
		for _, e := range entries {
			if err := s.products.UpsertProduct(ctx, e); err != nil {
				return res, fmt.Errorf("seed product %s: %w", e.SKU, err)
			}
			res.Products++
		}
		for _, c := range s.catalog.Coupons() {
			if err := s.products.UpsertCoupon(ctx, c); err != nil {
				return res, fmt.Errorf("seed coupon %s: %w", c.Code, err)
			}
			res.Coupons++
		}
	}

	if s.stock != nil {
		if err := s.stock.ResetStock(ctx, entries); err != nil {
			return res, fmt.Errorf("seed stock: %w", err)
		}
		res.Stock = len(entries)
	}
	return res, nil
}

// Reset restores canonical stock in both stores without touching products
// or coupons.
func (s *SeedService) Reset(ctx context.Context) error {
	entries := s.catalog.Products()
	if s.stock != nil {
		if err := s.stock.ResetStock(ctx, entries); err != nil {
			return fmt.Errorf("reset stock: %w", err)
		}
	}
	if s.products != nil {
		for _, e := range entries {
			if err := s.products.ResetInventory(ctx, e); err != nil {
				return fmt.Errorf("reset inventory %s: %w", e.SKU, err)
			}
		}
	}
	return nil
}

// Verify checks that the stock store holds the canonical ceiling for every
// SKU and that every coupon reads back from the product store unchanged.
func (s *SeedService) Verify(ctx context.Context) error {
	if s.stock != nil {
		for _, e := range s.catalog.Products() {
			got, err := s.stock.GetStock(ctx, e.SKU)
			if err != nil {
				return err
			}
			if got != e.Stock {
				return fmt.Errorf("stock %s: have %d, want %d", e.SKU, got, e.Stock)
			}
		}
	}

	if s.products != nil {
		for _, want := range s.catalog.Coupons() {
			got, err := s.products.GetCoupon(ctx, want.Code)
			if err != nil {
				return err
			}
			if got.Kind != want.Kind || !got.Value.Equal(want.Value) ||
				got.Valid != want.Valid || got.Expired != want.Expired || got.Cumulative != want.Cumulative {
				return fmt.Errorf("coupon %s: have %+v, want %+v", want.Code, got, want)
			}
		}
	}
	return nil
}
