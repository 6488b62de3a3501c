package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

const stockKeyPrefix = "stock:"

// resetStockScript overwrites every KEYS[i] with ARGV[i] in one round trip so
// a backend under test never sees a half-reset catalog.
var resetStockScript = redis.NewScript(`
for i, key in ipairs(KEYS) do
	redis.call('SET', key, ARGV[i])
end
return #KEYS
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func StockKey(sku string) string {
	return stockKeyPrefix + sku
}

func (r *RedisAdapter) GetStock(ctx context.Context, sku string) (int, error) {
	stock, err := r.client.Get(ctx, StockKey(sku)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("stock for %s: %w", sku, domain.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func (r *RedisAdapter) ResetStock(ctx context.Context, entries []domain.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, len(entries))
	args := make([]any, len(entries))
	for i, e := range entries {
		if e.Stock < 0 {
			return fmt.Errorf("stock for %s: %d: %w", e.SKU, e.Stock, domain.ErrValidation)
		}
		keys[i] = StockKey(e.SKU)
		args[i] = e.Stock
	}

	n, err := resetStockScript.Run(ctx, r.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("reset stock: %w", err)
	}
	if n != len(entries) {
		return fmt.Errorf("reset stock: wrote %d of %d keys", n, len(entries))
	}
	return nil
}
