package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

var ErrOptimisticLock = errors.New("optimistic lock conflict")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		sku VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		category VARCHAR(64) NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		sku VARCHAR(64) PRIMARY KEY,
		stock INT NOT NULL,
		version INT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		code VARCHAR(64) PRIMARY KEY,
		kind VARCHAR(16) NOT NULL,
		value DECIMAL(12,2) NOT NULL,
		valid BOOLEAN NOT NULL,
		expired BOOLEAN NOT NULL,
		cumulative BOOLEAN NOT NULL
	)`,
}

// Inventory is the stock row as stored, with its optimistic-lock version.
type Inventory struct {
	SKU     string
	Stock   int
	Version int
}

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) UpsertProduct(ctx context.Context, entry domain.CatalogEntry) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (sku, name, price, category)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), price = VALUES(price), category = VALUES(category)`,
		entry.SKU, entry.Name, entry.Price.StringFixed(2), entry.Category,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventory (sku, stock, version)
		VALUES (?, ?, 0)
		ON DUPLICATE KEY UPDATE stock = VALUES(stock), version = version + 1`,
		entry.SKU, entry.Stock,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}

	return tx.Commit()
}

func (m *MySQLAdapter) UpsertCoupon(ctx context.Context, c domain.Coupon) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO coupons (code, kind, value, valid, expired, cumulative)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE kind = VALUES(kind), value = VALUES(value),
			valid = VALUES(valid), expired = VALUES(expired), cumulative = VALUES(cumulative)`,
		c.Code, string(c.Kind), c.Value.StringFixed(2), c.Valid, c.Expired, c.Cumulative,
	)
	if err != nil {
		return fmt.Errorf("upsert coupon: %w", err)
	}
	return nil
}

// GetInventory returns domain.ErrNotFound when the SKU has no inventory row.
func (m *MySQLAdapter) GetInventory(ctx context.Context, sku string) (Inventory, error) {
	var inv Inventory
	err := m.db.QueryRowContext(ctx, `
		SELECT sku, stock, version FROM inventory WHERE sku = ?`, sku,
	).Scan(&inv.SKU, &inv.Stock, &inv.Version)

	if errors.Is(err, sql.ErrNoRows) {
		return Inventory{}, fmt.Errorf("inventory %s: %w", sku, domain.ErrNotFound)
	}
	if err != nil {
		return Inventory{}, fmt.Errorf("query inventory: %w", err)
	}
	return inv, nil
}

func (m *MySQLAdapter) GetCoupon(ctx context.Context, code string) (domain.Coupon, error) {
	var (
		c     domain.Coupon
		kind  string
		value string
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT code, kind, value, valid, expired, cumulative FROM coupons WHERE code = ?`, code,
	).Scan(&c.Code, &kind, &value, &c.Valid, &c.Expired, &c.Cumulative)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coupon{}, fmt.Errorf("coupon %s: %w", code, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("query coupon: %w", err)
	}
	c.Kind = domain.CouponKind(kind)
	if c.Value, err = decimal.NewFromString(value); err != nil {
		return domain.Coupon{}, fmt.Errorf("coupon %s value %q: %w", code, value, err)
	}
	return c, nil
}

// ResetInventory puts stock back to the canonical value, guarded by the
// version read just before the update.
func (m *MySQLAdapter) ResetInventory(ctx context.Context, entry domain.CatalogEntry) error {
	inv, err := m.GetInventory(ctx, entry.SKU)
	if err != nil {
		return err
	}
	return m.updateInventory(ctx, entry.SKU, entry.Stock, inv.Version)
}

func (m *MySQLAdapter) updateInventory(ctx context.Context, sku string, stock, version int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory
		SET stock = ?, version = version + 1
		WHERE sku = ? AND version = ?`,
		stock, sku, version,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOptimisticLock
	}
	return nil
}
