package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

var validate = validator.New()

type document struct {
	Products  []productDoc  `yaml:"products" validate:"required,min=1,dive"`
	Coupons   []couponDoc   `yaml:"coupons" validate:"dive"`
	Shipping  []shippingDoc `yaml:"shipping" validate:"dive"`
	Addresses []addressDoc  `yaml:"addresses" validate:"dive"`
	Cards     []cardDoc     `yaml:"cards" validate:"dive"`
	Guards    []guardDoc    `yaml:"guards" validate:"dive"`
}

type productDoc struct {
	SKU      string `yaml:"sku" validate:"required"`
	Name     string `yaml:"name" validate:"required"`
	Price    string `yaml:"price" validate:"required"`
	Stock    int    `yaml:"stock" validate:"gte=0"`
	Category string `yaml:"category"`
}

type couponDoc struct {
	Code       string `yaml:"code" validate:"required"`
	Kind       string `yaml:"kind" validate:"oneof=percentual valor"`
	Value      string `yaml:"value" validate:"required"`
	Valid      bool   `yaml:"valid"`
	Expired    bool   `yaml:"expired"`
	Cumulative bool   `yaml:"cumulative"`
}

type shippingDoc struct {
	Kind         string `yaml:"kind" validate:"required"`
	Cost         string `yaml:"cost" validate:"required"`
	LeadTimeDays int    `yaml:"lead_time_days"`
}

type addressDoc struct {
	Label      string `yaml:"label" validate:"required"`
	PostalCode string `yaml:"postal_code" validate:"required"`
	City       string `yaml:"city" validate:"required"`
	State      string `yaml:"state" validate:"required"`
}

type cardDoc struct {
	Name    string `yaml:"name" validate:"required"`
	Number  string `yaml:"number" validate:"required,numeric"`
	Holder  string `yaml:"holder"`
	CVV     string `yaml:"cvv"`
	Expiry  string `yaml:"expiry"`
	Outcome string `yaml:"outcome" validate:"oneof=approved limit antifraud"`
}

type guardDoc struct {
	ID      string         `yaml:"id" validate:"required"`
	Message string         `yaml:"message"`
	Logic   map[string]any `yaml:"logic" validate:"required"`
}

// Default returns the embedded canonical catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(canonicalYAML))
}

// MustDefault is Default for tests and command wiring; it panics on error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Open loads path, or the embedded catalog when path is empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return build(doc)
}

func build(doc document) (*Catalog, error) {
	c := &Catalog{
		products:  make(map[string]domain.CatalogEntry, len(doc.Products)),
		coupons:   make(map[string]domain.Coupon, len(doc.Coupons)),
		shipping:  make(map[string]domain.ShippingOption, len(doc.Shipping)),
		addresses: make(map[string]domain.Address, len(doc.Addresses)),
		cards:     make(map[string]domain.PaymentInstrument, len(doc.Cards)),
		outcomes:  make(map[string]domain.PaymentOutcome, len(doc.Cards)),
	}

	for _, p := range doc.Products {
		if _, dup := c.products[p.SKU]; dup {
			return nil, fmt.Errorf("%w: duplicate sku %q", ErrInvalidCatalog, p.SKU)
		}
		price, err := money(p.Price, "price of "+p.SKU)
		if err != nil {
			return nil, err
		}
		c.products[p.SKU] = domain.CatalogEntry{
			SKU:      p.SKU,
			Name:     p.Name,
			Price:    price,
			Stock:    p.Stock,
			Category: p.Category,
		}
	}

	for _, cp := range doc.Coupons {
		if _, dup := c.coupons[cp.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate coupon %q", ErrInvalidCatalog, cp.Code)
		}
		value, err := money(cp.Value, "value of "+cp.Code)
		if err != nil {
			return nil, err
		}
		c.coupons[cp.Code] = domain.Coupon{
			Code:       cp.Code,
			Kind:       domain.CouponKind(cp.Kind),
			Value:      value,
			Valid:      cp.Valid,
			Expired:    cp.Expired,
			Cumulative: cp.Cumulative,
		}
	}

	for _, s := range doc.Shipping {
		if _, dup := c.shipping[s.Kind]; dup {
			return nil, fmt.Errorf("%w: duplicate shipping kind %q", ErrInvalidCatalog, s.Kind)
		}
		cost, err := decimal.NewFromString(s.Cost)
		if err != nil {
			return nil, fmt.Errorf("%w: cost of %s: %v", ErrInvalidCatalog, s.Kind, err)
		}
		// Cost and lead time are checked when the option is selected.
		c.shipping[s.Kind] = domain.ShippingOption{Kind: s.Kind, Cost: cost, LeadTimeDays: s.LeadTimeDays}
	}

	for _, a := range doc.Addresses {
		c.addresses[a.Label] = domain.Address{
			PostalCode: a.PostalCode,
			City:       a.City,
			State:      a.State,
			Label:      a.Label,
		}
	}

	for _, card := range doc.Cards {
		if _, dup := c.outcomes[card.Number]; dup {
			return nil, fmt.Errorf("%w: duplicate card number for %q", ErrInvalidCatalog, card.Name)
		}
		inst := domain.PaymentInstrument{
			Name:    card.Name,
			Number:  card.Number,
			Holder:  card.Holder,
			CVV:     card.CVV,
			Expiry:  card.Expiry,
			Outcome: domain.PaymentOutcome(card.Outcome),
		}
		c.cards[card.Name] = inst
		c.outcomes[card.Number] = inst.Outcome
	}

	for _, g := range doc.Guards {
		c.guards = append(c.guards, domain.GuardRule{ID: g.ID, Logic: g.Logic, Message: g.Message})
	}

	return c, nil
}

func money(raw, what string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, what, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidCatalog, what)
	}
	return d, nil
}
