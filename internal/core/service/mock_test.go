package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

// Mock Catalog and PaymentFixtures with the canonical data
type mockCatalog struct {
	products  map[string]domain.CatalogEntry
	coupons   map[string]domain.Coupon
	shipping  map[string]domain.ShippingOption
	addresses map[string]domain.Address
	cards     map[string]domain.PaymentInstrument
	guards    []domain.GuardRule
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newMockCatalog() *mockCatalog {
	card := func(name, number string, outcome domain.PaymentOutcome) domain.PaymentInstrument {
		return domain.PaymentInstrument{
			Name: name, Number: number, Holder: "Joao Silva", CVV: "123", Expiry: "12/25", Outcome: outcome,
		}
	}
	return &mockCatalog{
		products: map[string]domain.CatalogEntry{
			"CAMISETA-PRETA-M": {SKU: "CAMISETA-PRETA-M", Name: "Camiseta", Price: dec("49.90"), Stock: 100},
			"TENIS-URBANO-42":  {SKU: "TENIS-URBANO-42", Name: "Tenis", Price: dec("199.90"), Stock: 50},
			"MOCHILA-TRAVEL":   {SKU: "MOCHILA-TRAVEL", Name: "Mochila", Price: dec("89.90"), Stock: 25},
		},
		coupons: map[string]domain.Coupon{
			"BEMVINDO10": {Code: "BEMVINDO10", Kind: domain.CouponPercentual, Value: dec("10"), Valid: true},
			"PROMOFAKE":  {Code: "PROMOFAKE", Kind: domain.CouponPercentual, Value: dec("0"), Valid: false},
			"BLACK2022":  {Code: "BLACK2022", Kind: domain.CouponPercentual, Value: dec("50"), Valid: false, Expired: true},
			"FRETE20":    {Code: "FRETE20", Kind: domain.CouponValor, Value: dec("20"), Valid: true},
		},
		shipping: map[string]domain.ShippingOption{
			"Economico": {Kind: "Economico", Cost: dec("5.90"), LeadTimeDays: 7},
			"Rapido":    {Kind: "Rapido", Cost: dec("12.90"), LeadTimeDays: 3},
			"Quebrado":  {Kind: "Quebrado", Cost: dec("-1"), LeadTimeDays: 3},
		},
		addresses: map[string]domain.Address{
			"Capital":  {PostalCode: "01310-100", City: "Sao Paulo", State: "SP", Label: "Capital"},
			"Interior": {PostalCode: "14400-000", City: "Franca", State: "SP", Label: "Interior"},
		},
		cards: map[string]domain.PaymentInstrument{
			"Aprovado":           card("Aprovado", "4111111111111111", domain.OutcomeApproved),
			"RecusadoPorLimite":  card("RecusadoPorLimite", "4000000000000002", domain.OutcomeLimit),
			"RecusadoAntifraude": card("RecusadoAntifraude", "4000000000000259", domain.OutcomeAntifraud),
		},
		guards: []domain.GuardRule{
			{
				ID:      "total-non-negative",
				Message: "order total must not be negative",
				Logic:   map[string]any{">=": []any{map[string]any{"var": "total"}, 0}},
			},
			{
				ID:      "discount-within-bounds",
				Message: "discount must be between zero and the subtotal",
				Logic: map[string]any{"<=": []any{
					map[string]any{"var": "discount"}, map[string]any{"var": "subtotal"},
				}},
			},
		},
	}
}

func (m *mockCatalog) Product(sku string) (domain.CatalogEntry, error) {
	p, ok := m.products[sku]
	if !ok {
		return domain.CatalogEntry{}, fmt.Errorf("sku %q: %w", sku, domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockCatalog) Coupon(code string) (domain.Coupon, error) {
	c, ok := m.coupons[code]
	if !ok {
		return domain.Coupon{}, fmt.Errorf("coupon %q: %w", code, domain.ErrNotFound)
	}
	return c, nil
}

func (m *mockCatalog) Shipping(kind string) (domain.ShippingOption, error) {
	o, ok := m.shipping[kind]
	if !ok {
		return domain.ShippingOption{}, fmt.Errorf("shipping %q: %w", kind, domain.ErrNotFound)
	}
	return o, nil
}

func (m *mockCatalog) Address(label string) (domain.Address, error) {
	a, ok := m.addresses[label]
	if !ok {
		return domain.Address{}, fmt.Errorf("address %q: %w", label, domain.ErrNotFound)
	}
	return a, nil
}

func (m *mockCatalog) Products() []domain.CatalogEntry {
	return []domain.CatalogEntry{m.products["CAMISETA-PRETA-M"], m.products["MOCHILA-TRAVEL"], m.products["TENIS-URBANO-42"]}
}

func (m *mockCatalog) Coupons() []domain.Coupon {
	var out []domain.Coupon
	for _, code := range []string{"BEMVINDO10", "BLACK2022", "FRETE20", "PROMOFAKE"} {
		out = append(out, m.coupons[code])
	}
	return out
}

func (m *mockCatalog) SummaryGuards() []domain.GuardRule {
	return m.guards
}

func (m *mockCatalog) Outcome(number string) (domain.PaymentOutcome, error) {
	for _, c := range m.cards {
		if c.Number == number {
			return c.Outcome, nil
		}
	}
	return "", fmt.Errorf("card number: %w", domain.ErrNotFound)
}

func (m *mockCatalog) Card(name string) (domain.PaymentInstrument, error) {
	c, ok := m.cards[name]
	if !ok {
		return domain.PaymentInstrument{}, fmt.Errorf("card %q: %w", name, domain.ErrNotFound)
	}
	return c, nil
}
