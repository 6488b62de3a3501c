package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diegoholiveira/jsonlogic/v3"
	"github.com/google/uuid"

	"github.com/rl1809/checkout-sim/internal/core/domain"
	"github.com/rl1809/checkout-sim/internal/core/eventlog"
	"github.com/rl1809/checkout-sim/internal/core/invariant"
	"github.com/rl1809/checkout-sim/internal/port"
)

var (
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrSummaryNotReviewed  = errors.New("summary not reviewed")
	ErrOrderAlreadyCreated = errors.New("order already created")
	ErrUnknownScenario     = errors.New("unknown scenario")
	ErrScenarioAssertion   = errors.New("scenario assertion failed")
)

// Scenario names accepted by Run.
const (
	ScenarioCheckout        = "checkout"
	ScenarioCouponLifecycle = "coupon-lifecycle"
	ScenarioPaymentRetry    = "payment-retry"
)

const PaymentMethodCard = "credit_card"

// Canonical fixtures the named scenarios run against.
const (
	DefaultSKU      = "CAMISETA-PRETA-M"
	DefaultShipping = "Economico"
	DefaultCard     = "Aprovado"
	DefaultAddress  = "Capital"
	DefaultCoupon   = "BEMVINDO10"
	InvalidCoupon   = "PROMOFAKE"
	ExpiredCoupon   = "BLACK2022"
	RetrySKU        = "TENIS-URBANO-42"
	RetryShipping   = "Rapido"
	LimitCard       = "RecusadoPorLimite"
	AntifraudCard   = "RecusadoAntifraude"
)

const defaultCheckoutQty = 2

// Scenarios lists the names Run accepts.
func Scenarios() []string {
	return []string{ScenarioCheckout, ScenarioCouponLifecycle, ScenarioPaymentRetry}
}

type CheckoutRequest struct {
	SKU          string
	Quantity     int
	Coupon       string
	Shipping     string
	Card         string
	Installments int
}

func (r CheckoutRequest) withDefaults() CheckoutRequest {
	if r.SKU == "" {
		r.SKU = DefaultSKU
	}
	if r.Quantity == 0 {
		r.Quantity = 1
	}
	if r.Shipping == "" {
		r.Shipping = DefaultShipping
	}
	if r.Card == "" {
		r.Card = DefaultCard
	}
	return r
}

type Report struct {
	Scenario string             `json:"scenario"`
	Passed   bool               `json:"passed"`
	Error    string             `json:"error,omitempty"`
	OrderID  string             `json:"orderId,omitempty"`
	Events   []domain.EventKind `json:"events"`
	Duration time.Duration      `json:"duration"`
}

// CheckoutService composes cart commands into end-to-end scenarios over one
// cart and its event log.
type CheckoutService struct {
	cart     *CartService
	catalog  port.Catalog
	payments port.PaymentFixtures
	log      *eventlog.Log

	orderCreated bool
	now          func() time.Time
}

func NewCheckoutService(cart *CartService, catalog port.Catalog, payments port.PaymentFixtures) *CheckoutService {
	return &CheckoutService{
		cart:     cart,
		catalog:  catalog,
		payments: payments,
		log:      cart.Log(),
		now:      time.Now,
	}
}

// NewScenario wires a fresh log, cart and orchestrator. Each concurrent
// scenario needs its own.
func NewScenario(catalog port.Catalog, payments port.PaymentFixtures, opts ...eventlog.Option) *CheckoutService {
	log := eventlog.New(opts...)
	return NewCheckoutService(NewCartService(catalog, payments, log), catalog, payments)
}

func (s *CheckoutService) Cart() *CartService {
	return s.cart
}

func (s *CheckoutService) Log() *eventlog.Log {
	return s.log
}

// PrepareCustomer starts a scenario: empty cart, empty history, canonical
// address set.
func (s *CheckoutService) PrepareCustomer(addressLabel string) error {
	s.cart.Reset()
	s.log.Clear()
	s.orderCreated = false

	addr, err := s.catalog.Address(addressLabel)
	if err != nil {
		return err
	}
	return s.cart.UpdateAddress(addr)
}

func (s *CheckoutService) Checkout(req CheckoutRequest) (domain.Order, error) {
	req = req.withDefaults()

	if err := s.cart.AddItem(req.SKU, req.Quantity); err != nil {
		return domain.Order{}, err
	}
	if req.Coupon != "" {
		if err := s.cart.ApplyCoupon(req.Coupon); err != nil {
			return domain.Order{}, err
		}
	}
	if err := s.cart.SelectShipping(req.Shipping); err != nil {
		return domain.Order{}, err
	}
	if _, err := s.cart.ReviewSummary(); err != nil {
		return domain.Order{}, err
	}
	if err := s.checkGuards(); err != nil {
		return domain.Order{}, err
	}

	result, err := s.pay(req.Card, req.Installments)
	if err != nil {
		return domain.Order{}, err
	}
	if !result.Approved {
		return domain.Order{}, fmt.Errorf("%w: %s", ErrPaymentDeclined, result.Reason)
	}
	return s.Confirm()
}

// CouponLifecycle checks that a valid coupon lowers the total, that removing
// it restores the original total and that invalid and expired codes are
// rejected without touching the cart.
func (s *CheckoutService) CouponLifecycle(sku, valid, invalid, expired string) error {
	if err := s.cart.AddItem(sku, 1); err != nil {
		return err
	}
	base, err := s.cart.ReviewSummary()
	if err != nil {
		return err
	}

	if err := s.cart.ApplyCoupon(valid); err != nil {
		return err
	}
	discounted, err := s.cart.ReviewSummary()
	if err != nil {
		return err
	}
	if !discounted.Total.LessThan(base.Total) {
		return fmt.Errorf("%w: total %s not below %s with coupon %s",
			ErrScenarioAssertion, discounted.Total, base.Total, valid)
	}

	if err := s.cart.RemoveCoupon(); err != nil {
		return err
	}
	restored, err := s.cart.ReviewSummary()
	if err != nil {
		return err
	}
	if !invariant.Equal(restored.Total, base.Total) {
		return fmt.Errorf("%w: total %s after removal, want %s",
			ErrScenarioAssertion, restored.Total, base.Total)
	}

	if err := s.expectCouponRejected(invalid, domain.ReasonInvalid); err != nil {
		return err
	}
	return s.expectCouponRejected(expired, domain.ReasonExpired)
}

func (s *CheckoutService) expectCouponRejected(code, reason string) error {
	if err := s.cart.ApplyCoupon(code); err == nil {
		return fmt.Errorf("%w: coupon %s was accepted", ErrScenarioAssertion, code)
	}
	rejected := s.log.EventsByKind(domain.EventCouponRejected)
	if len(rejected) == 0 {
		return fmt.Errorf("%w: no rejection recorded for %s", ErrScenarioAssertion, code)
	}
	got, ok := rejected[len(rejected)-1].Payload.(domain.CouponRejected)
	if !ok {
		return fmt.Errorf("%w: rejection of %s carries %T", ErrScenarioAssertion, code, rejected[len(rejected)-1].Payload)
	}
	if got.Code != code || got.Reason != reason {
		return fmt.Errorf("%w: coupon %s rejected as %q, want %q", ErrScenarioAssertion, got.Code, got.Reason, reason)
	}
	if s.cart.GetState().CouponCode != nil {
		return fmt.Errorf("%w: coupon set after rejecting %s", ErrScenarioAssertion, code)
	}
	return nil
}

// PaymentRetry pays with each card in turn. Every card but the last must
// decline and leave the reviewed summary intact; the last must approve.
func (s *CheckoutService) PaymentRetry(sku, shipping string, cards []string) (domain.Order, error) {
	if len(cards) == 0 {
		return domain.Order{}, fmt.Errorf("payment retry: no cards: %w", domain.ErrValidation)
	}
	if err := s.cart.AddItem(sku, 1); err != nil {
		return domain.Order{}, err
	}
	if err := s.cart.SelectShipping(shipping); err != nil {
		return domain.Order{}, err
	}
	summary, err := s.cart.ReviewSummary()
	if err != nil {
		return domain.Order{}, err
	}

	for i, name := range cards {
		result, err := s.pay(name, DefaultInstallments)
		if err != nil {
			return domain.Order{}, err
		}

		if i < len(cards)-1 {
			if result.Approved {
				return domain.Order{}, fmt.Errorf("%w: card %s approved before the final attempt", ErrScenarioAssertion, name)
			}
			current, ok := s.cart.LastReviewed()
			if !ok || !invariant.Equal(current.Total, summary.Total) {
				return domain.Order{}, fmt.Errorf("%w: summary changed after decline", ErrScenarioAssertion)
			}
			continue
		}
		if !result.Approved {
			return domain.Order{}, fmt.Errorf("%w: %s", ErrPaymentDeclined, result.Reason)
		}
	}

	order, err := s.Confirm()
	if err != nil {
		return domain.Order{}, err
	}
	if !invariant.Equal(order.Total, summary.Total) {
		return domain.Order{}, fmt.Errorf("%w: order total %s, reviewed %s", ErrScenarioAssertion, order.Total, summary.Total)
	}
	return order, nil
}

func (s *CheckoutService) pay(cardName string, installments int) (domain.PaymentResult, error) {
	card, err := s.payments.Card(cardName)
	if err != nil {
		return domain.PaymentResult{}, err
	}
	return s.cart.Pay(PaymentMethodCard, domain.PaymentParams{Card: card, Installments: installments}), nil
}

// Confirm turns the reviewed summary and the approved payment into an order,
// publishes OrderCreated and empties the cart. At most one order per scenario.
func (s *CheckoutService) Confirm() (domain.Order, error) {
	if s.orderCreated {
		return domain.Order{}, ErrOrderAlreadyCreated
	}
	summary, ok := s.cart.LastReviewed()
	if !ok {
		return domain.Order{}, ErrSummaryNotReviewed
	}
	payment, ok := s.cart.LastPayment()
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: no payment after review", ErrPaymentDeclined)
	}
	if !payment.Approved {
		return domain.Order{}, fmt.Errorf("%w: %s", ErrPaymentDeclined, payment.Reason)
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		Total:         summary.Total,
		TransactionID: payment.TransactionID,
		Status:        domain.OrderStatusConfirmed,
		CreatedAt:     s.now(),
	}
	s.log.Emit(domain.EventOrderCreated, domain.OrderCreated{ID: order.ID, Total: order.Total})
	s.orderCreated = true
	s.cart.Reset()
	return order, nil
}

// ValidateInvariants recomputes the summary and evaluates the built-in
// checks and the catalog guard rules against it.
func (s *CheckoutService) ValidateInvariants() ([]domain.GuardViolation, error) {
	summary, err := s.cart.Summary()
	if err != nil {
		return nil, err
	}

	var violations []domain.GuardViolation
	if !invariant.TotalConsistent(summary) {
		violations = append(violations, domain.GuardViolation{RuleID: "builtin-total-consistent", Message: "total mismatch"})
	}
	if !invariant.DiscountWithinBounds(summary.Discount, summary.Subtotal) {
		violations = append(violations, domain.GuardViolation{RuleID: "builtin-discount-bounds", Message: "discount out of bounds"})
	}

	data := summaryFacts(summary)
	for _, rule := range s.catalog.SummaryGuards() {
		ok, err := evaluateGuard(rule, data)
		if err != nil {
			return nil, fmt.Errorf("guard %s: %w", rule.ID, err)
		}
		if !ok {
			violations = append(violations, domain.GuardViolation{RuleID: rule.ID, Message: rule.Message})
		}
	}
	return violations, nil
}

func (s *CheckoutService) checkGuards() error {
	violations, err := s.ValidateInvariants()
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}
	ids := make([]string, len(violations))
	for i, v := range violations {
		ids[i] = v.RuleID
	}
	return fmt.Errorf("guards %s: %w", strings.Join(ids, ","), domain.ErrInvariantViolation)
}

func summaryFacts(s domain.Summary) map[string]any {
	return map[string]any{
		"subtotal": s.Subtotal.InexactFloat64(),
		"shipping": s.Shipping.InexactFloat64(),
		"discount": s.Discount.InexactFloat64(),
		"total":    s.Total.InexactFloat64(),
	}
}

func evaluateGuard(rule domain.GuardRule, data map[string]any) (bool, error) {
	ruleJSON, err := json.Marshal(rule.Logic)
	if err != nil {
		return false, err
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return false, err
	}

	var out bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(ruleJSON), bytes.NewReader(dataJSON), &out); err != nil {
		return false, err
	}

	var result any
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		return false, fmt.Errorf("decode result %q: %w", out.String(), err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("non-boolean result %v", result)
	}
	return b, nil
}

// Run executes a named scenario from a clean cart and reports on it.
func (s *CheckoutService) Run(name string) Report {
	start := s.now()
	report := Report{Scenario: name}

	var (
		order domain.Order
		err   error
	)
	expectsOrder := true
	if err = s.PrepareCustomer(DefaultAddress); err == nil {
		switch name {
		case ScenarioCheckout:
			order, err = s.Checkout(CheckoutRequest{
				SKU:      DefaultSKU,
				Quantity: defaultCheckoutQty,
				Coupon:   DefaultCoupon,
				Shipping: DefaultShipping,
				Card:     DefaultCard,
			})
		case ScenarioCouponLifecycle:
			expectsOrder = false
			err = s.CouponLifecycle(DefaultSKU, DefaultCoupon, InvalidCoupon, ExpiredCoupon)
		case ScenarioPaymentRetry:
			order, err = s.PaymentRetry(RetrySKU, RetryShipping, []string{LimitCard, AntifraudCard, DefaultCard})
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownScenario, name)
		}
	}

	report.Events = s.log.Kinds()
	report.OrderID = order.ID
	report.Duration = s.now().Sub(start)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Passed = verdict(report.Events, expectsOrder)
	if !report.Passed {
		report.Error = "unexpected event sequence"
	}
	return report
}

// verdict checks the event history: order-producing scenarios need exactly
// one OrderCreated, and a trailing decline must never produce one.
func verdict(kinds []domain.EventKind, expectsOrder bool) bool {
	orders := 0
	var lastPayment domain.EventKind
	for _, k := range kinds {
		switch k {
		case domain.EventOrderCreated:
			orders++
		case domain.EventPaymentApproved, domain.EventPaymentDeclined:
			lastPayment = k
		}
	}
	if lastPayment == domain.EventPaymentDeclined && orders > 0 {
		return false
	}
	if expectsOrder {
		return orders == 1
	}
	return orders == 0
}
