package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/checkout-sim/internal/core/domain"
	"github.com/rl1809/checkout-sim/internal/core/eventlog"
	"github.com/rl1809/checkout-sim/internal/core/invariant"
	"github.com/rl1809/checkout-sim/internal/port"
)

const (
	DefaultAddressLabel = "Custom"
	DefaultInstallments = 1
)

var validate = validator.New()

// CartService applies commands to a single cart. A rejected command leaves
// the cart unchanged; rejection events are published before the error is
// returned. Not safe for concurrent use.
type CartService struct {
	catalog  port.Catalog
	payments port.PaymentFixtures
	log      *eventlog.Log

	state       domain.CartState
	address     *domain.Address
	reviewed    *domain.Summary
	lastPayment *domain.PaymentResult
}

func NewCartService(catalog port.Catalog, payments port.PaymentFixtures, log *eventlog.Log) *CartService {
	return &CartService{
		catalog:  catalog,
		payments: payments,
		log:      log,
	}
}

func (s *CartService) Log() *eventlog.Log {
	return s.log
}

func (s *CartService) AddItem(sku string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("add %s: quantity %d: %w", sku, quantity, domain.ErrValidation)
	}
	product, err := s.catalog.Product(sku)
	if err != nil {
		return err
	}

	existing := 0
	idx := s.state.Find(sku)
	if idx >= 0 {
		existing = s.state.Items[idx].Quantity
	}
	// existing+quantity may overflow; compare against the headroom instead.
	if !invariant.StockSufficient(product.Stock, quantity) || existing > product.Stock-quantity {
		return fmt.Errorf("add %s: requested %d more than %d in cart, stock %d: %w",
			sku, quantity, existing, product.Stock, domain.ErrInvariantViolation)
	}

	if idx >= 0 {
		s.state.Items[idx].Quantity += quantity
	} else {
		s.state.Items = append(s.state.Items, domain.LineItem{
			SKU:       sku,
			Quantity:  quantity,
			UnitPrice: product.Price,
		})
	}
	s.invalidate()
	s.log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: sku, Quantity: quantity})
	return nil
}

func (s *CartService) RemoveItem(sku string) error {
	idx := s.state.Find(sku)
	if idx < 0 {
		return fmt.Errorf("cart item %q: %w", sku, domain.ErrNotFound)
	}
	s.state.Items = append(s.state.Items[:idx], s.state.Items[idx+1:]...)
	s.invalidate()
	s.log.Emit(domain.EventItemRemoved, domain.ItemRemoved{SKU: sku})
	return nil
}

// ChangeQuantity sets the quantity of an existing line. Zero removes it.
func (s *CartService) ChangeQuantity(sku string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("change %s: quantity %d: %w", sku, quantity, domain.ErrValidation)
	}
	idx := s.state.Find(sku)
	if idx < 0 {
		return fmt.Errorf("cart item %q: %w", sku, domain.ErrNotFound)
	}
	if quantity == 0 {
		return s.RemoveItem(sku)
	}

	product, err := s.catalog.Product(sku)
	if err != nil {
		return err
	}
	if !invariant.StockSufficient(product.Stock, quantity) {
		s.log.Emit(domain.EventQuantityChangeRejected, domain.QuantityChangeRejected{
			SKU:    sku,
			Reason: domain.ReasonInsufficientStock,
		})
		return fmt.Errorf("change %s: requested %d, stock %d: %w",
			sku, quantity, product.Stock, domain.ErrInvariantViolation)
	}

	from := s.state.Items[idx].Quantity
	s.state.Items[idx].Quantity = quantity
	s.invalidate()
	s.log.Emit(domain.EventQuantityChanged, domain.QuantityChanged{SKU: sku, From: from, To: quantity})
	return nil
}

func (s *CartService) ApplyCoupon(code string) error {
	coupon, err := s.catalog.Coupon(code)
	if err != nil {
		s.rejectCoupon(code, domain.ReasonInvalid)
		return err
	}
	if reason, ok := couponUsable(coupon); !ok {
		s.rejectCoupon(code, reason)
		return fmt.Errorf("coupon %q is %s: %w", code, reason, domain.ErrValidation)
	}
	if !invariant.CouponExclusive(s.state.CouponCode, code) {
		s.rejectCoupon(code, domain.ReasonNotCumulative)
		return fmt.Errorf("coupon %q with %q active: %w", code, *s.state.CouponCode, domain.ErrInvariantViolation)
	}

	s.state.CouponCode = &code
	s.invalidate()
	s.log.Emit(domain.EventCouponApplied, domain.CouponApplied{
		Code:  code,
		Kind:  coupon.Kind,
		Value: coupon.Value,
	})
	return nil
}

// couponUsable reports the rejection reason for a coupon that cannot be
// applied. The expired flag wins over the valid flag.
func couponUsable(c domain.Coupon) (string, bool) {
	if c.Expired {
		return domain.ReasonExpired, false
	}
	if !c.Valid {
		return domain.ReasonInvalid, false
	}
	return "", true
}

func (s *CartService) rejectCoupon(code, reason string) {
	s.log.Emit(domain.EventCouponRejected, domain.CouponRejected{Code: code, Reason: reason})
}

func (s *CartService) RemoveCoupon() error {
	if s.state.CouponCode == nil {
		return fmt.Errorf("active coupon: %w", domain.ErrNotFound)
	}
	code := *s.state.CouponCode
	s.state.CouponCode = nil
	s.invalidate()
	s.log.Emit(domain.EventCouponRemoved, domain.CouponRemoved{Code: code})
	return nil
}

func (s *CartService) SelectShipping(kind string) error {
	opt, err := s.catalog.Shipping(kind)
	if err != nil {
		s.log.Emit(domain.EventShippingUnavailable, domain.ShippingUnavailable{Kind: kind})
		return err
	}
	if !invariant.ShippingValid(opt) {
		return fmt.Errorf("shipping %q: cost %s, lead time %d: %w",
			kind, opt.Cost, opt.LeadTimeDays, domain.ErrInvariantViolation)
	}

	s.state.Shipping = &opt
	s.invalidate()
	s.log.Emit(domain.EventShippingSelected, domain.ShippingSelected{
		Kind:     opt.Kind,
		LeadTime: opt.LeadTimeDays,
		Cost:     opt.Cost,
	})
	return nil
}

// Summary computes the current totals without publishing anything.
func (s *CartService) Summary() (domain.Summary, error) {
	subtotal := invariant.Subtotal(s.state.Items)

	shipping := decimal.Zero
	if s.state.Shipping != nil {
		shipping = s.state.Shipping.Cost
	}

	discount := decimal.Zero
	if s.state.CouponCode != nil {
		coupon, err := s.catalog.Coupon(*s.state.CouponCode)
		if err != nil {
			return domain.Summary{}, err
		}
		// valor coupons carry no discount formula.
		if coupon.Kind == domain.CouponPercentual {
			discount = invariant.Discount(subtotal, coupon.Value)
		}
	}

	total := subtotal.Add(shipping).Sub(discount)
	if !invariant.TotalNonNegative(total) {
		return domain.Summary{}, fmt.Errorf("total %s: %w", total, domain.ErrInvariantViolation)
	}
	return domain.Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}, nil
}

// ReviewSummary computes the totals, publishes SummaryReviewed and marks the
// summary as reviewed. A payment recorded before the review no longer counts.
func (s *CartService) ReviewSummary() (domain.Summary, error) {
	summary, err := s.Summary()
	if err != nil {
		return domain.Summary{}, err
	}
	s.reviewed = &summary
	s.lastPayment = nil
	s.log.Emit(domain.EventSummaryReviewed, domain.SummaryReviewed{
		Subtotal: summary.Subtotal,
		Shipping: summary.Shipping,
		Discount: summary.Discount,
		Total:    summary.Total,
	})
	return summary, nil
}

// Pay resolves the card outcome from the payment fixtures. Cards without a
// fixture are approved; a failed lookup declines. A decline is a result, not
// an error.
func (s *CartService) Pay(method string, params domain.PaymentParams) domain.PaymentResult {
	installments := params.Installments
	if installments <= 0 {
		installments = DefaultInstallments
	}

	var declined string
	outcome, err := s.payments.Outcome(params.Card.Number)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		declined = domain.DeclineLookup
	case outcome == domain.OutcomeLimit, outcome == domain.OutcomeAntifraud:
		declined = string(outcome)
	}

	var result domain.PaymentResult
	if declined != "" {
		result = domain.PaymentResult{Approved: false, Reason: declined, Method: method}
		s.log.Emit(domain.EventPaymentDeclined, domain.PaymentDeclined{Reason: result.Reason})
	} else {
		result = domain.PaymentResult{
			Approved:      true,
			Method:        method,
			Installments:  installments,
			TransactionID: uuid.NewString(),
		}
		s.log.Emit(domain.EventPaymentApproved, domain.PaymentApproved{Method: method, Installments: installments})
	}

	s.lastPayment = &result
	return result
}

func (s *CartService) UpdateAddress(addr domain.Address) error {
	if err := validate.Struct(addr); err != nil {
		s.log.Emit(domain.EventAddressRejected, domain.AddressRejected{Reason: domain.ReasonIncompleteData})
		return fmt.Errorf("address: %v: %w", err, domain.ErrValidation)
	}
	if addr.Label == "" {
		addr.Label = DefaultAddressLabel
	}

	label := addr.Label
	s.address = &addr
	s.state.Address = &label
	s.log.Emit(domain.EventAddressUpdated, domain.AddressUpdated{
		PostalCode: addr.PostalCode,
		City:       addr.City,
		State:      addr.State,
	})
	return nil
}

// GetState returns a deep copy of the cart.
func (s *CartService) GetState() domain.CartState {
	return s.state.Clone()
}

func (s *CartService) Address() (domain.Address, bool) {
	if s.address == nil {
		return domain.Address{}, false
	}
	return *s.address, true
}

func (s *CartService) LastReviewed() (domain.Summary, bool) {
	if s.reviewed == nil {
		return domain.Summary{}, false
	}
	return *s.reviewed, true
}

func (s *CartService) LastPayment() (domain.PaymentResult, bool) {
	if s.lastPayment == nil {
		return domain.PaymentResult{}, false
	}
	return *s.lastPayment, true
}

// Reset empties the cart without publishing.
func (s *CartService) Reset() {
	s.state = domain.CartState{}
	s.address = nil
	s.reviewed = nil
	s.lastPayment = nil
}

// invalidate drops the reviewed summary and payment after a mutation.
func (s *CartService) invalidate() {
	s.reviewed = nil
	s.lastPayment = nil
}
