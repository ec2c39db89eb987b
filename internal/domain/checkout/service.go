// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-checkout/internal/domain/basket"
	"github.com/your-org/storefront-checkout/internal/domain/discount"
	"github.com/your-org/storefront-checkout/internal/domain/order"
)

// BasketSource resolves and clears the authoritative basket
type BasketSource interface {
	Aggregate(ctx context.Context, userID *uint, token string, now time.Time) (*basket.Aggregation, error)
	Clear(ctx context.Context, userID *uint, token string) error
}

// DiscountSource reads and clears the promo discount applied to a session
type DiscountSource interface {
	GetApplied(ctx context.Context, token string) (*discount.Applied, error)
	Clear(ctx context.Context, token string) error
}

// PaymentInitiator asks the external gateway for a payment redirect URL
type PaymentInitiator interface {
	CreateCheckoutPayment(ctx context.Context, method basket.ShipmentMethod, discountPercent int, amountMinor int64) (string, error)
}

// SessionBackend persists the in-progress recipient form
type SessionBackend interface {
	Get(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, token string, session *Session) error
	Clear(ctx context.Context, token string) error
}

// OrderCreator persists a placed order
type OrderCreator interface {
	CreateFromCheckout(ctx context.Context, userID uint, agg *basket.Aggregation, recipient order.Recipient, method basket.ShipmentMethod, applied *discount.Applied) (*order.Order, error)
}

// Service orchestrates the checkout flow: stage navigation, the recipient
// form, the order summary, and final submission.
type Service struct {
	baskets     BasketSource
	discounts   DiscountSource
	payments    PaymentInitiator
	orders      OrderCreator
	sessions    SessionBackend
	courierCity string
	logger      *logrus.Logger
}

// NewService creates a new checkout service
func NewService(baskets BasketSource, discounts DiscountSource, payments PaymentInitiator, orders OrderCreator, sessions SessionBackend, courierCity string, logger *logrus.Logger) *Service {
	return &Service{
		baskets:     baskets,
		discounts:   discounts,
		payments:    payments,
		orders:      orders,
		sessions:    sessions,
		courierCity: courierCity,
		logger:      logger,
	}
}

// Summary is the complete checkout state for rendering one stage
type Summary struct {
	LineItems        []basket.LineItem  `json:"line_items"`
	Totals           basket.OrderTotals `json:"totals"`
	Session          *Session           `json:"session"`
	Applied          *discount.Applied  `json:"applied_discount,omitempty"`
	FinalPayable     int64              `json:"final_payable"`
	ShipmentChosen   bool               `json:"shipment_chosen"`
	AppliedPercent   int                `json:"applied_percent"`
	PayableBaseMinor int64              `json:"payable_base_minor"`
}

// Navigate applies the stage-gating rules for a navigation attempt using the
// persisted session state
func (s *Service) Navigate(ctx context.Context, userID *uint, checkoutToken string, current, target Stage) (Transition, error) {
	session, err := s.sessions.Get(ctx, checkoutToken)
	if err != nil {
		return Transition{Next: current}, err
	}

	return Advance(current, target, userID != nil, session, s.courierCity)
}

// GetSession loads the in-progress recipient form
func (s *Service) GetSession(ctx context.Context, checkoutToken string) (*Session, error) {
	return s.sessions.Get(ctx, checkoutToken)
}

// SaveSession persists the recipient form. Partial forms are allowed here;
// completeness is enforced when advancing to the shipment stage.
func (s *Service) SaveSession(ctx context.Context, checkoutToken string, session *Session) error {
	if session.Shipment != "" {
		method := session.ShipmentMethod()
		if !method.Valid() {
			return &ValidationError{Fields: []FieldError{{
				Field:   "shipment",
				Message: fmt.Sprintf("unknown shipment method %q", session.Shipment),
			}}}
		}
		if method == basket.ShipmentCourier && session.City != s.courierCity {
			return &ValidationError{Fields: []FieldError{{
				Field:   "shipment",
				Message: fmt.Sprintf("courier delivery is only available in %s", s.courierCity),
			}}}
		}
	}

	return s.sessions.Save(ctx, checkoutToken, session)
}

// ClearSession discards the recipient form, e.g. on logout
func (s *Service) ClearSession(ctx context.Context, checkoutToken string) error {
	return s.sessions.Clear(ctx, checkoutToken)
}

// Summarize composes the aggregated basket, recipient form, and applied promo
// discount into one summary. The final payable amount is derived through the
// shared payable-base computation.
func (s *Service) Summarize(ctx context.Context, userID *uint, basketToken, checkoutToken string, now time.Time) (*Summary, error) {
	agg, err := s.baskets.Aggregate(ctx, userID, basketToken, now)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, checkoutToken)
	if err != nil {
		return nil, err
	}

	applied, err := s.discounts.GetApplied(ctx, checkoutToken)
	if err != nil {
		return nil, err
	}

	percent := 0
	if applied != nil {
		percent = applied.Percent
	}

	method := session.ShipmentMethod()
	summary := &Summary{
		LineItems:      agg.LineItems,
		Totals:         agg.Totals,
		Session:        session,
		Applied:        applied,
		AppliedPercent: percent,
		ShipmentChosen: method.Valid(),
	}

	if method.Valid() {
		summary.PayableBaseMinor = agg.Totals.PayableBase(method)
		summary.FinalPayable = agg.Totals.FinalPayable(method, percent)
	}

	return summary, nil
}

// Submit performs the final checkout submission: it validates the recipient
// form, initiates payment, persists the order, and clears the basket, the
// session, and the applied discount. On payment-initiation failure nothing is
// mutated; the caller stays on the shipment stage and may retry.
func (s *Service) Submit(ctx context.Context, userID *uint, basketToken, checkoutToken string, now time.Time) (string, error) {
	if userID == nil {
		return "", discount.ErrNotAuthenticated
	}

	session, err := s.sessions.Get(ctx, checkoutToken)
	if err != nil {
		return "", err
	}
	if err := ValidateSession(session, s.courierCity); err != nil {
		return "", err
	}

	agg, err := s.baskets.Aggregate(ctx, userID, basketToken, now)
	if err != nil {
		return "", err
	}
	if len(agg.LineItems) == 0 {
		return "", fmt.Errorf("basket is empty")
	}

	applied, err := s.discounts.GetApplied(ctx, checkoutToken)
	if err != nil {
		return "", err
	}
	percent := 0
	if applied != nil {
		percent = applied.Percent
	}

	method := session.ShipmentMethod()
	payable := agg.Totals.FinalPayable(method, percent)

	paymentURL, err := s.payments.CreateCheckoutPayment(ctx, method, percent, payable)
	if err != nil {
		return "", err
	}

	recipient := order.Recipient{
		Name:     session.Name,
		Phone:    session.Phone,
		Province: session.Province,
		City:     session.City,
		Address:  session.Address,
		PostCode: session.PostCode,
	}

	placed, err := s.orders.CreateFromCheckout(ctx, *userID, agg, recipient, method, applied)
	if err != nil {
		return "", err
	}

	// Basket, session, and applied discount are only discarded once the order
	// is safely persisted
	if err := s.baskets.Clear(ctx, userID, basketToken); err != nil {
		s.logger.WithError(err).Warn("Failed to clear basket after order placement")
	}
	if err := s.discounts.Clear(ctx, checkoutToken); err != nil {
		s.logger.WithError(err).Warn("Failed to clear applied discount after order placement")
	}
	if err := s.sessions.Clear(ctx, checkoutToken); err != nil {
		s.logger.WithError(err).Warn("Failed to clear checkout session after order placement")
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": placed.OrderNumber,
		"payable":      placed.PayableMinor,
	}).Info("Order placed")

	return paymentURL, nil
}
