package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ekurin/go_storefront/internal/cart"
	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/ekurin/go_storefront/internal/order"
	"github.com/ekurin/go_storefront/internal/payment"
	"github.com/shopspring/decimal"
)

var (
	ErrNotAtReview = errors.New("checkout session is not at the review step")

	// ErrCartHasErrors blocks payment while any line item exceeds its
	// available quantity. User-correctable, not fatal.
	ErrCartHasErrors = errors.New("cart has items exceeding available stock")

	// ErrStaleAttempt marks a payment result arriving after a newer attempt
	// started. The late result is discarded without mutating anything.
	ErrStaleAttempt = errors.New("payment attempt superseded")
)

// Coordinator drives the review/payment step: it gates on the stock check,
// runs the capture flow for the chosen method, and places the order through
// the single success contract.
type Coordinator struct {
	cart   *cart.Store
	orders *order.Service
	paypal payment.PayPalGateway
	card   payment.CardGateway

	mu       sync.Mutex
	attempts map[string]uint64 // userID -> current attempt
}

func NewCoordinator(cartStore *cart.Store, orders *order.Service, paypal payment.PayPalGateway, card payment.CardGateway) *Coordinator {
	return &Coordinator{
		cart:     cartStore,
		orders:   orders,
		paypal:   paypal,
		card:     card,
		attempts: make(map[string]uint64),
	}
}

type PayRequest struct {
	// PaymentMethodID is the opaque card token from the client-side payment
	// SDK. Required for the card method, ignored for PayPal.
	PaymentMethodID string
}

// Pay runs the capture protocol for the session's chosen method. On success
// the order is persisted and the cart cleared; on any failure the session
// stays at the review step with the cart untouched, ready for retry.
func (c *Coordinator) Pay(ctx context.Context, session *Session, req PayRequest) (*domain.Order, error) {
	if session.Step != StepReview {
		return nil, ErrNotAtReview
	}

	hasErrors, err := c.cart.CheckQuantities(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("check quantities: %w", err)
	}
	if hasErrors {
		return nil, ErrCartHasErrors
	}

	total, err := c.cart.Total(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("compute total: %w", err)
	}

	attempt := c.beginAttempt(session.UserID)

	var placed *domain.Order
	onSuccess := func(details domain.PaymentDetails) error {
		if !c.isCurrentAttempt(session.UserID, attempt) {
			return ErrStaleAttempt
		}
		o, placeErr := c.orders.PlaceOrder(ctx, order.PlaceOrderInput{
			UserID:   session.UserID,
			Shipping: session.Shipping,
			Method:   session.Method,
			Payment:  details,
		})
		if placeErr != nil {
			return placeErr
		}
		placed = o
		return nil
	}

	switch session.Method {
	case domain.PaymentMethodPayPal:
		flow := payment.NewPayPalFlow(c.paypal)
		err = flow.Execute(ctx, total, onSuccess)
	case domain.PaymentMethodCard:
		amount, convErr := amountInCents(total)
		if convErr != nil {
			return nil, convErr
		}
		flow := payment.NewCardFlow(c.card)
		err = flow.Execute(ctx, req.PaymentMethodID, amount, onSuccess)
	default:
		return nil, fmt.Errorf("no payment method selected")
	}

	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (c *Coordinator) beginAttempt(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[userID]++
	return c.attempts[userID]
}

func (c *Coordinator) isCurrentAttempt(userID string, attempt uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts[userID] == attempt
}

func amountInCents(total string) (int64, error) {
	d, err := decimal.NewFromString(total)
	if err != nil {
		return 0, fmt.Errorf("parse total %q: %w", total, err)
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}
