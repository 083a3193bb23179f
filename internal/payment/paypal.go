package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ekurin/go_storefront/internal/domain"
)

// PayPalFlow drives the provider order create/capture round trip. A flow
// instance covers one checkout attempt: repeated submissions are rejected and
// the success contract fires at most once.
type PayPalFlow struct {
	gateway PayPalGateway

	mu         sync.Mutex
	submitting bool
	done       bool
}

func NewPayPalFlow(gateway PayPalGateway) *PayPalFlow {
	return &PayPalFlow{gateway: gateway}
}

// Execute runs the full round trip: create a provider order for the total,
// then capture it.
func (f *PayPalFlow) Execute(ctx context.Context, total string, onSuccess SuccessFunc) error {
	if err := f.begin(); err != nil {
		return err
	}
	defer f.finish()

	orderID, err := f.CreateOrder(ctx, total)
	if err != nil {
		return err
	}

	return f.capture(ctx, orderID, onSuccess)
}

// CreateOrder asks the provider to stage an order for the given total and
// returns the provider order id.
func (f *PayPalFlow) CreateOrder(ctx context.Context, total string) (string, error) {
	orderID, err := f.gateway.CreateOrder(ctx, total)
	if err != nil {
		return "", fmt.Errorf("create paypal order: %w", err)
	}
	return orderID, nil
}

// Capture finalizes an approved provider order. Only COMPLETED is success;
// an already-captured order is reported as its own outcome so the caller does
// not retry destructively.
func (f *PayPalFlow) Capture(ctx context.Context, orderID string, onSuccess SuccessFunc) error {
	if err := f.begin(); err != nil {
		return err
	}
	defer f.finish()

	return f.capture(ctx, orderID, onSuccess)
}

// CaptureOrder finalizes an approved provider order and validates the
// outcome without touching the once-only success guard.
func (f *PayPalFlow) CaptureOrder(ctx context.Context, orderID string) (*domain.CaptureResult, error) {
	result, err := f.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrAlreadyCaptured) {
			return nil, ErrAlreadyCaptured
		}
		return nil, fmt.Errorf("capture paypal order: %w", err)
	}

	if result.Status != domain.PayPalOrderCompleted {
		return nil, &Error{Reason: fmt.Sprintf("capture returned status %s", result.Status)}
	}

	return result, nil
}

func (f *PayPalFlow) capture(ctx context.Context, orderID string, onSuccess SuccessFunc) error {
	result, err := f.CaptureOrder(ctx, orderID)
	if err != nil {
		return err
	}

	return f.succeed(domain.PaymentDetails{
		ID:     result.OrderID,
		Status: string(result.Status),
		Method: domain.PaymentMethodPayPal,
	}, onSuccess)
}

func (f *PayPalFlow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting || f.done {
		return ErrAttemptInProgress
	}
	f.submitting = true
	return nil
}

func (f *PayPalFlow) finish() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

func (f *PayPalFlow) succeed(details domain.PaymentDetails, onSuccess SuccessFunc) error {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return nil
	}
	f.done = true
	f.mu.Unlock()

	return onSuccess(details)
}
