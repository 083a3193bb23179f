package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/ekurin/go_storefront/internal/domain"
)

// CardFlow drives the server-confirmed two-phase card protocol: create an
// intent for (payment method token, amount), verify it awaits confirmation,
// confirm it, and accept only a succeeded terminal status. One instance
// covers one checkout attempt.
type CardFlow struct {
	gateway CardGateway

	mu         sync.Mutex
	submitting bool
	done       bool
}

func NewCardFlow(gateway CardGateway) *CardFlow {
	return &CardFlow{gateway: gateway}
}

// Execute runs both phases against the gateway.
func (f *CardFlow) Execute(ctx context.Context, paymentMethodID string, amount int64, onSuccess SuccessFunc) error {
	if err := f.begin(); err != nil {
		return err
	}
	defer f.finish()

	intent, err := f.CreateIntent(ctx, paymentMethodID, amount)
	if err != nil {
		return err
	}

	return f.confirm(ctx, intent.ID, onSuccess)
}

// CreateIntent stages a payment intent and verifies it is in
// requires_confirmation. Any other status, including a missing intent, is an
// unexpected-state failure the attempt cannot recover from.
func (f *CardFlow) CreateIntent(ctx context.Context, paymentMethodID string, amount int64) (*domain.PaymentIntent, error) {
	intent, err := f.gateway.CreateIntent(ctx, paymentMethodID, amount)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if intent == nil {
		return nil, fmt.Errorf("%w: provider returned no intent", ErrUnexpectedIntentState)
	}
	if intent.Status != domain.IntentStatusRequiresConfirmation {
		return nil, fmt.Errorf("%w: intent %s is %q before confirmation", ErrUnexpectedIntentState, intent.ID, intent.Status)
	}
	return intent, nil
}

// Confirm requests confirmation of a staged intent and runs the success
// contract on a succeeded terminal status.
func (f *CardFlow) Confirm(ctx context.Context, intentID string, onSuccess SuccessFunc) error {
	if err := f.begin(); err != nil {
		return err
	}
	defer f.finish()

	return f.confirm(ctx, intentID, onSuccess)
}

// ConfirmIntent requests confirmation of a staged intent. Only succeeded is
// success; anything else is a refused payment carrying the provider message
// where available.
func (f *CardFlow) ConfirmIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error) {
	confirmed, err := f.gateway.ConfirmIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("confirm payment intent: %w", err)
	}

	if confirmed.Status != domain.IntentStatusSucceeded {
		reason := confirmed.LastError
		if reason == "" {
			reason = fmt.Sprintf("intent %s finished as %s", confirmed.ID, confirmed.Status)
		}
		return nil, &Error{Reason: reason}
	}

	return confirmed, nil
}

func (f *CardFlow) confirm(ctx context.Context, intentID string, onSuccess SuccessFunc) error {
	confirmed, err := f.ConfirmIntent(ctx, intentID)
	if err != nil {
		return err
	}

	return f.succeed(domain.PaymentDetails{
		ID:     confirmed.ID,
		Status: string(confirmed.Status),
		Method: domain.PaymentMethodCard,
	}, onSuccess)
}

func (f *CardFlow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting || f.done {
		return ErrAttemptInProgress
	}
	f.submitting = true
	return nil
}

func (f *CardFlow) finish() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

func (f *CardFlow) succeed(details domain.PaymentDetails, onSuccess SuccessFunc) error {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return nil
	}
	f.done = true
	f.mu.Unlock()

	return onSuccess(details)
}
