package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyCaptured marks a repeat capture of a provider order. It is a
	// distinct, non-retryable outcome: the first capture charged the buyer,
	// so the caller must not retry or treat it as a generic failure.
	ErrAlreadyCaptured = errors.New("order already captured")

	// ErrUnexpectedIntentState marks an intent outside the expected lifecycle
	// (anything but requires_confirmation before confirm). The attempt cannot
	// continue; the payment step must be restarted.
	ErrUnexpectedIntentState = errors.New("unexpected payment intent state")

	// ErrAttemptInProgress guards against duplicate submissions of a flow
	// that is still in flight or already finished.
	ErrAttemptInProgress = errors.New("payment attempt already in progress")
)

// Error is a refused payment, carrying the provider-supplied reason where
// one was given. It is retry-eligible, unlike ErrAlreadyCaptured.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return "payment failed"
	}
	return fmt.Sprintf("payment failed: %s", e.Reason)
}
