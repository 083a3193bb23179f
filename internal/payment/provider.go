package payment

import (
	"context"

	"github.com/ekurin/go_storefront/internal/domain"
)

// PayPalGateway is the slice of the provider Orders API the capture flow
// needs. The concrete SDK/REST binding lives outside this package and is
// substitutable with a test double.
type PayPalGateway interface {
	CreateOrder(ctx context.Context, total string) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (*domain.CaptureResult, error)
}

// CardGateway is the payment-intent half of the card provider API. Only
// opaque payment-method tokens cross this boundary, never raw card data.
type CardGateway interface {
	CreateIntent(ctx context.Context, paymentMethodID string, amount int64) (*domain.PaymentIntent, error)
	ConfirmIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error)
}

// SuccessFunc is the single contract both capture flows converge on. A flow
// invokes it at most once per attempt.
type SuccessFunc func(details domain.PaymentDetails) error
