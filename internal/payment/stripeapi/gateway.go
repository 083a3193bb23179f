// Package stripeapi adapts the Stripe SDK to the card gateway interface.
// Intents are created with manual confirmation so the two-phase
// create/confirm protocol stays explicit.
package stripeapi

import (
	"context"
	"fmt"

	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

type Gateway struct{}

func New(apiKey string) *Gateway {
	stripe.Key = apiKey
	return &Gateway{}
}

func (g *Gateway) CreateIntent(ctx context.Context, paymentMethodID string, amount int64) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethod:      stripe.String(paymentMethodID),
		ConfirmationMethod: stripe.String(string(stripe.PaymentIntentConfirmationMethodManual)),
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent: %w", err)
	}
	return toDomain(pi), nil
}

func (g *Gateway) ConfirmIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentConfirmParams{
		Params: stripe.Params{Context: ctx},
	}

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe confirm intent: %w", err)
	}
	return toDomain(pi), nil
}

func toDomain(pi *stripe.PaymentIntent) *domain.PaymentIntent {
	out := &domain.PaymentIntent{
		ID:     pi.ID,
		Status: domain.IntentStatus(pi.Status),
		Amount: pi.Amount,
	}
	if pi.PaymentMethod != nil {
		out.PaymentMethodID = pi.PaymentMethod.ID
	}
	if pi.LastPaymentError != nil {
		out.LastError = pi.LastPaymentError.Msg
	}
	return out
}
