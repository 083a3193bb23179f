package payment

import (
	"context"
	"sync"

	"github.com/ekurin/go_storefront/internal/domain"
)

type mockPayPalGateway struct {
	m sync.Mutex

	orderID   string
	createErr error

	captureResult *domain.CaptureResult
	captureErr    error

	creates  int
	captures int
}

func (g *mockPayPalGateway) CreateOrder(context.Context, string) (string, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.creates++
	if g.createErr != nil {
		return "", g.createErr
	}
	return g.orderID, nil
}

func (g *mockPayPalGateway) CaptureOrder(context.Context, string) (*domain.CaptureResult, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.captures++
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	return g.captureResult, nil
}

type mockCardGateway struct {
	m sync.Mutex

	intent    *domain.PaymentIntent
	createErr error

	confirmed  *domain.PaymentIntent
	confirmErr error

	creates  int
	confirms int
}

func (g *mockCardGateway) CreateIntent(context.Context, string, int64) (*domain.PaymentIntent, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.creates++
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.intent, nil
}

func (g *mockCardGateway) ConfirmIntent(context.Context, string) (*domain.PaymentIntent, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.confirms++
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	return g.confirmed, nil
}

// successRecorder counts invocations of the success contract and captures the
// details it received.
type successRecorder struct {
	m       sync.Mutex
	calls   int
	details domain.PaymentDetails
	err     error
}

func (r *successRecorder) fn(details domain.PaymentDetails) error {
	r.m.Lock()
	defer r.m.Unlock()
	r.calls++
	r.details = details
	return r.err
}
