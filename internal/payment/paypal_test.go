package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedCapture(orderID string) *domain.CaptureResult {
	return &domain.CaptureResult{
		OrderID:   orderID,
		CaptureID: "cap_1",
		Status:    domain.PayPalOrderCompleted,
	}
}

func TestPayPalExecute_Success(t *testing.T) {
	gateway := &mockPayPalGateway{
		orderID:       "pp_order_1",
		captureResult: completedCapture("pp_order_1"),
	}
	recorder := &successRecorder{}

	err := NewPayPalFlow(gateway).Execute(context.Background(), "20.00", recorder.fn)
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, "pp_order_1", recorder.details.ID)
	assert.Equal(t, domain.PaymentMethodPayPal, recorder.details.Method)
	assert.True(t, recorder.details.Succeeded())
}

func TestPayPalExecute_NonCompletedStatusIsNotSuccess(t *testing.T) {
	gateway := &mockPayPalGateway{
		orderID: "pp_order_1",
		captureResult: &domain.CaptureResult{
			OrderID: "pp_order_1",
			Status:  domain.PayPalOrderVoided,
		},
	}
	recorder := &successRecorder{}

	err := NewPayPalFlow(gateway).Execute(context.Background(), "20.00", recorder.fn)

	var paymentErr *Error
	require.ErrorAs(t, err, &paymentErr)
	assert.Equal(t, 0, recorder.calls)
}

func TestPayPalExecute_CreateFailureSkipsCapture(t *testing.T) {
	gateway := &mockPayPalGateway{createErr: errors.New("provider down")}
	recorder := &successRecorder{}

	err := NewPayPalFlow(gateway).Execute(context.Background(), "20.00", recorder.fn)
	require.Error(t, err)

	assert.Equal(t, 0, gateway.captures)
	assert.Equal(t, 0, recorder.calls)
}

func TestPayPalCapture_AlreadyCapturedIsDistinct(t *testing.T) {
	gateway := &mockPayPalGateway{captureErr: ErrAlreadyCaptured}
	recorder := &successRecorder{}

	err := NewPayPalFlow(gateway).Capture(context.Background(), "pp_order_1", recorder.fn)

	// Not a generic payment failure: the caller must not retry the charge.
	assert.ErrorIs(t, err, ErrAlreadyCaptured)
	var paymentErr *Error
	assert.False(t, errors.As(err, &paymentErr))
	assert.Equal(t, 0, recorder.calls)
}

func TestPayPalFlow_SecondExecuteRejected(t *testing.T) {
	gateway := &mockPayPalGateway{
		orderID:       "pp_order_1",
		captureResult: completedCapture("pp_order_1"),
	}
	recorder := &successRecorder{}
	flow := NewPayPalFlow(gateway)

	require.NoError(t, flow.Execute(context.Background(), "20.00", recorder.fn))

	err := flow.Execute(context.Background(), "20.00", recorder.fn)
	assert.ErrorIs(t, err, ErrAttemptInProgress)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, 1, gateway.captures)
}

func TestPayPalFlow_RetryAfterFailureAllowed(t *testing.T) {
	gateway := &mockPayPalGateway{createErr: errors.New("transient")}
	recorder := &successRecorder{}
	flow := NewPayPalFlow(gateway)

	require.Error(t, flow.Execute(context.Background(), "20.00", recorder.fn))

	gateway.m.Lock()
	gateway.createErr = nil
	gateway.orderID = "pp_order_2"
	gateway.captureResult = completedCapture("pp_order_2")
	gateway.m.Unlock()

	err := flow.Execute(context.Background(), "20.00", recorder.fn)
	require.NoError(t, err)
	assert.Equal(t, 1, recorder.calls)
}

func TestPayPalFlow_ConcurrentExecuteRunsOnce(t *testing.T) {
	gateway := &mockPayPalGateway{
		orderID:       "pp_order_1",
		captureResult: completedCapture("pp_order_1"),
	}
	recorder := &successRecorder{}
	flow := NewPayPalFlow(gateway)

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			done <- flow.Execute(context.Background(), "20.00", recorder.fn)
		}()
	}
	first, second := <-done, <-done

	// One submission wins; the other is rejected or arrives after completion.
	if first == nil {
		assert.Error(t, second)
	} else {
		assert.NoError(t, second)
	}
	assert.Equal(t, 1, recorder.calls)
}
