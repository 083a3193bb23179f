package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedIntent(id string) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ID:     id,
		Status: domain.IntentStatusRequiresConfirmation,
		Amount: 2000,
	}
}

func succeededIntent(id string) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ID:     id,
		Status: domain.IntentStatusSucceeded,
		Amount: 2000,
	}
}

func TestCardExecute_Success(t *testing.T) {
	gateway := &mockCardGateway{
		intent:    stagedIntent("pi_1"),
		confirmed: succeededIntent("pi_1"),
	}
	recorder := &successRecorder{}

	err := NewCardFlow(gateway).Execute(context.Background(), "pm_visa", 2000, recorder.fn)
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, "pi_1", recorder.details.ID)
	assert.Equal(t, domain.PaymentMethodCard, recorder.details.Method)
	assert.True(t, recorder.details.Succeeded())
}

func TestCardCreateIntent_RejectsUnexpectedStatus(t *testing.T) {
	gateway := &mockCardGateway{
		intent: &domain.PaymentIntent{ID: "pi_1", Status: domain.IntentStatusProcessing},
	}

	_, err := NewCardFlow(gateway).CreateIntent(context.Background(), "pm_visa", 2000)
	assert.ErrorIs(t, err, ErrUnexpectedIntentState)
}

func TestCardCreateIntent_RejectsMissingIntent(t *testing.T) {
	gateway := &mockCardGateway{}

	_, err := NewCardFlow(gateway).CreateIntent(context.Background(), "pm_visa", 2000)
	assert.ErrorIs(t, err, ErrUnexpectedIntentState)
}

func TestCardConfirmIntent_FailedIntentCarriesProviderMessage(t *testing.T) {
	gateway := &mockCardGateway{
		confirmed: &domain.PaymentIntent{
			ID:        "pi_1",
			Status:    domain.IntentStatusFailed,
			LastError: "Your card was declined.",
		},
	}

	_, err := NewCardFlow(gateway).ConfirmIntent(context.Background(), "pi_1")

	var paymentErr *Error
	require.ErrorAs(t, err, &paymentErr)
	assert.Contains(t, paymentErr.Error(), "Your card was declined.")
}

func TestCardConfirmIntent_NonSucceededWithoutMessage(t *testing.T) {
	gateway := &mockCardGateway{
		confirmed: &domain.PaymentIntent{ID: "pi_1", Status: domain.IntentStatusCanceled},
	}

	_, err := NewCardFlow(gateway).ConfirmIntent(context.Background(), "pi_1")

	var paymentErr *Error
	require.ErrorAs(t, err, &paymentErr)
	assert.Contains(t, paymentErr.Error(), "pi_1")
	assert.Contains(t, paymentErr.Error(), string(domain.IntentStatusCanceled))
}

func TestCardExecute_ConfirmFailureSkipsSuccess(t *testing.T) {
	gateway := &mockCardGateway{
		intent:     stagedIntent("pi_1"),
		confirmErr: errors.New("provider down"),
	}
	recorder := &successRecorder{}

	err := NewCardFlow(gateway).Execute(context.Background(), "pm_visa", 2000, recorder.fn)
	require.Error(t, err)
	assert.Equal(t, 0, recorder.calls)
}

func TestCardFlow_SecondExecuteRejected(t *testing.T) {
	gateway := &mockCardGateway{
		intent:    stagedIntent("pi_1"),
		confirmed: succeededIntent("pi_1"),
	}
	recorder := &successRecorder{}
	flow := NewCardFlow(gateway)

	require.NoError(t, flow.Execute(context.Background(), "pm_visa", 2000, recorder.fn))

	err := flow.Execute(context.Background(), "pm_visa", 2000, recorder.fn)
	assert.ErrorIs(t, err, ErrAttemptInProgress)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, 1, gateway.confirms)
}

func TestCardFlow_SuccessCallbackErrorPropagates(t *testing.T) {
	gateway := &mockCardGateway{
		intent:    stagedIntent("pi_1"),
		confirmed: succeededIntent("pi_1"),
	}
	placeErr := errors.New("order placement failed")
	recorder := &successRecorder{err: placeErr}

	err := NewCardFlow(gateway).Execute(context.Background(), "pm_visa", 2000, recorder.fn)
	assert.ErrorIs(t, err, placeErr)
	assert.Equal(t, 1, recorder.calls)
}
