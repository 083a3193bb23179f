package domain

// IntentStatus mirrors the card provider's payment-intent lifecycle. An intent
// must be in requires_confirmation before confirmation is requested; only
// succeeded is a valid terminal success.
type IntentStatus string

const (
	IntentStatusRequiresConfirmation IntentStatus = "requires_confirmation"
	IntentStatusProcessing           IntentStatus = "processing"
	IntentStatusSucceeded            IntentStatus = "succeeded"
	IntentStatusFailed               IntentStatus = "failed"
	IntentStatusCanceled             IntentStatus = "canceled"
)

type PaymentIntent struct {
	ID              string       `json:"id"`
	Status          IntentStatus `json:"status"`
	Amount          int64        `json:"amount"`
	PaymentMethodID string       `json:"payment_method_id"`
	LastError       string       `json:"last_error,omitempty"`
}

// PayPalOrderStatus mirrors the provider order lifecycle. Capture is only
// meaningful once; COMPLETED is the single success status.
type PayPalOrderStatus string

const (
	PayPalOrderCreated   PayPalOrderStatus = "CREATED"
	PayPalOrderApproved  PayPalOrderStatus = "APPROVED"
	PayPalOrderCompleted PayPalOrderStatus = "COMPLETED"
	PayPalOrderVoided    PayPalOrderStatus = "VOIDED"
)

type CaptureResult struct {
	OrderID   string            `json:"order_id"`
	CaptureID string            `json:"capture_id"`
	Status    PayPalOrderStatus `json:"status"`
}

// PaymentDetails is the provider-agnostic payload both capture flows converge
// on. Order placement re-validates it before trusting it.
type PaymentDetails struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Method PaymentMethod `json:"method"`
}

// Succeeded reports whether the details carry a confirmed payment for their
// provider.
func (p PaymentDetails) Succeeded() bool {
	if p.ID == "" {
		return false
	}
	switch p.Method {
	case PaymentMethodPayPal:
		return p.Status == string(PayPalOrderCompleted)
	case PaymentMethodCard:
		return p.Status == string(IntentStatusSucceeded)
	}
	return false
}
