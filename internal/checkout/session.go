package checkout

import (
	"errors"
	"time"

	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/google/uuid"
)

// Step is one of the three checkout steps. The sequence is strictly linear:
// forward one step at a time via NextStep, backward via PrevStep.
type Step int

const (
	StepShipping Step = iota + 1
	StepPaymentMethod
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "SHIPPING"
	case StepPaymentMethod:
		return "PAYMENT_METHOD"
	case StepReview:
		return "REVIEW"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrInvalidStepData = errors.New("data does not match the current checkout step")

	// ErrStepTerminal is returned when NextStep is called at the review step.
	// The review step exits through payment success, never through NextStep.
	ErrStepTerminal = errors.New("review step is terminal")
)

// Session is the ephemeral state of one checkout. Data for a step is only
// populated once that step completes; going back never discards it.
type Session struct {
	ID        string
	UserID    string
	Step      Step
	Shipping  domain.ShippingAddress
	Method    domain.PaymentMethod
	CreatedAt time.Time
}

func NewSession(userID string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Step:      StepShipping,
		CreatedAt: time.Now(),
	}
}

// NextStep advances the session one step, storing the data collected by the
// step being completed: a domain.ShippingAddress at the shipping step, a
// domain.PaymentMethod at the method step.
func (s *Session) NextStep(data any) error {
	switch s.Step {
	case StepShipping:
		addr, ok := data.(domain.ShippingAddress)
		if !ok {
			return ErrInvalidStepData
		}
		if err := addr.Validate(); err != nil {
			return err
		}
		s.Shipping = addr
	case StepPaymentMethod:
		method, ok := data.(domain.PaymentMethod)
		if !ok || !method.Valid() {
			return ErrInvalidStepData
		}
		s.Method = method
	default:
		return ErrStepTerminal
	}

	s.Step++
	return nil
}

// PrevStep moves one step back. At the shipping step it is a no-op.
func (s *Session) PrevStep() {
	if s.Step > StepShipping {
		s.Step--
	}
}
