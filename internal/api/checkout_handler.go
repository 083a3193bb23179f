package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ekurin/go_storefront/internal/checkout"
	"github.com/ekurin/go_storefront/internal/domain"
)

type CheckoutHandler struct {
	sessions    *checkout.SessionManager
	coordinator *checkout.Coordinator
	timeout     time.Duration
}

func NewCheckoutHandler(sessions *checkout.SessionManager, coordinator *checkout.Coordinator, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions:    sessions,
		coordinator: coordinator,
		timeout:     timeout,
	}
}

type SessionResponseDTO struct {
	SessionID     string                 `json:"session_id"`
	Step          int                    `json:"step"`
	StepName      string                 `json:"step_name"`
	ShippingData  domain.ShippingAddress `json:"shipping_data"`
	PaymentMethod string                 `json:"payment_method"`
}

type NextStepRequestDTO struct {
	// Shipping is read at the shipping step, PaymentMethod at the method
	// selection step.
	Shipping      *domain.ShippingAddress `json:"shipping,omitempty"`
	PaymentMethod string                  `json:"payment_method,omitempty"`
}

type PayRequestDTO struct {
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	session := h.sessions.Begin(userID)
	respondJSON(w, http.StatusCreated, toSessionDTO(session))
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	session, ok := h.sessions.Get(userID)
	if !ok {
		respondError(w, http.StatusNotFound, "no_active_checkout", "no checkout in progress")
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// POST /api/v1/checkout/next
func (h *CheckoutHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	session, ok := h.sessions.Get(userID)
	if !ok {
		respondError(w, http.StatusNotFound, "no_active_checkout", "no checkout in progress")
		return
	}

	var req NextStepRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var data any
	switch session.Step {
	case checkout.StepShipping:
		if req.Shipping == nil {
			respondError(w, http.StatusBadRequest, "missing_shipping", "shipping data is required at this step")
			return
		}
		data = *req.Shipping
	case checkout.StepPaymentMethod:
		data = domain.PaymentMethod(req.PaymentMethod)
	}

	if err := session.NextStep(data); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// POST /api/v1/checkout/prev
func (h *CheckoutHandler) PrevStep(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	session, ok := h.sessions.Get(userID)
	if !ok {
		respondError(w, http.StatusNotFound, "no_active_checkout", "no checkout in progress")
		return
	}

	session.PrevStep()
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// POST /api/v1/checkout/pay runs the whole capture protocol server-side for
// the session's chosen method and places the order on success.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	session, ok := h.sessions.Get(userID)
	if !ok {
		respondError(w, http.StatusNotFound, "no_active_checkout", "no checkout in progress")
		return
	}

	var req PayRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	placed, err := h.coordinator.Pay(ctx, session, checkout.PayRequest{
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		// The session stays at the review step so the user can retry.
		handleServiceError(w, err)
		return
	}

	h.sessions.End(userID)
	respondJSON(w, http.StatusCreated, toOrderDTO(placed))
}

func toSessionDTO(s *checkout.Session) SessionResponseDTO {
	return SessionResponseDTO{
		SessionID:     s.ID,
		Step:          int(s.Step),
		StepName:      s.Step.String(),
		ShippingData:  s.Shipping,
		PaymentMethod: string(s.Method),
	}
}
