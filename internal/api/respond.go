package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ekurin/go_storefront/internal/catalog"
	"github.com/ekurin/go_storefront/internal/checkout"
	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/ekurin/go_storefront/internal/order"
	"github.com/ekurin/go_storefront/internal/order/repository"
	"github.com/ekurin/go_storefront/internal/payment"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleServiceError maps domain errors to HTTP statuses. The distinct cases
// matter to the client: already_captured must not look like a retryable
// failure, and cart_has_errors must not look like a payment refusal.
func handleServiceError(w http.ResponseWriter, err error) {
	var paymentErr *payment.Error

	switch {
	case errors.Is(err, payment.ErrAlreadyCaptured), errors.Is(err, order.ErrOrderAlreadyPlaced):
		respondError(w, http.StatusConflict, "already_captured", "this order was already captured; no additional charge was made")
	case errors.Is(err, payment.ErrUnexpectedIntentState):
		respondError(w, http.StatusBadGateway, "unexpected_intent_state", err.Error())
	case errors.Is(err, payment.ErrAttemptInProgress):
		respondError(w, http.StatusConflict, "attempt_in_progress", err.Error())
	case errors.As(err, &paymentErr):
		respondError(w, http.StatusPaymentRequired, "payment_failed", paymentErr.Error())
	case errors.Is(err, checkout.ErrCartHasErrors):
		respondError(w, http.StatusConflict, "cart_has_errors", err.Error())
	case errors.Is(err, checkout.ErrNotAtReview), errors.Is(err, checkout.ErrStepTerminal), errors.Is(err, checkout.ErrInvalidStepData):
		respondError(w, http.StatusConflict, "invalid_checkout_state", err.Error())
	case errors.Is(err, checkout.ErrStaleAttempt):
		respondError(w, http.StatusConflict, "stale_attempt", err.Error())
	case errors.Is(err, domain.ErrIncompleteAddress):
		respondError(w, http.StatusBadRequest, "invalid_shipping_address", err.Error())
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, order.ErrPaymentNotConfirmed):
		respondError(w, http.StatusBadRequest, "payment_not_confirmed", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
