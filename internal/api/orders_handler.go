package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/ekurin/go_storefront/internal/order"
	"github.com/ekurin/go_storefront/internal/payment"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrdersHandler exposes the payment capture protocol step by step for clients
// that drive the provider widgets themselves, plus order placement and
// history. The field names on these endpoints follow the payment providers'
// conventions rather than the rest of the API.
type OrdersHandler struct {
	orders  *order.Service
	paypal  payment.PayPalGateway
	card    payment.CardGateway
	timeout time.Duration
}

func NewOrdersHandler(orders *order.Service, paypal payment.PayPalGateway, card payment.CardGateway, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		paypal:  paypal,
		card:    card,
		timeout: timeout,
	}
}

type CreateIntentRequestDTO struct {
	PaymentMethodID string `json:"paymentMethodId"`
	Amount          int64  `json:"amount"`
}

type ConfirmIntentRequestDTO struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

type PaymentIntentResponseDTO struct {
	PaymentIntent PaymentIntentDTO `json:"paymentIntent"`
}

type PaymentIntentDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

type PayPalActionRequestDTO struct {
	Action  string `json:"action"`
	Total   string `json:"total,omitempty"`
	OrderID string `json:"orderID,omitempty"`
}

type PlaceOrderRequestDTO struct {
	Shipping       domain.ShippingAddress `json:"shipping"`
	PaymentDetails PaymentDetailsDTO      `json:"payment_details"`
}

type PaymentDetailsDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type OrderResponseDTO struct {
	OrderID       string                 `json:"order_id"`
	UserID        string                 `json:"user_id"`
	PaymentMethod string                 `json:"payment_method"`
	PaymentID     string                 `json:"payment_id"`
	Shipping      domain.ShippingAddress `json:"shipping"`
	Items         []OrderItemDTO         `json:"items"`
	TotalAmount   float64                `json:"total_amount"`
	Currency      string                 `json:"currency"`
	Status        string                 `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
}

type OrderItemDTO struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// POST /orders/create-payment-intent
func (h *OrdersHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateIntentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentMethodID == "" {
		respondError(w, http.StatusBadRequest, "missing_payment_method", "paymentMethodId is required")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount must be a positive number of cents")
		return
	}

	intent, err := payment.NewCardFlow(h.card).CreateIntent(ctx, req.PaymentMethodID, req.Amount)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, PaymentIntentResponseDTO{
		PaymentIntent: toIntentDTO(intent),
	})
}

// POST /orders/confirm-payment-intent
func (h *OrdersHandler) ConfirmPaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ConfirmIntentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentIntentID == "" {
		respondError(w, http.StatusBadRequest, "missing_payment_intent", "paymentIntentId is required")
		return
	}

	intent, err := payment.NewCardFlow(h.card).ConfirmIntent(ctx, req.PaymentIntentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PaymentIntentResponseDTO{
		PaymentIntent: toIntentDTO(intent),
	})
}

// PayPalAction multiplexes POST /orders/ on the action field: "create" stages
// a provider order for the given total, "capture" finalizes an approved one.
func (h *OrdersHandler) PayPalAction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PayPalActionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	flow := payment.NewPayPalFlow(h.paypal)

	switch req.Action {
	case "create":
		if req.Total == "" {
			respondError(w, http.StatusBadRequest, "missing_total", "total is required for action create")
			return
		}
		orderID, err := flow.CreateOrder(ctx, req.Total)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]string{"id": orderID})

	case "capture":
		if req.OrderID == "" {
			respondError(w, http.StatusBadRequest, "missing_order_id", "orderID is required for action capture")
			return
		}
		result, err := flow.CaptureOrder(ctx, req.OrderID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{
			"id":      result.OrderID,
			"capture": result.CaptureID,
			"status":  string(result.Status),
		})

	default:
		respondError(w, http.StatusBadRequest, "invalid_action", "action must be create or capture")
	}
}

// POST /orders/paypal-order
func (h *OrdersHandler) PlacePayPalOrder(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, domain.PaymentMethodPayPal)
}

// POST /orders/credit-card-order
func (h *OrdersHandler) PlaceCardOrder(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, domain.PaymentMethodCard)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request, method domain.PaymentMethod) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := req.Shipping.Validate(); err != nil {
		handleServiceError(w, err)
		return
	}

	placed, err := h.orders.PlaceOrder(ctx, order.PlaceOrderInput{
		UserID:   userID,
		Shipping: req.Shipping,
		Method:   method,
		Payment: domain.PaymentDetails{
			ID:     req.PaymentDetails.ID,
			Status: req.PaymentDetails.Status,
			Method: method,
		},
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderDTO(placed))
}

// GET /orders/history/{user_id}
func (h *OrdersHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user_id is required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := h.orders.History(ctx, userID, page, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	dtos := make([]OrderResponseDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"orders": dtos,
		"count":  len(dtos),
	})
}

// GET /orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	o, err := h.orders.Get(ctx, orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(o))
}

func toIntentDTO(intent *domain.PaymentIntent) PaymentIntentDTO {
	return PaymentIntentDTO{
		ID:     intent.ID,
		Status: string(intent.Status),
		Amount: intent.Amount,
	}
}

func toOrderDTO(o *domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}

	return OrderResponseDTO{
		OrderID:       o.ID.String(),
		UserID:        o.UserID,
		PaymentMethod: string(o.PaymentMethod),
		PaymentID:     o.PaymentID,
		Shipping:      o.Shipping,
		Items:         items,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}
