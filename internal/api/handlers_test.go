package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ekurin/go_storefront/internal/cart"
	"github.com/ekurin/go_storefront/internal/cart/cache"
	cartrepo "github.com/ekurin/go_storefront/internal/cart/repository"
	"github.com/ekurin/go_storefront/internal/catalog"
	"github.com/ekurin/go_storefront/internal/checkout"
	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/ekurin/go_storefront/internal/order"
	orderrepo "github.com/ekurin/go_storefront/internal/order/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeCartRepo struct {
	m    sync.RWMutex
	cart *domain.CartState
}

func (f *fakeCartRepo) GetCart(context.Context, string) (*domain.CartState, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	if f.cart == nil {
		return nil, cartrepo.ErrCartNotFound
	}
	return f.cart, nil
}

func (f *fakeCartRepo) UpsertCart(_ context.Context, c *domain.CartState) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.cart = c
	return nil
}

func (f *fakeCartRepo) DeleteCart(context.Context, string) error {
	f.m.Lock()
	defer f.m.Unlock()
	if f.cart == nil {
		return cartrepo.ErrCartNotFound
	}
	f.cart = nil
	return nil
}

type fakeCache struct {
	m    sync.RWMutex
	cart *domain.CartState
}

func (f *fakeCache) Get(context.Context, string) (*domain.CartState, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	if f.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return f.cart, nil
}

// Set is a no-op so the store's background cache fill cannot race the
// invalidation that follows a mutation.
func (f *fakeCache) Set(context.Context, string, *domain.CartState) error {
	return nil
}

func (f *fakeCache) Delete(context.Context, string) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.cart = nil
	return nil
}

type fakeOrderRepo struct {
	m      sync.Mutex
	orders []*domain.Order
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	f.m.Lock()
	defer f.m.Unlock()
	for _, existing := range f.orders {
		if existing.PaymentID == o.PaymentID {
			return orderrepo.ErrDuplicatePayment
		}
	}
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	f.m.Lock()
	defer f.m.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, orderrepo.ErrOrderNotFound
}

func (f *fakeOrderRepo) ListOrdersByUserID(_ context.Context, userID string, _, _ int) ([]*domain.Order, error) {
	f.m.Lock()
	defer f.m.Unlock()
	var out []*domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakePayPalGateway struct {
	m          sync.Mutex
	orderID    string
	captureErr error
	status     domain.PayPalOrderStatus
}

func (f *fakePayPalGateway) CreateOrder(context.Context, string) (string, error) {
	f.m.Lock()
	defer f.m.Unlock()
	return f.orderID, nil
}

func (f *fakePayPalGateway) CaptureOrder(_ context.Context, orderID string) (*domain.CaptureResult, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	status := f.status
	if status == "" {
		status = domain.PayPalOrderCompleted
	}
	return &domain.CaptureResult{OrderID: orderID, CaptureID: "cap_1", Status: status}, nil
}

type fakeCardGateway struct {
	m             sync.Mutex
	createStatus  domain.IntentStatus
	confirmStatus domain.IntentStatus
	lastError     string
}

func (f *fakeCardGateway) CreateIntent(_ context.Context, paymentMethodID string, amount int64) (*domain.PaymentIntent, error) {
	f.m.Lock()
	defer f.m.Unlock()
	status := f.createStatus
	if status == "" {
		status = domain.IntentStatusRequiresConfirmation
	}
	return &domain.PaymentIntent{
		ID:              "pi_1",
		Status:          status,
		Amount:          amount,
		PaymentMethodID: paymentMethodID,
	}, nil
}

func (f *fakeCardGateway) ConfirmIntent(_ context.Context, intentID string) (*domain.PaymentIntent, error) {
	f.m.Lock()
	defer f.m.Unlock()
	status := f.confirmStatus
	if status == "" {
		status = domain.IntentStatusSucceeded
	}
	return &domain.PaymentIntent{ID: intentID, Status: status, LastError: f.lastError}, nil
}

type testApp struct {
	router   chi.Router
	store    *cart.Store
	catalog  *catalog.MemoryStore
	cartRepo *fakeCartRepo
	orders   *fakeOrderRepo
	paypal   *fakePayPalGateway
	card     *fakeCardGateway
	sessions *checkout.SessionManager
}

func newTestApp() *testApp {
	cartRepo := &fakeCartRepo{}
	products := catalog.NewMemoryStore()
	store := cart.NewStore(cartRepo, &fakeCache{}, products, nil)

	orders := &fakeOrderRepo{}
	orderService := order.NewService(orders, store, nil)

	paypal := &fakePayPalGateway{orderID: "pp_order"}
	card := &fakeCardGateway{}
	sessions := checkout.NewSessionManager()
	coordinator := checkout.NewCoordinator(store, orderService, paypal, card)

	timeout := 5 * time.Second
	cartHandler := NewCartHandler(store, products, timeout)
	checkoutHandler := NewCheckoutHandler(sessions, coordinator, timeout)
	ordersHandler := NewOrdersHandler(orderService, paypal, card, timeout)

	r := chi.NewRouter()
	r.Use(HeaderAuthMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/check-quantities", cartHandler.CheckQuantities)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Begin)
			r.Get("/", checkoutHandler.GetSession)
			r.Post("/next", checkoutHandler.NextStep)
			r.Post("/prev", checkoutHandler.PrevStep)
			r.Post("/pay", checkoutHandler.Pay)
		})
	})
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", ordersHandler.PayPalAction)
		r.Post("/create-payment-intent", ordersHandler.CreatePaymentIntent)
		r.Post("/confirm-payment-intent", ordersHandler.ConfirmPaymentIntent)
		r.Post("/paypal-order", ordersHandler.PlacePayPalOrder)
		r.Post("/credit-card-order", ordersHandler.PlaceCardOrder)
		r.Get("/history/{user_id}", ordersHandler.History)
		r.Get("/{order_id}", ordersHandler.GetOrder)
	})

	return &testApp{
		router:   r,
		store:    store,
		catalog:  products,
		cartRepo: cartRepo,
		orders:   orders,
		paypal:   paypal,
		card:     card,
		sessions: sessions,
	}
}

func (a *testApp) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	a.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[ErrorResponse](t, recorder).Code
}

func mustStatus(t *testing.T, recorder *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, recorder.Code, "body: %s", recorder.Body.String())
}

func shippingBody() map[string]any {
	return map[string]any{
		"full_name":   "Ada Lovelace",
		"address":     "12 Analytical Way",
		"city":        "London",
		"postal_code": "SW1A 1AA",
		"country":     "GB",
	}
}
