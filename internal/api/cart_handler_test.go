package api

import (
	"net/http"
	"testing"

	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(app *testApp, id int64, price float64, stock int) {
	app.catalog.SetProduct(domain.Product{ID: id, Name: "Product", Price: price, Stock: stock})
}

func TestCartAPI_AddAndGet(t *testing.T) {
	app := newTestApp()
	seedProduct(app, 1, 10.00, 5)

	rec := app.do(t, http.MethodPost, "/api/v1/cart/items", "user1", map[string]any{"product_id": 1})
	mustStatus(t, rec, http.StatusCreated)

	cart := decodeBody[CartResponseDTO](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, "10.00", cart.Total)

	rec = app.do(t, http.MethodGet, "/api/v1/cart/", "user1", nil)
	mustStatus(t, rec, http.StatusOK)
	cart = decodeBody[CartResponseDTO](t, rec)
	require.Len(t, cart.Items, 1)
}

func TestCartAPI_AddSameProductTwice(t *testing.T) {
	app := newTestApp()
	seedProduct(app, 1, 10.00, 5)

	app.do(t, http.MethodPost, "/api/v1/cart/items", "user1", map[string]any{"product_id": 1})
	rec := app.do(t, http.MethodPost, "/api/v1/cart/items", "user1", map[string]any{"product_id": 1})
	mustStatus(t, rec, http.StatusCreated)

	cart := decodeBody[CartResponseDTO](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "20.00", cart.Total)
}

func TestCartAPI_AddUnknownProduct(t *testing.T) {
	app := newTestApp()

	rec := app.do(t, http.MethodPost, "/api/v1/cart/items", "user1", map[string]any{"product_id": 42})
	mustStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "product_not_found", errorCode(t, rec))
}

func TestCartAPI_Unauthorized(t *testing.T) {
	app := newTestApp()

	rec := app.do(t, http.MethodGet, "/api/v1/cart/", "", nil)
	mustStatus(t, rec, http.StatusUnauthorized)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestCartAPI_UpdateQuantityBounds(t *testing.T) {
	app := newTestApp()
	seedProduct(app, 1, 10.00, 5)
	app.do(t, http.MethodPost, "/api/v1/cart/items", "user1", map[string]any{"product_id": 1})

	// The boundary guard rejects before the store is touched.
	rec := app.do(t, http.MethodPut, "/api/v1/cart/items/1", "user1", map[string]any{"quantity": 0})
	mustStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "invalid_quantity", errorCode(t, rec))

	rec = app.do(t, http.MethodPut, "/api/v1/cart/items/1", "user1", map[string]any{"quantity": 100})
	mustStatus(t, rec, http.StatusBadRequest)

	rec = app.do(t, http.MethodPut, "/api/v1/cart/items/1", "user1", map[string]any{"quantity": 99})
	mustStatus(t, rec, http.StatusOK)
	cart := decodeBody[CartResponseDTO](t, rec)
	assert.Equal(t, 99, cart.Items[0].Quantity)
}

func TestCartAPI_RemoveItem(t *testing.T) {
	app := newTestApp()
	seedProduct(app, 1, 10.00, 5)
	app.do(t, http.MethodPost, "/api/v1/cart/items", "user1", map[string]any{"product_id": 1})

	rec := app.do(t, http.MethodDelete, "/api/v1/cart/items/1", "user1", nil)
	mustStatus(t, rec, http.StatusOK)
	cart := decodeBody[CartResponseDTO](t, rec)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.Total)
}

func TestCartAPI_ClearCart(t *testing.T) {
	app := newTestApp()
	seedProduct(app, 1, 10.00, 5)
	app.do(t, http.MethodPost, "/api/v1/cart/items", "user1", map[string]any{"product_id": 1})

	rec := app.do(t, http.MethodDelete, "/api/v1/cart/", "user1", nil)
	mustStatus(t, rec, http.StatusOK)

	rec = app.do(t, http.MethodGet, "/api/v1/cart/", "user1", nil)
	cart := decodeBody[CartResponseDTO](t, rec)
	assert.Empty(t, cart.Items)
}

func TestCartAPI_CheckQuantities(t *testing.T) {
	app := newTestApp()
	seedProduct(app, 1, 10.00, 1)
	app.do(t, http.MethodPost, "/api/v1/cart/items", "user1", map[string]any{"product_id": 1})
	app.do(t, http.MethodPut, "/api/v1/cart/items/1", "user1", map[string]any{"quantity": 2})

	rec := app.do(t, http.MethodPost, "/api/v1/cart/check-quantities", "user1", nil)
	mustStatus(t, rec, http.StatusOK)

	body := decodeBody[struct {
		HasErrors bool                  `json:"has_errors"`
		Items     []domain.CartLineItem `json:"items"`
	}](t, rec)
	assert.True(t, body.HasErrors)
	require.Len(t, body.Items, 1)
	assert.True(t, body.Items[0].MaxQuantityError)
}
