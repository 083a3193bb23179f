package repository

import (
	"context"
	"errors"

	"github.com/ekurin/go_storefront/internal/domain"
)

// CartRepository is the durable cart store. Mutations always write the whole
// state; there are no per-field updates, so readers never observe a cart
// mid-mutation.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.CartState, error)
	UpsertCart(ctx context.Context, cart *domain.CartState) error
	DeleteCart(ctx context.Context, userID string) error
}

var (
	ErrCartNotFound = errors.New("cart not found")

	// ErrCartCorrupt marks stored data that no longer decodes. Callers fail
	// soft to an empty cart instead of surfacing it to the user.
	ErrCartCorrupt = errors.New("stored cart data is corrupt")
)
