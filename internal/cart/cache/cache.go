package cache

import (
	"context"
	"errors"

	"github.com/ekurin/go_storefront/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.CartState, error)
	Set(ctx context.Context, userID string, cart *domain.CartState) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
