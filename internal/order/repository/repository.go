package repository

import (
	"context"
	"errors"

	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence.
// Consumers define this interface, not the Postgres implementation.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)
}

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicatePayment is returned when an order for the same provider
	// payment id already exists. This is the idempotency backstop for
	// double-submitted checkouts.
	ErrDuplicatePayment = errors.New("order already exists for this payment")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}
