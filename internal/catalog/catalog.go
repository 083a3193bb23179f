package catalog

import (
	"context"
	"errors"

	"github.com/ekurin/go_storefront/internal/domain"
)

// Catalog is the external product collaborator the checkout core needs:
// product lookup for add-to-cart and live stock for the quantity gate.
type Catalog interface {
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	AvailableQuantity(ctx context.Context, productID int64) (int, error)
}

var ErrProductNotFound = errors.New("product not found")
