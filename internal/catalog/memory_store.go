package catalog

import (
	"context"
	"sync"

	"github.com/ekurin/go_storefront/internal/domain"
)

// MemoryStore implements Catalog with in-memory storage.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]domain.Product),
	}
}

func (s *MemoryStore) GetProduct(_ context.Context, productID int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[productID]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryStore) AvailableQuantity(_ context.Context, productID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[productID]
	if !exists {
		return 0, ErrProductNotFound
	}
	return p.Stock, nil
}

func (s *MemoryStore) SetProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SetStock sets the stock level for an existing product. Unknown products are
// created with only the stock field populated.
func (s *MemoryStore) SetStock(productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.products[productID]
	p.ID = productID
	p.Stock = quantity
	s.products[productID] = p
}
