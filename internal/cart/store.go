package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ekurin/go_storefront/internal/analytics"
	"github.com/ekurin/go_storefront/internal/cart/cache"
	"github.com/ekurin/go_storefront/internal/cart/repository"
	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// StockProvider reports current availability for a product. CheckQuantities
// refreshes each line item against it before gating checkout.
type StockProvider interface {
	AvailableQuantity(ctx context.Context, productID int64) (int, error)
}

// Store is the single source of truth for shopping carts. Every mutation
// replaces the whole persisted state, so concurrent readers never observe a
// cart mid-update. Quantity validation is reflected through per-item
// MaxQuantityError flags rather than failed operations.
type Store struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	stock  StockProvider
	events analytics.Publisher
	sfg    singleflight.Group // Prevents cache stampede
	mu     sync.Mutex         // Serializes read-modify-write cycles
}

func NewStore(repo repository.CartRepository, cache cache.CartCache, stock StockProvider, events analytics.Publisher) *Store {
	return &Store{
		repo:   repo,
		cache:  cache,
		stock:  stock,
		events: events,
	}
}

// Get returns the user's cart, read through the cache. A missing or corrupt
// stored cart loads as an empty one; this method never fails the session over
// bad persisted data.
func (s *Store) Get(ctx context.Context, userID string) (*domain.CartState, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart = s.load(ctx, userID)

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), userID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.CartState), nil
}

// AddToCart inserts the product as a new line item with quantity 1, or
// increments the quantity of an existing one. No quantity cap is enforced
// here; stock violations surface later through CheckQuantities. The
// add_to_cart_new analytics event fires only for new insertions.
func (s *Store) AddToCart(ctx context.Context, userID string, product domain.Product) (*domain.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, userID)

	isNew := true
	for i := range state.Items {
		if state.Items[i].ProductID == product.ID {
			state.Items[i].Quantity++
			isNew = false
			break
		}
	}
	if isNew {
		state.Items = append(state.Items, domain.CartLineItem{
			ProductID:         product.ID,
			Name:              product.Name,
			Price:             product.Price,
			Quantity:          1,
			AvailableQuantity: product.Stock,
			MaxQuantityError:  false,
		})
	}
	state.HasErrors = anyItemInError(state.Items)

	if err := s.persist(ctx, state); err != nil {
		return nil, err
	}

	if isNew {
		s.publish(ctx, analytics.Event{
			Type:      analytics.EventAddToCartNew,
			UserID:    userID,
			ProductID: product.ID,
		})
	}

	return state, nil
}

// RemoveFromCart removes the matching line item unconditionally. An absent
// productID is a no-op, not an error.
func (s *Store) RemoveFromCart(ctx context.Context, userID string, productID int64) (*domain.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, userID)

	found := false
	for i, item := range state.Items {
		if item.ProductID == productID {
			state.Items = append(state.Items[:i], state.Items[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return state, nil
	}
	state.HasErrors = anyItemInError(state.Items)

	if err := s.persist(ctx, state); err != nil {
		return nil, err
	}

	s.publish(ctx, analytics.Event{
		Type:      analytics.EventRemoveFromCart,
		UserID:    userID,
		ProductID: productID,
	})

	return state, nil
}

// UpdateQuantity sets the quantity of the matching line item. The zero and
// negative guard lives at the HTTP boundary; the store performs a plain set.
// An absent productID is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) (*domain.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, userID)

	found := false
	for i := range state.Items {
		if state.Items[i].ProductID == productID {
			state.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return state, nil
	}

	if err := s.persist(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear resets the cart to its empty state.
func (s *Store) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteCart(ctx, userID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v \n", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// Total returns the sum of price*quantity over all items, rounded to two
// decimal places for display.
func (s *Store) Total(ctx context.Context, userID string) (string, error) {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	total := decimal.Zero
	for _, item := range state.Items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.StringFixed(2), nil
}

// CheckQuantities recomputes each item's MaxQuantityError against current
// availability, commits the flags back to storage, and reports whether any
// item is in error. This is the gate before checkout may proceed. An empty
// cart is never in error.
func (s *Store) CheckQuantities(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, userID)
	if len(state.Items) == 0 {
		return false, nil
	}

	for i := range state.Items {
		if s.stock != nil {
			available, err := s.stock.AvailableQuantity(ctx, state.Items[i].ProductID)
			if err != nil {
				// Keep the availability captured at add time.
				log.Printf("stock lookup error for product %d: %v \n", state.Items[i].ProductID, err)
			} else {
				state.Items[i].AvailableQuantity = available
			}
		}
		state.Items[i].MaxQuantityError = state.Items[i].Quantity > state.Items[i].AvailableQuantity
	}
	state.HasErrors = anyItemInError(state.Items)

	if err := s.persist(ctx, state); err != nil {
		return false, err
	}

	return state.HasErrors, nil
}

func (s *Store) load(ctx context.Context, userID string) *domain.CartState {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		// Not-found starts a fresh cart; corrupt stored data fails soft to an
		// empty one rather than taking the session down.
		if !errors.Is(err, repository.ErrCartNotFound) {
			log.Printf("cart load failed, starting empty: %v \n", err)
		}
		return &domain.CartState{
			UserID:    userID,
			Items:     []domain.CartLineItem{},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
	}
	return cart
}

func (s *Store) persist(ctx context.Context, state *domain.CartState) error {
	if err := s.repo.UpsertCart(ctx, state); err != nil {
		log.Printf("repo upsert cart error: %v \n", err)
		return err
	}
	s.invalidateCache(state.UserID)
	return nil
}

func (s *Store) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v \n", err)
	}
}

func (s *Store) publish(ctx context.Context, event analytics.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("analytics publish error: %v \n", err)
	}
}

func anyItemInError(items []domain.CartLineItem) bool {
	for _, item := range items {
		if item.MaxQuantityError {
			return true
		}
	}
	return false
}
