package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/ekurin/go_storefront/internal/analytics"
	"github.com/ekurin/go_storefront/internal/domain"
	"github.com/ekurin/go_storefront/internal/order/repository"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to order")

	// ErrPaymentNotConfirmed rejects placement requests whose payment details
	// do not carry a confirmed provider payment. PlaceOrder never trusts a
	// caller to have validated them.
	ErrPaymentNotConfirmed = errors.New("payment details do not indicate a confirmed payment")

	// ErrOrderAlreadyPlaced marks an idempotent double submit: the payment was
	// captured and persisted by an earlier request. The caller must not retry
	// the payment, and the cart must not be cleared again.
	ErrOrderAlreadyPlaced = errors.New("order already placed for this payment")
)

// CartStore is the slice of the cart the order service touches: the state to
// snapshot, the display total, and a clear after successful persistence.
type CartStore interface {
	Get(ctx context.Context, userID string) (*domain.CartState, error)
	Total(ctx context.Context, userID string) (string, error)
	Clear(ctx context.Context, userID string) error
}

type Service struct {
	repo   repository.OrderRepository
	cart   CartStore
	events analytics.Publisher
}

func NewService(repo repository.OrderRepository, cart CartStore, events analytics.Publisher) *Service {
	return &Service{
		repo:   repo,
		cart:   cart,
		events: events,
	}
}

type PlaceOrderInput struct {
	UserID   string
	Shipping domain.ShippingAddress
	Method   domain.PaymentMethod
	Payment  domain.PaymentDetails
}

// PlaceOrder persists the order for a successfully captured payment and then
// clears the cart. The order stores a snapshot of the cart items; mutations
// after placement never reach it. On any failure the cart is left untouched.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if !in.Payment.Succeeded() || in.Payment.Method != in.Method {
		return nil, ErrPaymentNotConfirmed
	}

	state, err := s.cart.Get(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(state.Items) == 0 {
		return nil, ErrEmptyCart
	}

	total, err := s.cart.Total(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("compute cart total: %w", err)
	}
	totalAmount, err := strconv.ParseFloat(total, 64)
	if err != nil {
		return nil, fmt.Errorf("parse cart total %q: %w", total, err)
	}

	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        in.UserID,
		PaymentMethod: in.Method,
		PaymentID:     in.Payment.ID,
		Shipping:      in.Shipping,
		Items:         snapshotItems(state.Items),
		TotalAmount:   totalAmount,
		Currency:      "USD",
		Status:        domain.OrderStatusConfirmed,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			// The first submission already persisted the order and cleared
			// the cart. Report it distinctly so the caller shows an
			// informative message instead of retrying the charge.
			return nil, ErrOrderAlreadyPlaced
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Clearing only happens after confirmed persistence. A failed clear is
	// logged, not surfaced: the order exists either way.
	if err := s.cart.Clear(ctx, in.UserID); err != nil {
		log.Printf("failed to clear cart for user %s after order %s: %v", in.UserID, order.ID, err)
	}

	s.publish(ctx, analytics.Event{
		Type:    analytics.EventOrderPlaced,
		UserID:  in.UserID,
		OrderID: order.ID.String(),
	})

	return order, nil
}

// History returns the user's orders, newest first. Page numbers start at 1.
func (s *Service) History(ctx context.Context, userID string, page, limit int) ([]*domain.Order, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListOrdersByUserID(ctx, userID, limit, (page-1)*limit)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// snapshotItems copies the cart lines into order items. The copy is what makes
// the order immune to later cart mutations.
func snapshotItems(items []domain.CartLineItem) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	for i, item := range items {
		out[i] = domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}
	return out
}

func (s *Service) publish(ctx context.Context, event analytics.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("analytics publish error: %v \n", err)
	}
}
