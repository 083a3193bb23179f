package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

type OrderItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is the final persisted artifact of a checkout. Items are a snapshot
// of the cart at placement time; later cart mutations never reach it.
// PaymentID is the provider capture/intent id and is unique per order.
type Order struct {
	ID            uuid.UUID
	UserID        string
	PaymentMethod PaymentMethod
	PaymentID     string
	Shipping      ShippingAddress
	Items         []OrderItem
	TotalAmount   float64
	Currency      string
	Status        OrderStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
