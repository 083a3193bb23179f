package domain

import "time"

// CartLineItem is one product entry in a cart. Items are unique by ProductID
// and only mutated through the cart store.
type CartLineItem struct {
	ProductID         int64   `bson:"product_id" json:"product_id"`
	Name              string  `bson:"name" json:"name"`
	Price             float64 `bson:"price" json:"price"`
	Quantity          int     `bson:"quantity" json:"quantity"`
	AvailableQuantity int     `bson:"available_quantity" json:"available_quantity"`
	MaxQuantityError  bool    `bson:"max_quantity_error" json:"max_quantity_error"`
}

// CartState is the whole cart for one user. HasErrors is true iff any item's
// quantity exceeds its available quantity. Items keep insertion order.
type CartState struct {
	UserID    string         `bson:"user_id" json:"user_id"`
	Items     []CartLineItem `bson:"items" json:"items"`
	HasErrors bool           `bson:"has_errors" json:"has_errors"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updated_at"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}
