package domain

import "errors"

type PaymentMethod string

const (
	PaymentMethodPayPal PaymentMethod = "paypal"
	PaymentMethodCard   PaymentMethod = "credit-card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodPayPal || m == PaymentMethodCard
}

// ShippingAddress is the data collected by the shipping step. All fields are
// required for submission.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

var ErrIncompleteAddress = errors.New("all shipping address fields are required")

func (a ShippingAddress) Validate() error {
	if a.FullName == "" || a.Address == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return ErrIncompleteAddress
	}
	return nil
}
