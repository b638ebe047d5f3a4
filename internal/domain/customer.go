package domain

import "time"

// Customer is a merchant's customer record as stored by the emulator.
type Customer struct {
	ID             string
	MerchantID     string
	FullName       *string
	BusinessName   *string
	Email          string
	Phone          *string
	PaymentMethods []PaymentMethod
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PaymentMethod is a method saved against a customer when one of their
// orders is confirmed with it.
type PaymentMethod struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	SavedAt time.Time `json:"saved_at"`
}
