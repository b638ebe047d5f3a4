package domain

import "time"

// Merchant is an account that owns customers, orders and API keys.
type Merchant struct {
	ID        string
	Key       string
	Name      string
	Live      bool
	CreatedAt time.Time
}

// APIKey authenticates requests on behalf of a merchant.
type APIKey struct {
	Key        string
	MerchantID string
	CreatedAt  time.Time
}
