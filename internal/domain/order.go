package domain

import (
	"time"

	"merchant-client/pkg/merchant"
	"merchant-client/pkg/money"
)

// CaptureMode decides whether a confirmed order is captured immediately.
type CaptureMode string

const (
	CaptureAutomatic CaptureMode = "AUTOMATIC"
	CaptureManual    CaptureMode = "MANUAL"
)

// Order is a payment order as stored by the emulator. Amount is the
// authorised order amount; Outstanding is what remains to be captured.
type Order struct {
	ID                  string
	PublicID            string
	MerchantID          string
	Type                string
	State               merchant.OrderState
	Amount              money.Amount
	Currency            string
	SettlementCurrency  string
	Outstanding         money.Amount
	Refunded            money.Amount
	Email               *string
	Description         *string
	CaptureMode         CaptureMode
	MerchantOrderExtRef *string
	CustomerID          *string
	Metadata            map[string]string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	CompletedAt         *time.Time
}

// OrderFilter narrows order listings. Zero values do not filter.
type OrderFilter struct {
	CreatedBefore       time.Time
	FromCreatedDate     time.Time
	ToCreatedDate       time.Time
	Email               string
	MerchantOrderExtRef string
	Limit               int
}

// Matches reports whether o passes every set criterion of f.
func (f OrderFilter) Matches(o Order) bool {
	if !f.CreatedBefore.IsZero() && !o.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	if !f.FromCreatedDate.IsZero() && o.CreatedAt.Before(f.FromCreatedDate) {
		return false
	}
	if !f.ToCreatedDate.IsZero() && o.CreatedAt.After(f.ToCreatedDate) {
		return false
	}
	if f.Email != "" && (o.Email == nil || *o.Email != f.Email) {
		return false
	}
	if f.MerchantOrderExtRef != "" && (o.MerchantOrderExtRef == nil || *o.MerchantOrderExtRef != f.MerchantOrderExtRef) {
		return false
	}
	return true
}
