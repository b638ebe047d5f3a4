package cli

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"merchant-client/pkg/merchant"
	"merchant-client/pkg/money"
)

type customerView struct {
	ID             string            `json:"id"`
	FullName       *string           `json:"full_name,omitempty"`
	BusinessName   *string           `json:"business_name,omitempty"`
	Email          *string           `json:"email,omitempty"`
	Phone          *string           `json:"phone,omitempty"`
	PaymentMethods []json.RawMessage `json:"payment_methods,omitempty"`
	CreatedAt      *time.Time        `json:"created_at,omitempty"`
	UpdatedAt      *time.Time        `json:"updated_at,omitempty"`
}

func toCustomerView(c *merchant.Customer) customerView {
	return customerView{
		ID:             c.ID,
		FullName:       c.FullName,
		BusinessName:   c.BusinessName,
		Email:          c.Email,
		Phone:          c.Phone,
		PaymentMethods: c.PaymentMethods,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

type orderView struct {
	ID                  string              `json:"id"`
	PublicID            *string             `json:"public_id,omitempty"`
	State               merchant.OrderState `json:"state"`
	OrderAmount         *money.Money        `json:"order_amount,omitempty"`
	OutstandingAmount   *money.Money        `json:"order_outstanding_amount,omitempty"`
	RefundedAmount      *money.Money        `json:"refunded_amount,omitempty"`
	CaptureMode         *string             `json:"capture_mode,omitempty"`
	Email               *string             `json:"email,omitempty"`
	Description         *string             `json:"description,omitempty"`
	MerchantOrderExtRef *string             `json:"merchant_order_ext_ref,omitempty"`
	CustomerID          *string             `json:"customer_id,omitempty"`
	CreatedAt           *time.Time          `json:"created_at,omitempty"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty"`
}

func toOrderView(o *merchant.Order) orderView {
	return orderView{
		ID:                  o.ID,
		PublicID:            o.PublicID,
		State:               o.State,
		OrderAmount:         o.OrderAmount,
		OutstandingAmount:   o.OrderOutstandingAmount,
		RefundedAmount:      o.RefundedAmount,
		CaptureMode:         o.CaptureMode,
		Email:               o.Email,
		Description:         o.Description,
		MerchantOrderExtRef: o.MerchantOrderExtRef,
		CustomerID:          o.CustomerID,
		CreatedAt:           o.CreatedAt,
		CompletedAt:         o.CompletedAt,
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// sortedIDs returns the keys of m in ascending order.
func sortedIDs[T any](m map[string]T) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
