package merchant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"merchant-client/pkg/money"
)

// Payment is a payment attempt nested in an order.
type Payment struct {
	ID            string          `json:"id"`
	State         string          `json:"state"`
	Amount        *money.Money    `json:"amount,omitempty"`
	PaymentMethod json.RawMessage `json:"payment_method,omitempty"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

// Order is a locally held copy of an order. Amount and Currency are the
// create-time inputs; OrderAmount is what the server recorded.
type Order struct {
	ID                     string
	PublicID               *string
	Type                   *string
	State                  OrderState
	CreatedAt              *time.Time
	UpdatedAt              *time.Time
	CompletedAt            *time.Time
	OrderAmount            *money.Money
	OrderOutstandingAmount *money.Money
	RefundedAmount         *money.Money
	Amount                 *money.Amount
	Currency               *string
	SettlementCurrency     *string
	Email                  *string
	Phone                  *string
	Description            *string
	CaptureMode            *string
	MerchantOrderExtRef    *string
	CustomerID             *string
	ShippingAddress        json.RawMessage
	Payments               []Payment
	Related                []json.RawMessage
	Metadata               map[string]any

	client *Client
}

// NewOrder returns an unsaved order for amount in currency, bound to c.
func (c *Client) NewOrder(amount money.Amount, currency string) *Order {
	return &Order{Amount: &amount, Currency: &currency, client: c}
}

func (o *Order) fields() fieldSet {
	return fieldSet{
		"id":                       &o.ID,
		"public_id":                &o.PublicID,
		"type":                     &o.Type,
		"state":                    &o.State,
		"created_at":               &o.CreatedAt,
		"updated_at":               &o.UpdatedAt,
		"completed_at":             &o.CompletedAt,
		"order_amount":             &o.OrderAmount,
		"order_outstanding_amount": &o.OrderOutstandingAmount,
		"refunded_amount":          &o.RefundedAmount,
		"amount":                   &o.Amount,
		"currency":                 &o.Currency,
		"settlement_currency":      &o.SettlementCurrency,
		"email":                    &o.Email,
		"phone":                    &o.Phone,
		"description":              &o.Description,
		"capture_mode":             &o.CaptureMode,
		"merchant_order_ext_ref":   &o.MerchantOrderExtRef,
		"customer_id":              &o.CustomerID,
		"shipping_address":         &o.ShippingAddress,
		"payments":                 &o.Payments,
		"related":                  &o.Related,
		"metadata":                 &o.Metadata,
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("<Order %s State: %s >", o.ID, o.State)
}

// Update sets attributes by wire name. Unknown names fail with a SchemaError.
func (o *Order) Update(fields map[string]any) error {
	return mergeFields("Order", o.fields(), fields, o.client.strict, o.client.logger)
}

func (o *Order) merge(resp *Response) error {
	if resp.NoContent() {
		return nil
	}
	return merge("Order", o.fields(), resp.Raw, o.client.strict, o.client.logger)
}

func orderPath(id string, action ...string) string {
	p := "orders/" + url.PathEscape(id)
	for _, a := range action {
		p += "/" + a
	}
	return p
}

// Refresh re-fetches the order and overwrites local fields in place.
func (o *Order) Refresh(ctx context.Context) (*Order, error) {
	if err := requireID("order", o.ID); err != nil {
		return nil, err
	}
	resp, err := o.client.Get(ctx, orderPath(o.ID), nil)
	if err != nil {
		return nil, fmt.Errorf("refresh order %s: %w", o.ID, err)
	}
	if err := o.merge(resp); err != nil {
		return nil, err
	}
	return o, nil
}

type createOrderRequest struct {
	Amount              *money.Amount  `json:"amount"`
	Currency            *string        `json:"currency"`
	SettlementCurrency  *string        `json:"settlement_currency,omitempty"`
	Email               *string        `json:"email,omitempty"`
	Description         *string        `json:"description,omitempty"`
	CaptureMode         *string        `json:"capture_mode,omitempty"`
	MerchantOrderExtRef *string        `json:"merchant_order_ext_ref,omitempty"`
	CustomerID          *string        `json:"customer_id,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
}

// Save creates the order on the server and merges the reply. Orders cannot
// be updated once persisted; saving one again fails with ErrNotSupported.
func (o *Order) Save(ctx context.Context) (*Order, error) {
	if o.ID != "" {
		return nil, fmt.Errorf("update of order %s using Save: %w", o.ID, ErrNotSupported)
	}
	if o.Amount == nil || !o.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: order amount must be positive", ErrInvalidAmount)
	}
	resp, err := o.client.Post(ctx, "orders", createOrderRequest{
		Amount:              o.Amount,
		Currency:            o.Currency,
		SettlementCurrency:  o.SettlementCurrency,
		Email:               o.Email,
		Description:         o.Description,
		CaptureMode:         o.CaptureMode,
		MerchantOrderExtRef: o.MerchantOrderExtRef,
		CustomerID:          o.CustomerID,
		Metadata:            o.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := o.merge(resp); err != nil {
		return nil, err
	}
	return o, nil
}

// Capture collects amount from an authorised order. amount must be positive
// and below the order amount; the checks run before any request is made.
func (o *Order) Capture(ctx context.Context, amount money.Amount) (*Order, error) {
	if err := requireID("order", o.ID); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: capture amount must be positive, got %s", ErrInvalidAmount, amount)
	}
	if !amount.Less(money.ValueOf(o.OrderAmount)) {
		return nil, fmt.Errorf("%w: capture of %s must be less than the order amount %s",
			ErrInvalidAmount, amount, money.ValueOf(o.OrderAmount))
	}
	if o.State.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot capture order %s in state %s", ErrInvalidOrderState, o.ID, o.State)
	}
	return o.action(ctx, "capture", map[string]any{"amount": amount})
}

// Cancel cancels the order on the server.
func (o *Order) Cancel(ctx context.Context) (*Order, error) {
	if err := requireID("order", o.ID); err != nil {
		return nil, err
	}
	return o.action(ctx, "cancel", nil)
}

// Refund returns amount against a completed order. The total refunded,
// including amount, cannot exceed the order amount.
func (o *Order) Refund(ctx context.Context, amount money.Amount, description string) (*Order, error) {
	if err := requireID("order", o.ID); err != nil {
		return nil, err
	}
	if o.State != OrderStateCompleted {
		return nil, fmt.Errorf("%w: only a completed order can be refunded, order %s is %s",
			ErrInvalidOrderState, o.ID, o.State)
	}
	total, err := amount.Add(money.ValueOf(o.RefundedAmount))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	limit := money.ValueOf(o.OrderAmount)
	if !amount.IsPositive() || limit.Less(total) {
		return nil, fmt.Errorf("%w: total refunded amount for order %s can be up to %s",
			ErrInvalidAmount, o.ID, limit)
	}
	return o.action(ctx, "refund", map[string]any{"amount": amount, "description": description})
}

// Confirm confirms a pending order, optionally with a saved payment method.
func (o *Order) Confirm(ctx context.Context, paymentMethodID string) (*Order, error) {
	if err := requireID("order", o.ID); err != nil {
		return nil, err
	}
	if o.State != OrderStatePending {
		return nil, fmt.Errorf("%w: only a pending order can be confirmed, order %s is %s",
			ErrInvalidOrderState, o.ID, o.State)
	}
	body := map[string]any{}
	if paymentMethodID != "" {
		body["payment_method_id"] = paymentMethodID
	}
	return o.action(ctx, "confirm", body)
}

func (o *Order) action(ctx context.Context, name string, body any) (*Order, error) {
	resp, err := o.client.Post(ctx, orderPath(o.ID, name), body)
	if err != nil {
		return nil, fmt.Errorf("%s order %s: %w", name, o.ID, err)
	}
	if err := o.merge(resp); err != nil {
		return nil, err
	}
	return o, nil
}

// Orders lists every order once and serves later calls from the cache.
func (c *Client) Orders(ctx context.Context) (map[string]*Order, error) {
	if c.orders.Loaded() {
		return c.orders.All(), nil
	}
	resp, err := c.Get(ctx, "orders", nil)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	list, err := c.decodeOrders(resp)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	loaded := make(map[string]*Order, len(list))
	for _, o := range list {
		loaded[o.ID] = o
	}
	c.orders.Load(loaded)
	return c.orders.All(), nil
}

// Order returns the cached order with id, or fetches it directly without
// touching the cache.
func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	if o, ok := c.orders.Get(id); ok {
		return o, nil
	}
	resp, err := c.Get(ctx, orderPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	o := &Order{client: c}
	if err := o.merge(resp); err != nil {
		return nil, err
	}
	return o, nil
}

// OrderFilter narrows SearchOrders. Zero fields are omitted.
type OrderFilter struct {
	CreatedBefore       time.Time
	FromCreatedDate     time.Time
	ToCreatedDate       time.Time
	Email               string
	MerchantOrderExtRef string
	Limit               int
}

// Query encodes the filter as listing query parameters.
func (f OrderFilter) Query() url.Values {
	q := url.Values{}
	setTime := func(key string, t time.Time) {
		if !t.IsZero() {
			q.Set(key, t.UTC().Format(time.RFC3339))
		}
	}
	setTime("created_before", f.CreatedBefore)
	setTime("from_created_date", f.FromCreatedDate)
	setTime("to_created_date", f.ToCreatedDate)
	if f.Email != "" {
		q.Set("email", f.Email)
	}
	if f.MerchantOrderExtRef != "" {
		q.Set("merchant_order_ext_ref", f.MerchantOrderExtRef)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// SearchOrders lists orders matching f. Results are never cached.
func (c *Client) SearchOrders(ctx context.Context, f OrderFilter) ([]*Order, error) {
	resp, err := c.Get(ctx, "orders", f.Query())
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	list, err := c.decodeOrders(resp)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	return list, nil
}

func (c *Client) decodeOrders(resp *Response) ([]*Order, error) {
	raws, err := records(resp)
	if err != nil {
		return nil, err
	}
	out := make([]*Order, 0, len(raws))
	for _, raw := range raws {
		o := &Order{client: c}
		if err := merge("Order", o.fields(), raw, c.strict, c.logger); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
