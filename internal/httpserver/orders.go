package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"merchant-client/internal/domain"
	ordersvc "merchant-client/internal/service/order"
	"merchant-client/pkg/money"

	"github.com/gin-gonic/gin"
)

const defaultOrderLimit = 100

// amountResponse writes the value as a bare JSON number with its exact
// decimal digits, the way the upstream API does.
type amountResponse struct {
	Value    json.Number `json:"value"`
	Currency string      `json:"currency"`
}

func toAmount(a money.Amount, currency string) *amountResponse {
	return &amountResponse{Value: json.Number(a.String()), Currency: currency}
}

type orderResponse struct {
	ID                     string            `json:"id"`
	PublicID               string            `json:"public_id"`
	Type                   string            `json:"type"`
	State                  string            `json:"state"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
	CompletedAt            *time.Time        `json:"completed_at,omitempty"`
	OrderAmount            *amountResponse   `json:"order_amount"`
	OrderOutstandingAmount *amountResponse   `json:"order_outstanding_amount"`
	RefundedAmount         *amountResponse   `json:"refunded_amount,omitempty"`
	Currency               string            `json:"currency"`
	SettlementCurrency     string            `json:"settlement_currency"`
	CaptureMode            string            `json:"capture_mode"`
	Email                  *string           `json:"email,omitempty"`
	Description            *string           `json:"description,omitempty"`
	MerchantOrderExtRef    *string           `json:"merchant_order_ext_ref,omitempty"`
	CustomerID             *string           `json:"customer_id,omitempty"`
	Metadata               map[string]string `json:"metadata,omitempty"`
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:                     o.ID,
		PublicID:               o.PublicID,
		Type:                   o.Type,
		State:                  string(o.State),
		CreatedAt:              o.CreatedAt.UTC(),
		UpdatedAt:              o.UpdatedAt.UTC(),
		OrderAmount:            toAmount(o.Amount, o.Currency),
		OrderOutstandingAmount: toAmount(o.Outstanding, o.Currency),
		Currency:               o.Currency,
		SettlementCurrency:     o.SettlementCurrency,
		CaptureMode:            string(o.CaptureMode),
		Email:                  o.Email,
		Description:            o.Description,
		MerchantOrderExtRef:    o.MerchantOrderExtRef,
		CustomerID:             o.CustomerID,
		Metadata:               o.Metadata,
	}
	if o.CompletedAt != nil {
		t := o.CompletedAt.UTC()
		resp.CompletedAt = &t
	}
	if !o.Refunded.IsZero() {
		resp.RefundedAmount = toAmount(o.Refunded, o.Currency)
	}
	return resp
}

type captureRequest struct {
	Amount *money.Amount `json:"amount"`
}

type refundRequest struct {
	Amount      *money.Amount `json:"amount"`
	Description string        `json:"description"`
}

type confirmRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
}

func (h *handlers) listOrders(c *gin.Context) {
	f, err := parseOrderFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.orders.List(c.Request.Context(), merchantID(c), f)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) createOrder(c *gin.Context) {
	var in ordersvc.CreateInput
	if err := bindOptionalJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.Create(c.Request.Context(), merchantID(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*o))
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), merchantID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *handlers) confirmOrder(c *gin.Context) {
	var in confirmRequest
	if err := bindOptionalJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	h.respondOrder(c)(h.orders.Confirm(c.Request.Context(), merchantID(c), c.Param("id"), in.PaymentMethodID))
}

func (h *handlers) captureOrder(c *gin.Context) {
	var in captureRequest
	if err := bindOptionalJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	h.respondOrder(c)(h.orders.Capture(c.Request.Context(), merchantID(c), c.Param("id"), in.Amount))
}

func (h *handlers) cancelOrder(c *gin.Context) {
	h.respondOrder(c)(h.orders.Cancel(c.Request.Context(), merchantID(c), c.Param("id")))
}

func (h *handlers) refundOrder(c *gin.Context) {
	var in refundRequest
	if err := bindOptionalJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	h.respondOrder(c)(h.orders.Refund(c.Request.Context(), merchantID(c), c.Param("id"), in.Amount, in.Description))
}

func (h *handlers) respondOrder(c *gin.Context) func(*domain.Order, error) {
	return func(o *domain.Order, err error) {
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(*o))
	}
}

func parseOrderFilter(c *gin.Context) (domain.OrderFilter, error) {
	f := domain.OrderFilter{
		Email:               c.Query("email"),
		MerchantOrderExtRef: c.Query("merchant_order_ext_ref"),
		Limit:               defaultOrderLimit,
	}
	for _, p := range []struct {
		key string
		dst *time.Time
	}{
		{"created_before", &f.CreatedBefore},
		{"from_created_date", &f.FromCreatedDate},
		{"to_created_date", &f.ToCreatedDate},
	} {
		v := c.Query(p.key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("%s must be an RFC 3339 timestamp", p.key)
		}
		*p.dst = t
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return f, errors.New("limit must be a positive integer")
		}
		f.Limit = n
	}
	return f, nil
}

// bindOptionalJSON decodes the request body into v, treating an empty body
// as an empty object.
func bindOptionalJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
