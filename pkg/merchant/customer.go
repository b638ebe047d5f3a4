package merchant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Customer is a locally held copy of a merchant's customer record. ID is
// empty until the customer has been saved.
type Customer struct {
	ID             string
	FullName       *string
	BusinessName   *string
	Email          *string
	Phone          *string
	PaymentMethods []json.RawMessage
	CreatedAt      *time.Time
	UpdatedAt      *time.Time

	client *Client
}

// NewCustomer returns an unsaved customer bound to c.
func (c *Client) NewCustomer() *Customer {
	return &Customer{client: c}
}

func (cu *Customer) fields() fieldSet {
	return fieldSet{
		"id":              &cu.ID,
		"full_name":       &cu.FullName,
		"business_name":   &cu.BusinessName,
		"email":           &cu.Email,
		"phone":           &cu.Phone,
		"payment_methods": &cu.PaymentMethods,
		"created_at":      &cu.CreatedAt,
		"updated_at":      &cu.UpdatedAt,
	}
}

// IsBusiness reports whether the customer has a business name.
func (cu *Customer) IsBusiness() bool {
	return cu.BusinessName != nil
}

func (cu *Customer) String() string {
	name := ""
	if cu.FullName != nil {
		name = *cu.FullName
	}
	return fmt.Sprintf("<Customer %s %s>", cu.ID, name)
}

// Update sets attributes by wire name, e.g. {"full_name": "Jane"}. Unknown
// names fail with a SchemaError.
func (cu *Customer) Update(fields map[string]any) error {
	return mergeFields("Customer", cu.fields(), fields, cu.client.strict, cu.client.logger)
}

func (cu *Customer) merge(resp *Response) error {
	if resp.NoContent() {
		return nil
	}
	return merge("Customer", cu.fields(), resp.Raw, cu.client.strict, cu.client.logger)
}

func customerPath(id string) string {
	return "customers/" + url.PathEscape(id)
}

// Refresh re-fetches the customer and overwrites local fields in place.
func (cu *Customer) Refresh(ctx context.Context) (*Customer, error) {
	if err := requireID("customer", cu.ID); err != nil {
		return nil, err
	}
	resp, err := cu.client.Get(ctx, customerPath(cu.ID), nil)
	if err != nil {
		return nil, fmt.Errorf("refresh customer %s: %w", cu.ID, err)
	}
	if err := cu.merge(resp); err != nil {
		return nil, err
	}
	return cu, nil
}

// mutable returns the non-nil subset of the fields the API lets callers set.
func (cu *Customer) mutable() map[string]string {
	out := make(map[string]string, 4)
	for name, v := range map[string]*string{
		"full_name":     cu.FullName,
		"business_name": cu.BusinessName,
		"email":         cu.Email,
		"phone":         cu.Phone,
	} {
		if v != nil {
			out[name] = *v
		}
	}
	return out
}

// Save creates or updates the customer.
//
// An unsaved customer is posted, registered in the client's cache under
// its new id, and then fetched again; the returned value is that freshly
// fetched instance, not cu. A saved customer is patched with its non-nil
// mutable fields and refreshed in place.
func (cu *Customer) Save(ctx context.Context) (*Customer, error) {
	data := cu.mutable()

	if cu.ID != "" {
		if _, err := cu.client.Patch(ctx, customerPath(cu.ID), data); err != nil {
			return nil, fmt.Errorf("update customer %s: %w", cu.ID, err)
		}
		return cu.Refresh(ctx)
	}

	resp, err := cu.client.Post(ctx, "customers", data)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := resp.Decode(&created); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	if created.ID == "" {
		return nil, errors.New("create customer: response carried no id")
	}
	cu.ID = created.ID
	cu.client.customers.Put(cu.ID, cu)

	fresh := &Customer{ID: cu.ID, client: cu.client}
	return fresh.Refresh(ctx)
}

// Delete removes the customer on the server. The cached copy, if any, is
// left in place; call Client.InvalidateCustomers to drop it.
func (cu *Customer) Delete(ctx context.Context) error {
	if err := requireID("customer", cu.ID); err != nil {
		return err
	}
	if _, err := cu.client.Delete(ctx, customerPath(cu.ID), nil); err != nil {
		return fmt.Errorf("delete customer %s: %w", cu.ID, err)
	}
	return nil
}

// Customers lists every customer once and serves later calls from the
// cache. Use InvalidateCustomers or an entity's Refresh for fresh data.
func (c *Client) Customers(ctx context.Context) (map[string]*Customer, error) {
	if c.customers.Loaded() {
		return c.customers.All(), nil
	}
	resp, err := c.Get(ctx, "customers", nil)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	records, err := records(resp)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	loaded := make(map[string]*Customer, len(records))
	for _, raw := range records {
		cu := &Customer{client: c}
		if err := merge("Customer", cu.fields(), raw, c.strict, c.logger); err != nil {
			return nil, fmt.Errorf("list customers: %w", err)
		}
		// Keep identity for customers registered before the listing.
		if existing, ok := c.customers.Get(cu.ID); ok {
			if err := merge("Customer", existing.fields(), raw, c.strict, c.logger); err != nil {
				return nil, fmt.Errorf("list customers: %w", err)
			}
			cu = existing
		}
		loaded[cu.ID] = cu
	}
	c.customers.Load(loaded)
	return c.customers.All(), nil
}

// Customer returns the cached customer with id, or fetches it directly
// without touching the cache.
func (c *Client) Customer(ctx context.Context, id string) (*Customer, error) {
	if cu, ok := c.customers.Get(id); ok {
		return cu, nil
	}
	resp, err := c.Get(ctx, customerPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}
	cu := &Customer{client: c}
	if err := cu.merge(resp); err != nil {
		return nil, err
	}
	return cu, nil
}

// records splits a listing payload into its elements.
func records(resp *Response) ([]json.RawMessage, error) {
	if resp.NoContent() || len(resp.Raw) == 0 {
		return nil, nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(resp.Raw, &out); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return out, nil
}
