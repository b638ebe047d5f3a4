package merchant_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"merchant-client/internal/emulator"
	"merchant-client/internal/seed"
	"merchant-client/pkg/merchant"
	"merchant-client/pkg/money"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emulatorKey = "sk_sandbox_e2e"

func emulatorClient(t *testing.T, token string) *merchant.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	em, err := emulator.New(context.Background(), emulator.Options{
		Seed: seed.Input{MerchantKey: "e2e", MerchantName: "E2E", APIKey: emulatorKey},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(em.Handler)
	t.Cleanup(srv.Close)

	c, err := merchant.NewClient(token, merchant.EnvSandbox, merchant.WithBaseURL(srv.URL+"/api/1.0"))
	require.NoError(t, err)
	return c
}

func strPtr(s string) *string { return &s }

func TestEmulatorCustomerRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := emulatorClient(t, emulatorKey)

	cu := c.NewCustomer()
	cu.FullName = strPtr("Grace Hopper")
	cu.Email = strPtr("Grace@Example.com")
	saved, err := cu.Save(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "grace@example.com", *saved.Email)
	assert.False(t, saved.IsBusiness())

	all, err := c.Customers(ctx)
	require.NoError(t, err)
	require.Contains(t, all, saved.ID)

	require.NoError(t, saved.Update(map[string]any{"business_name": "Navy"}))
	updated, err := saved.Save(ctx)
	require.NoError(t, err)
	assert.True(t, updated.IsBusiness())
	assert.Equal(t, "Grace Hopper", *updated.FullName)

	require.NoError(t, updated.Delete(ctx))
	_, err = updated.Refresh(ctx)
	assert.True(t, merchant.IsNotFound(err), "got %v", err)
}

func TestEmulatorDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	c := emulatorClient(t, emulatorKey)

	first := c.NewCustomer()
	first.Email = strPtr("dup@example.com")
	_, err := first.Save(ctx)
	require.NoError(t, err)

	second := c.NewCustomer()
	second.Email = strPtr("dup@example.com")
	_, err = second.Save(ctx)
	var apiErr *merchant.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, 409, apiErr.StatusCode)
	assert.Equal(t, "already_exists", apiErr.ErrorID)
}

func TestEmulatorManualCaptureLifecycle(t *testing.T) {
	ctx := context.Background()
	c := emulatorClient(t, emulatorKey)

	o := c.NewOrder(money.MustParse("25.00"), "GBP")
	o.CaptureMode = strPtr("MANUAL")
	o.MerchantOrderExtRef = strPtr("po-7")
	o.Metadata = map[string]any{"channel": "web"}
	created, err := o.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, merchant.OrderStatePending, created.State)
	assert.Equal(t, "25.00", created.OrderAmount.Value.String())
	assert.Equal(t, "web", created.Metadata["channel"])

	_, err = created.Save(ctx)
	assert.ErrorIs(t, err, merchant.ErrNotSupported)

	confirmed, err := created.Confirm(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, merchant.OrderStateAuthorised, confirmed.State)

	partial, err := confirmed.Capture(ctx, money.MustParse("20.00"))
	require.NoError(t, err)
	assert.Equal(t, merchant.OrderStateAuthorised, partial.State)
	assert.Equal(t, "5.00", partial.OrderOutstandingAmount.Value.String())

	captured, err := partial.Capture(ctx, money.MustParse("5.00"))
	require.NoError(t, err)
	assert.Equal(t, merchant.OrderStateCompleted, captured.State)
	require.NotNil(t, captured.CompletedAt)

	refunded, err := captured.Refund(ctx, money.MustParse("5.25"), "partial")
	require.NoError(t, err)
	assert.Equal(t, "5.25", refunded.RefundedAmount.Value.String())

	_, err = refunded.Refund(ctx, money.MustParse("20.00"), "too much")
	assert.ErrorIs(t, err, merchant.ErrInvalidAmount)

	found, err := c.SearchOrders(ctx, merchant.OrderFilter{MerchantOrderExtRef: "po-7"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)
}

func TestEmulatorAutomaticCaptureCompletesOnConfirm(t *testing.T) {
	ctx := context.Background()
	c := emulatorClient(t, emulatorKey)

	o, err := c.NewOrder(money.MustParse("9.99"), "EUR").Save(ctx)
	require.NoError(t, err)

	done, err := o.Confirm(ctx, "pm_card")
	require.NoError(t, err)
	assert.Equal(t, merchant.OrderStateCompleted, done.State)
	assert.True(t, money.ValueOf(done.OrderOutstandingAmount).IsZero())

	_, err = done.Cancel(ctx)
	var apiErr *merchant.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, 422, apiErr.StatusCode)
}

func TestEmulatorCustomerCarriesSavedPaymentMethods(t *testing.T) {
	ctx := context.Background()
	c := emulatorClient(t, emulatorKey)

	cu := c.NewCustomer()
	cu.Email = strPtr("buyer@example.com")
	saved, err := cu.Save(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved.PaymentMethods)

	o := c.NewOrder(money.MustParse("3.00"), "GBP")
	o.CustomerID = strPtr(saved.ID)
	o, err = o.Save(ctx)
	require.NoError(t, err)
	_, err = o.Confirm(ctx, "pm_saved")
	require.NoError(t, err)

	refreshed, err := saved.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, refreshed.PaymentMethods, 1)
	assert.Contains(t, string(refreshed.PaymentMethods[0]), `"pm_saved"`)
}

func TestEmulatorRejectsUnknownToken(t *testing.T) {
	c := emulatorClient(t, "sk_sandbox_wrong")

	_, err := c.Customers(context.Background())
	require.Error(t, err)
	assert.True(t, merchant.IsUnauthorized(err), "got %v", err)
}
