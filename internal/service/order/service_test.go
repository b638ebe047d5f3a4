package order

import (
	"context"
	"errors"
	"testing"

	"merchant-client/internal/domain"
	custrepo "merchant-client/internal/repository/customer"
	orderrepo "merchant-client/internal/repository/order"
	"merchant-client/pkg/merchant"
	"merchant-client/pkg/money"
)

func amt(s string) *money.Amount {
	a := money.MustParse(s)
	return &a
}

func strPtr(s string) *string { return &s }

func newService(t *testing.T) (*Service, custrepo.Repository) {
	t.Helper()
	customers := custrepo.NewMemory()
	return New(orderrepo.NewMemory(), customers, nil), customers
}

func mustCreate(t *testing.T, svc *Service, in CreateInput) *domain.Order {
	t.Helper()
	o, err := svc.Create(context.Background(), "m1", in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return o
}

func TestCreateValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"missing amount", CreateInput{Currency: "GBP"}, domain.ErrInvalidAmount},
		{"zero amount", CreateInput{Amount: amt("0"), Currency: "GBP"}, domain.ErrInvalidAmount},
		{"negative amount", CreateInput{Amount: amt("-1"), Currency: "GBP"}, domain.ErrInvalidAmount},
		{"bad currency", CreateInput{Amount: amt("1"), Currency: "POUNDS"}, domain.ErrInvalidInput},
		{"digits in currency", CreateInput{Amount: amt("1"), Currency: "G8P"}, domain.ErrInvalidInput},
		{"bad capture mode", CreateInput{Amount: amt("1"), Currency: "GBP", CaptureMode: "LATER"}, domain.ErrInvalidInput},
		{"unknown customer", CreateInput{Amount: amt("1"), Currency: "GBP", CustomerID: strPtr("nobody")}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "m1", tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateStoresPendingOrder(t *testing.T) {
	svc, customers := newService(t)
	cust, err := customers.Create(context.Background(), domain.Customer{MerchantID: "m1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	o := mustCreate(t, svc, CreateInput{Amount: amt("12.50"), Currency: "gbp", CustomerID: &cust.ID})
	if o.State != merchant.OrderStatePending {
		t.Fatalf("expected PENDING, got %s", o.State)
	}
	if o.Amount.String() != "12.50" || o.Outstanding.String() != "12.50" || !o.Refunded.IsZero() {
		t.Fatalf("unexpected amounts %+v", o)
	}
	if o.Currency != "GBP" || o.SettlementCurrency != "GBP" || o.CaptureMode != domain.CaptureAutomatic {
		t.Fatalf("unexpected defaults %+v", o)
	}
	if o.ID == "" || o.PublicID == "" {
		t.Fatalf("expected ids to be assigned, got %+v", o)
	}
}

func TestAutomaticConfirmCompletesOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	o := mustCreate(t, svc, CreateInput{Amount: amt("10"), Currency: "EUR"})

	confirmed, err := svc.Confirm(ctx, "m1", o.ID, "pm-1")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.State != merchant.OrderStateCompleted || !confirmed.Outstanding.IsZero() || confirmed.CompletedAt == nil {
		t.Fatalf("unexpected confirmed order %+v", confirmed)
	}
	if _, err := svc.Confirm(ctx, "m1", o.ID, ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second confirm, got %v", err)
	}
}

func TestManualCaptureFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	o := mustCreate(t, svc, CreateInput{Amount: amt("10.00"), Currency: "EUR", CaptureMode: "manual"})

	if _, err := svc.Capture(ctx, "m1", o.ID, amt("1")); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState capturing a pending order, got %v", err)
	}

	authorised, err := svc.Confirm(ctx, "m1", o.ID, "")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if authorised.State != merchant.OrderStateAuthorised {
		t.Fatalf("expected AUTHORISED, got %s", authorised.State)
	}

	if _, err := svc.Capture(ctx, "m1", o.ID, amt("10.01")); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount over outstanding, got %v", err)
	}
	if _, err := svc.Capture(ctx, "m1", o.ID, amt("0")); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero capture, got %v", err)
	}
	stored, _ := svc.Get(ctx, "m1", o.ID)
	if stored.State != merchant.OrderStateAuthorised || stored.Outstanding.String() != "10.00" {
		t.Fatalf("rejected capture must not change the order, got %+v", stored)
	}

	captured, err := svc.Capture(ctx, "m1", o.ID, amt("4.00"))
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if captured.State != merchant.OrderStateAuthorised || captured.Outstanding.String() != "6.00" || captured.CompletedAt != nil {
		t.Fatalf("partial capture should keep the order authorised, got %+v", captured)
	}

	done, err := svc.Capture(ctx, "m1", o.ID, amt("6.00"))
	if err != nil {
		t.Fatalf("Capture remainder: %v", err)
	}
	if done.State != merchant.OrderStateCompleted || !done.Outstanding.IsZero() || done.CompletedAt == nil {
		t.Fatalf("capturing the remainder should complete the order, got %+v", done)
	}
	if _, err := svc.Capture(ctx, "m1", o.ID, nil); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState capturing a completed order, got %v", err)
	}
}

func TestCaptureWithoutAmountTakesOutstanding(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	o := mustCreate(t, svc, CreateInput{Amount: amt("8.40"), Currency: "GBP", CaptureMode: "MANUAL"})
	if _, err := svc.Confirm(ctx, "m1", o.ID, ""); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := svc.Capture(ctx, "m1", o.ID, amt("3.00")); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	done, err := svc.Capture(ctx, "m1", o.ID, nil)
	if err != nil {
		t.Fatalf("Capture rest: %v", err)
	}
	if done.State != merchant.OrderStateCompleted || !done.Outstanding.IsZero() {
		t.Fatalf("expected completed order with nothing outstanding, got %+v", done)
	}
}

func TestConfirmSavesPaymentMethodOnCustomer(t *testing.T) {
	ctx := context.Background()
	svc, customers := newService(t)
	cu, err := customers.Create(ctx, domain.Customer{MerchantID: "m1", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	for i := 0; i < 2; i++ {
		o := mustCreate(t, svc, CreateInput{Amount: amt("5"), Currency: "GBP", CustomerID: strPtr(cu.ID)})
		if _, err := svc.Confirm(ctx, "m1", o.ID, "pm_card_1"); err != nil {
			t.Fatalf("Confirm: %v", err)
		}
	}
	anonymous := mustCreate(t, svc, CreateInput{Amount: amt("5"), Currency: "GBP"})
	if _, err := svc.Confirm(ctx, "m1", anonymous.ID, "pm_card_2"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	got, err := customers.GetByID(ctx, "m1", cu.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.PaymentMethods) != 1 || got.PaymentMethods[0].ID != "pm_card_1" {
		t.Fatalf("expected one saved method, got %+v", got.PaymentMethods)
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	pending := mustCreate(t, svc, CreateInput{Amount: amt("3"), Currency: "USD"})
	completed := mustCreate(t, svc, CreateInput{Amount: amt("3"), Currency: "USD"})
	if _, err := svc.Confirm(ctx, "m1", completed.ID, ""); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, "m1", pending.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.State != merchant.OrderStateCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.State)
	}
	if _, err := svc.Cancel(ctx, "m1", completed.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState cancelling a completed order, got %v", err)
	}
	if _, err := svc.Cancel(ctx, "m1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRefundIsBoundedByOrderAmount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	o := mustCreate(t, svc, CreateInput{Amount: amt("10.00"), Currency: "GBP"})

	if _, err := svc.Refund(ctx, "m1", o.ID, amt("1"), ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState refunding a pending order, got %v", err)
	}
	if _, err := svc.Confirm(ctx, "m1", o.ID, ""); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	refunded, err := svc.Refund(ctx, "m1", o.ID, amt("4.00"), "damaged")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if refunded.Refunded.String() != "4.00" {
		t.Fatalf("expected 4.00 refunded, got %s", refunded.Refunded)
	}
	if _, err := svc.Refund(ctx, "m1", o.ID, amt("6.01"), ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount past the order amount, got %v", err)
	}
	if _, err := svc.Refund(ctx, "m1", o.ID, amt("-1"), ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative refund, got %v", err)
	}
	full, err := svc.Refund(ctx, "m1", o.ID, amt("6.00"), "")
	if err != nil {
		t.Fatalf("Refund remainder: %v", err)
	}
	if !full.Refunded.Equal(full.Amount) {
		t.Fatalf("expected fully refunded order, got %+v", full)
	}
}

func TestListFiltersByReference(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	mustCreate(t, svc, CreateInput{Amount: amt("1"), Currency: "GBP", MerchantOrderExtRef: strPtr("inv-1")})
	mustCreate(t, svc, CreateInput{Amount: amt("2"), Currency: "GBP", MerchantOrderExtRef: strPtr("inv-2")})

	all, err := svc.List(ctx, "m1", domain.OrderFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}
	filtered, err := svc.List(ctx, "m1", domain.OrderFilter{MerchantOrderExtRef: "inv-2"})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Amount.String() != "2" {
		t.Fatalf("unexpected filtered result %+v", filtered)
	}
	other, _ := svc.List(ctx, "m2", domain.OrderFilter{})
	if len(other) != 0 {
		t.Fatalf("orders must be scoped per merchant, got %d", len(other))
	}
}
