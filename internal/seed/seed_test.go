package seed

import (
	"context"
	"testing"

	apikeyrepo "merchant-client/internal/repository/apikey"
	custrepo "merchant-client/internal/repository/customer"
	merchantrepo "merchant-client/internal/repository/merchant"
	accountsvc "merchant-client/internal/service/account"
	customersvc "merchant-client/internal/service/customer"
)

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	accounts := accountsvc.New(merchantrepo.NewMemory(), apikeyrepo.NewMemory())
	customers := customersvc.New(custrepo.NewMemory())
	in := Input{MerchantKey: "demo", MerchantName: "Demo", APIKey: "sk_sandbox_demo", DemoCustomers: true}

	first, err := Apply(ctx, accounts, customers, in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	second, err := Apply(ctx, accounts, customers, in)
	if err != nil {
		t.Fatalf("Apply again: %v", err)
	}
	if first != second {
		t.Fatalf("expected same merchant, got %s and %s", first, second)
	}

	merchantID, err := accounts.Authenticate(ctx, "sk_sandbox_demo")
	if err != nil || merchantID != first {
		t.Fatalf("expected key to authenticate merchant %s, got %s err=%v", first, merchantID, err)
	}
	list, err := customers.List(ctx, first)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != len(demoCustomers) {
		t.Fatalf("expected %d demo customers, got %d", len(demoCustomers), len(list))
	}
}
