package seed

import (
	"context"
	"errors"
	"fmt"

	"merchant-client/internal/domain"
	accountsvc "merchant-client/internal/service/account"
	customersvc "merchant-client/internal/service/customer"
)

// Input names the merchant and API key to bootstrap.
type Input struct {
	MerchantKey  string
	MerchantName string
	APIKey       string
	// DemoCustomers adds a few customers for manual testing.
	DemoCustomers bool
}

type customerSeed struct {
	FullName     string
	BusinessName string
	Email        string
}

var demoCustomers = []customerSeed{
	{FullName: "Ada Lovelace", Email: "ada@example.com"},
	{FullName: "Charles Babbage", BusinessName: "Analytical Engines Ltd", Email: "charles@example.com"},
}

// Apply ensures the merchant and its API key exist. It is idempotent and
// returns the merchant id.
func Apply(ctx context.Context, accounts *accountsvc.Service, customers *customersvc.Service, in Input) (string, error) {
	m, err := accounts.EnsureMerchant(ctx, in.MerchantKey, in.MerchantName, false)
	if err != nil {
		return "", fmt.Errorf("ensure merchant: %w", err)
	}
	if err := accounts.RegisterKey(ctx, m.ID, in.APIKey); err != nil {
		return "", fmt.Errorf("register api key: %w", err)
	}
	if !in.DemoCustomers || customers == nil {
		return m.ID, nil
	}

	for _, c := range demoCustomers {
		create := customersvc.CreateInput{FullName: &c.FullName, Email: &c.Email}
		if c.BusinessName != "" {
			create.BusinessName = &c.BusinessName
		}
		if _, err := customers.Create(ctx, m.ID, create); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return "", fmt.Errorf("seed customer %s: %w", c.Email, err)
		}
	}
	return m.ID, nil
}
