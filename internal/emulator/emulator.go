// Package emulator assembles a local stand-in for the merchant API from the
// repositories, services and router, on Postgres or in-memory storage.
package emulator

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"merchant-client/internal/httpserver"
	apikeyrepo "merchant-client/internal/repository/apikey"
	custrepo "merchant-client/internal/repository/customer"
	merchantrepo "merchant-client/internal/repository/merchant"
	orderrepo "merchant-client/internal/repository/order"
	"merchant-client/internal/seed"
	accountsvc "merchant-client/internal/service/account"
	customersvc "merchant-client/internal/service/customer"
	ordersvc "merchant-client/internal/service/order"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options configures New. A nil Pool selects in-memory storage.
type Options struct {
	Logger      *log.Logger
	Pool        *pgxpool.Pool
	CORSOrigins []string
	Seed        seed.Input
}

// Emulator is a ready-to-serve merchant API.
type Emulator struct {
	Handler    http.Handler
	MerchantID string
	Accounts   *accountsvc.Service
	Customers  *customersvc.Service
	Orders     *ordersvc.Service
}

// New wires storage, services and routes, then seeds the bootstrap
// merchant and API key from opts.Seed.
func New(ctx context.Context, opts Options) (*Emulator, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	var (
		merchants merchantrepo.Repository
		keys      apikeyrepo.Repository
		customers custrepo.Repository
		orders    orderrepo.Repository
	)
	if opts.Pool != nil {
		merchants = merchantrepo.NewPostgres(opts.Pool)
		keys = apikeyrepo.NewPostgres(opts.Pool)
		customers = custrepo.NewPostgres(opts.Pool, logger)
		orders = orderrepo.NewPostgres(opts.Pool, logger)
	} else {
		merchants = merchantrepo.NewMemory()
		keys = apikeyrepo.NewMemory()
		customers = custrepo.NewMemory()
		orders = orderrepo.NewMemory()
	}

	em := &Emulator{
		Accounts:  accountsvc.New(merchants, keys),
		Customers: customersvc.New(customers),
		Orders:    ordersvc.New(orders, customers, logger),
	}

	merchantID, err := seed.Apply(ctx, em.Accounts, em.Customers, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	em.MerchantID = merchantID

	em.Handler, err = httpserver.NewHandler(logger, opts.Pool, httpserver.Deps{
		Auth:        em.Accounts,
		CustomerSvc: em.Customers,
		OrderSvc:    em.Orders,
	}, opts.CORSOrigins)
	if err != nil {
		return nil, err
	}
	return em, nil
}
