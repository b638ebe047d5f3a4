package main

import (
	"context"
	"flag"
	"log"
	"os"

	"merchant-client/internal/config"
	"merchant-client/internal/db"
	apikeyrepo "merchant-client/internal/repository/apikey"
	custrepo "merchant-client/internal/repository/customer"
	merchantrepo "merchant-client/internal/repository/merchant"
	"merchant-client/internal/seed"
	accountsvc "merchant-client/internal/service/account"
	customersvc "merchant-client/internal/service/customer"
)

func main() {
	demo := flag.Bool("demo-customers", true, "Also create a few demo customers")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if cfg.UsesMemory() {
		logger.Fatalf("DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	accounts := accountsvc.New(merchantrepo.NewPostgres(pool), apikeyrepo.NewPostgres(pool))
	customers := customersvc.New(custrepo.NewPostgres(pool, logger))

	merchantID, err := seed.Apply(ctx, accounts, customers, seed.Input{
		MerchantKey:   cfg.MerchantKey,
		MerchantName:  cfg.MerchantName,
		APIKey:        cfg.EmulatorAPIKey,
		DemoCustomers: *demo,
	})
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied: merchant %s (%s) api key %s", cfg.MerchantKey, merchantID, cfg.EmulatorAPIKey)
}
