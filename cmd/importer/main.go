package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"merchant-client/internal/config"
	"merchant-client/internal/db"
	"merchant-client/internal/importer"
	apikeyrepo "merchant-client/internal/repository/apikey"
	custrepo "merchant-client/internal/repository/customer"
	merchantrepo "merchant-client/internal/repository/merchant"
	accountsvc "merchant-client/internal/service/account"
	customersvc "merchant-client/internal/service/customer"
)

func main() {
	var (
		filePath    string
		merchantKey string
	)
	flag.StringVar(&filePath, "file", "", "Path to customer CSV export (full_name,business_name,email,phone)")
	flag.StringVar(&merchantKey, "merchant", "", "Merchant key to import into")
	flag.Parse()

	if filePath == "" || merchantKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	if cfg.UsesMemory() {
		log.Fatalf("DB_DSN is required")
	}
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	accounts := accountsvc.New(merchantrepo.NewPostgres(pool), apikeyrepo.NewPostgres(pool))
	m, err := accounts.EnsureMerchant(ctx, merchantKey, merchantKey, false)
	if err != nil {
		log.Fatalf("ensure merchant %q: %v", merchantKey, err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, customersvc.New(custrepo.NewPostgres(pool, nil)), m.ID)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d customers: %v", res.Imported, err)
	}

	fmt.Printf("Imported %d customers (%d duplicates skipped) into merchant %s in %s\n",
		res.Imported, res.Duplicates, merchantKey, time.Since(start).Truncate(time.Millisecond))
}
