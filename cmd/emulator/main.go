package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"merchant-client/internal/config"
	"merchant-client/internal/db"
	"merchant-client/internal/emulator"
	"merchant-client/internal/httpserver"
	"merchant-client/internal/migrate"
	"merchant-client/internal/seed"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "go.uber.org/automaxprocs"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[emulator] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	var dbpool *pgxpool.Pool
	if cfg.UsesMemory() {
		logger.Printf("DB_DSN not set, using in-memory storage")
	} else {
		pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		dbpool = pool
	}

	em, err := emulator.New(ctx, emulator.Options{
		Logger:      logger,
		Pool:        dbpool,
		CORSOrigins: cfg.CORSOrigins,
		Seed: seed.Input{
			MerchantKey:   cfg.MerchantKey,
			MerchantName:  cfg.MerchantName,
			APIKey:        cfg.EmulatorAPIKey,
			DemoCustomers: cfg.UsesMemory(),
		},
	})
	if err != nil {
		logger.Fatalf("init emulator: %v", err)
	}
	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, em.Handler)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("serving merchant API on %s%s/ for merchant %s", cfg.HTTPAddr, httpserver.APIPrefix, cfg.MerchantKey)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
