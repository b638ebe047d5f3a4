package customer

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"merchant-client/internal/domain"
	"merchant-client/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_CustomerCRUD(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	var merchantID string
	err := pool.QueryRow(ctx, `INSERT INTO merchants (key, name) VALUES (gen_random_uuid()::text, 'Shop') RETURNING id::text`).Scan(&merchantID)
	if err != nil {
		t.Fatalf("insert merchant: %v", err)
	}

	repo := NewPostgres(pool, nil)
	name := "Ada"
	created, err := repo.Create(ctx, domain.Customer{MerchantID: merchantID, FullName: &name, Email: "Ada@Example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "ada@example.com" || created.Phone != nil {
		t.Fatalf("unexpected customer %+v", created)
	}

	if _, err := repo.Create(ctx, domain.Customer{MerchantID: merchantID, Email: "ada@example.com"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	phone := "+44"
	created.Phone = &phone
	updated, err := repo.Update(ctx, *created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Phone == nil || *updated.Phone != "+44" {
		t.Fatalf("unexpected update %+v", updated)
	}

	pm := domain.PaymentMethod{ID: "pm_1", Type: "CARD", SavedAt: time.Now()}
	for i := 0; i < 2; i++ {
		withPM, err := repo.AddPaymentMethod(ctx, merchantID, created.ID, pm)
		if err != nil {
			t.Fatalf("AddPaymentMethod: %v", err)
		}
		if len(withPM.PaymentMethods) != 1 || withPM.PaymentMethods[0].ID != "pm_1" {
			t.Fatalf("unexpected payment methods %+v", withPM.PaymentMethods)
		}
	}

	list, err := repo.List(ctx, merchantID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(list))
	}

	if err := repo.Delete(ctx, merchantID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, merchantID, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE orders, customers, api_keys, merchants RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
