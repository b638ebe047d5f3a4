package customer

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"merchant-client/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const customerColumns = `id::text, merchant_id::text, full_name, business_name, email, phone, payment_methods, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (merchant_id, full_name, business_name, email, phone)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q,
		c.MerchantID,
		c.FullName,
		c.BusinessName,
		strings.ToLower(c.Email),
		c.Phone,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, merchantID, id string) (*domain.Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE merchant_id = $1 AND id::text = $2
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, merchantID, id))
}

func (r *postgresRepo) List(ctx context.Context, merchantID string) ([]domain.Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE merchant_id = $1
ORDER BY created_at, id
`
	rows, err := r.pool.Query(ctx, q, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Customer{}
	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
UPDATE customers
SET full_name = $3, business_name = $4, email = $5, phone = $6, updated_at = now()
WHERE merchant_id = $1 AND id::text = $2
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q,
		c.MerchantID,
		c.ID,
		c.FullName,
		c.BusinessName,
		strings.ToLower(c.Email),
		c.Phone,
	))
}

func (r *postgresRepo) Delete(ctx context.Context, merchantID, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE merchant_id = $1 AND id::text = $2`, merchantID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) AddPaymentMethod(ctx context.Context, merchantID, id string, pm domain.PaymentMethod) (*domain.Customer, error) {
	const q = `
UPDATE customers
SET payment_methods = CASE
        WHEN payment_methods @> jsonb_build_array(jsonb_build_object('id', $3::text)) THEN payment_methods
        ELSE payment_methods || jsonb_build_array(jsonb_build_object('id', $3::text, 'type', $4::text, 'saved_at', $5::timestamptz))
    END,
    updated_at = now()
WHERE merchant_id = $1 AND id::text = $2
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q, merchantID, id, pm.ID, pm.Type, pm.SavedAt.UTC()))
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.MerchantID,
		&c.FullName,
		&c.BusinessName,
		&c.Email,
		&c.Phone,
		&c.PaymentMethods,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("customer repo: scan error=%v", err)
		return nil, err
	}
	return &c, nil
}
