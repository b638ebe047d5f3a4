package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"merchant-client/internal/domain"
	"merchant-client/pkg/merchant"
	"merchant-client/pkg/money"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres. Amounts are kept in
// NUMERIC columns and cross the driver boundary as decimal text.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `
    id::text, public_id::text, merchant_id::text, type, state,
    amount::text, currency, settlement_currency, outstanding_amount::text, refunded_amount::text,
    email, description, capture_mode, merchant_order_ext_ref, customer_id::text, metadata,
    created_at, updated_at, completed_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	metaJSON, err := json.Marshal(metadataOrEmpty(o.Metadata))
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO orders (
    merchant_id, type, state, amount, currency, settlement_currency, outstanding_amount, refunded_amount,
    email, description, capture_mode, merchant_order_ext_ref, customer_id, metadata
) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7::numeric, $8::numeric, $9, $10, $11, $12, $13::uuid, $14)
RETURNING ` + orderColumns
	return r.scanOrder(r.pool.QueryRow(ctx, q,
		o.MerchantID,
		o.Type,
		string(o.State),
		o.Amount.String(),
		o.Currency,
		o.SettlementCurrency,
		o.Outstanding.String(),
		o.Refunded.String(),
		o.Email,
		o.Description,
		string(o.CaptureMode),
		o.MerchantOrderExtRef,
		o.CustomerID,
		metaJSON,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, merchantID, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + `
FROM orders
WHERE merchant_id = $1 AND id::text = $2
LIMIT 1`
	return r.scanOrder(r.pool.QueryRow(ctx, q, merchantID, id))
}

func (r *postgresRepo) List(ctx context.Context, merchantID string, f domain.OrderFilter) ([]domain.Order, error) {
	var (
		conds = []string{"merchant_id = $1"}
		args  = []any{merchantID}
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if !f.CreatedBefore.IsZero() {
		add("created_at < $%d", f.CreatedBefore)
	}
	if !f.FromCreatedDate.IsZero() {
		add("created_at >= $%d", f.FromCreatedDate)
	}
	if !f.ToCreatedDate.IsZero() {
		add("created_at <= $%d", f.ToCreatedDate)
	}
	if f.Email != "" {
		add("email = $%d", f.Email)
	}
	if f.MerchantOrderExtRef != "" {
		add("merchant_order_ext_ref = $%d", f.MerchantOrderExtRef)
	}
	q := `SELECT ` + orderColumns + `
FROM orders
WHERE ` + strings.Join(conds, " AND ") + `
ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf("\nLIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Mutate(ctx context.Context, merchantID, id string, fn MutateFunc) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	q := `SELECT ` + orderColumns + `
FROM orders
WHERE merchant_id = $1 AND id::text = $2
FOR UPDATE`
	o, err := r.scanOrder(tx.QueryRow(ctx, q, merchantID, id))
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}

	metaJSON, err := json.Marshal(metadataOrEmpty(o.Metadata))
	if err != nil {
		return nil, err
	}
	const upd = `
UPDATE orders
SET state = $3,
    outstanding_amount = $4::numeric,
    refunded_amount = $5::numeric,
    email = $6,
    description = $7,
    metadata = $8,
    completed_at = $9,
    updated_at = now()
WHERE merchant_id = $1 AND id::text = $2
RETURNING ` + orderColumns
	updated, err := r.scanOrder(tx.QueryRow(ctx, upd,
		merchantID,
		id,
		string(o.State),
		o.Outstanding.String(),
		o.Refunded.String(),
		o.Email,
		o.Description,
		metaJSON,
		o.CompletedAt,
	))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                             domain.Order
		state, captureMode            string
		amount, outstanding, refunded string
		metaJSON                      []byte
	)
	err := row.Scan(
		&o.ID,
		&o.PublicID,
		&o.MerchantID,
		&o.Type,
		&state,
		&amount,
		&o.Currency,
		&o.SettlementCurrency,
		&outstanding,
		&refunded,
		&o.Email,
		&o.Description,
		&captureMode,
		&o.MerchantOrderExtRef,
		&o.CustomerID,
		&metaJSON,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: scan error=%v", err)
		return nil, err
	}
	o.State = merchant.OrderState(state)
	o.CaptureMode = domain.CaptureMode(captureMode)
	for _, f := range []struct {
		dst *money.Amount
		src string
	}{{&o.Amount, amount}, {&o.Outstanding, outstanding}, {&o.Refunded, refunded}} {
		v, err := money.Parse(f.src)
		if err != nil {
			r.logger.Printf("order repo: decode amount id=%s err=%v", o.ID, err)
			return nil, err
		}
		*f.dst = v
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &o.Metadata); err != nil {
			r.logger.Printf("order repo: decode metadata id=%s err=%v", o.ID, err)
			return nil, err
		}
	}
	return &o, nil
}

func metadataOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
