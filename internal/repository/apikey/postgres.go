package apikey

import (
	"context"
	"errors"

	"merchant-client/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, key domain.APIKey) error {
	const q = `
INSERT INTO api_keys (key, merchant_id)
VALUES ($1, $2)
`
	_, err := r.pool.Exec(ctx, q, key.Key, key.MerchantID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, key string) (*domain.APIKey, error) {
	const q = `
SELECT key, merchant_id::text, created_at
FROM api_keys
WHERE key = $1
LIMIT 1
`
	var out domain.APIKey
	if err := r.pool.QueryRow(ctx, q, key).Scan(&out.Key, &out.MerchantID, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, key string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM api_keys WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
