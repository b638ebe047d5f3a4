package merchant

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

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Merchant, error) {
	const q = `
SELECT id::text, key, name, live, created_at
FROM merchants
WHERE key = $1
`
	var m domain.Merchant
	err := r.pool.QueryRow(ctx, q, key).Scan(&m.ID, &m.Key, &m.Name, &m.Live, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresRepo) Create(ctx context.Context, m domain.Merchant) (*domain.Merchant, error) {
	const q = `
INSERT INTO merchants (key, name, live)
VALUES ($1, $2, $3)
RETURNING id::text, created_at
`
	out := m
	err := r.pool.QueryRow(ctx, q, m.Key, m.Name, m.Live).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &out, nil
}
