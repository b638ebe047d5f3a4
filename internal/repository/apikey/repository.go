package apikey

import (
	"context"

	"merchant-client/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, key domain.APIKey) error
	Get(ctx context.Context, key string) (*domain.APIKey, error)
	Delete(ctx context.Context, key string) error
}
