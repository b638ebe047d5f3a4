package merchant

import (
	"context"

	"merchant-client/internal/domain"
)

// Repository persists merchant accounts.
type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Merchant, error)
	Create(ctx context.Context, m domain.Merchant) (*domain.Merchant, error)
}
