package order

import (
	"context"

	"merchant-client/internal/domain"
)

// MutateFunc changes an order in place. Returning an error aborts the
// change and leaves the stored order untouched.
type MutateFunc func(o *domain.Order) error

// Repository persists and fetches orders scoped to a merchant.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, merchantID, id string) (*domain.Order, error)
	List(ctx context.Context, merchantID string, f domain.OrderFilter) ([]domain.Order, error)
	// Mutate loads the order, applies fn and stores the result atomically.
	Mutate(ctx context.Context, merchantID, id string, fn MutateFunc) (*domain.Order, error)
}
