package customer

import (
	"context"

	"merchant-client/internal/domain"
)

// Repository persists and fetches customers scoped to a merchant.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, merchantID, id string) (*domain.Customer, error)
	List(ctx context.Context, merchantID string) ([]domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Delete(ctx context.Context, merchantID, id string) error
	// AddPaymentMethod saves pm on the customer unless a method with the
	// same id is already saved.
	AddPaymentMethod(ctx context.Context, merchantID, id string, pm domain.PaymentMethod) (*domain.Customer, error)
}
