package customer

import (
	"context"
	"fmt"
	"strings"

	"merchant-client/internal/domain"
	custrepo "merchant-client/internal/repository/customer"
)

// Service handles a merchant's customer records.
type Service struct {
	repo custrepo.Repository
}

func New(repo custrepo.Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures the fields accepted when creating a customer.
type CreateInput struct {
	FullName     *string `json:"full_name"`
	BusinessName *string `json:"business_name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
}

// UpdateInput holds a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	FullName     *string `json:"full_name"`
	BusinessName *string `json:"business_name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
}

// Create registers a new customer for the merchant.
func (s *Service) Create(ctx context.Context, merchantID string, in CreateInput) (*domain.Customer, error) {
	if in.Email == nil {
		return nil, fmt.Errorf("%w: email required", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(*in.Email)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Customer{
		MerchantID:   merchantID,
		FullName:     trimmed(in.FullName),
		BusinessName: trimmed(in.BusinessName),
		Email:        email,
		Phone:        trimmed(in.Phone),
	})
}

func (s *Service) Get(ctx context.Context, merchantID, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, merchantID, id)
}

func (s *Service) List(ctx context.Context, merchantID string) ([]domain.Customer, error) {
	return s.repo.List(ctx, merchantID)
}

// Update applies the supplied fields to an existing customer.
func (s *Service) Update(ctx context.Context, merchantID, id string, in UpdateInput) (*domain.Customer, error) {
	c, err := s.repo.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		c.Email = email
	}
	if in.FullName != nil {
		c.FullName = trimmed(in.FullName)
	}
	if in.BusinessName != nil {
		c.BusinessName = trimmed(in.BusinessName)
	}
	if in.Phone != nil {
		c.Phone = trimmed(in.Phone)
	}
	return s.repo.Update(ctx, *c)
}

func (s *Service) Delete(ctx context.Context, merchantID, id string) error {
	return s.repo.Delete(ctx, merchantID, id)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "", fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, email)
	}
	return email, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
