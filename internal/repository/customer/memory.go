package customer

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"merchant-client/internal/domain"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewMemory returns a Repository that keeps customers in process memory.
func NewMemory() Repository {
	return &memoryRepo{items: map[string]domain.Customer{}}
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.Email = strings.ToLower(c.Email)
	if r.emailTaken(c.MerchantID, c.Email, "") {
		return nil, domain.ErrAlreadyExists
	}
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.PaymentMethods = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	r.items[c.ID] = c
	return &c, nil
}

func (r *memoryRepo) GetByID(_ context.Context, merchantID, id string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok || c.MerchantID != merchantID {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepo) List(_ context.Context, merchantID string) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Customer{}
	for _, c := range r.items {
		if c.MerchantID == merchantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.items[c.ID]
	if !ok || prev.MerchantID != c.MerchantID {
		return nil, domain.ErrNotFound
	}
	c.Email = strings.ToLower(c.Email)
	if r.emailTaken(c.MerchantID, c.Email, c.ID) {
		return nil, domain.ErrAlreadyExists
	}
	c.CreatedAt = prev.CreatedAt
	c.PaymentMethods = prev.PaymentMethods
	c.UpdatedAt = time.Now().UTC()
	r.items[c.ID] = c
	return &c, nil
}

func (r *memoryRepo) Delete(_ context.Context, merchantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok || c.MerchantID != merchantID {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memoryRepo) AddPaymentMethod(_ context.Context, merchantID, id string, pm domain.PaymentMethod) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok || c.MerchantID != merchantID {
		return nil, domain.ErrNotFound
	}
	if !slices.ContainsFunc(c.PaymentMethods, func(m domain.PaymentMethod) bool { return m.ID == pm.ID }) {
		c.PaymentMethods = append(slices.Clone(c.PaymentMethods), pm)
		c.UpdatedAt = time.Now().UTC()
		r.items[id] = c
	}
	return &c, nil
}

// emailTaken must be called with mu held.
func (r *memoryRepo) emailTaken(merchantID, email, exceptID string) bool {
	for id, c := range r.items {
		if id != exceptID && c.MerchantID == merchantID && c.Email == email {
			return true
		}
	}
	return false
}
