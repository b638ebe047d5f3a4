package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"merchant-client/internal/domain"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Order
	now   func() time.Time
}

// NewMemory returns a Repository that keeps orders in process memory.
func NewMemory() Repository {
	return &memoryRepo{
		items: map[string]domain.Order{},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryRepo) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	o.ID = uuid.NewString()
	o.PublicID = uuid.NewString()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Metadata = copyMetadata(o.Metadata)
	r.items[o.ID] = o
	return clone(o), nil
}

func (r *memoryRepo) GetByID(_ context.Context, merchantID, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.items[id]
	if !ok || o.MerchantID != merchantID {
		return nil, domain.ErrNotFound
	}
	return clone(o), nil
}

func (r *memoryRepo) List(_ context.Context, merchantID string, f domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Order{}
	for _, o := range r.items {
		if o.MerchantID == merchantID && f.Matches(o) {
			out = append(out, *clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memoryRepo) Mutate(_ context.Context, merchantID, id string, fn MutateFunc) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[id]
	if !ok || stored.MerchantID != merchantID {
		return nil, domain.ErrNotFound
	}
	work := clone(stored)
	if err := fn(work); err != nil {
		return nil, err
	}
	// Identity and creation fields are not mutable.
	work.ID = stored.ID
	work.PublicID = stored.PublicID
	work.MerchantID = stored.MerchantID
	work.Amount = stored.Amount
	work.Currency = stored.Currency
	work.CreatedAt = stored.CreatedAt
	work.UpdatedAt = r.now()
	r.items[id] = *work
	return clone(*work), nil
}

func clone(o domain.Order) *domain.Order {
	o.Metadata = copyMetadata(o.Metadata)
	return &o
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
