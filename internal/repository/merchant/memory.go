package merchant

import (
	"context"
	"sync"
	"time"

	"merchant-client/internal/domain"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu    sync.RWMutex
	byKey map[string]domain.Merchant
}

// NewMemory returns a Repository that keeps merchants in process memory.
func NewMemory() Repository {
	return &memoryRepo{byKey: map[string]domain.Merchant{}}
}

func (r *memoryRepo) GetByKey(_ context.Context, key string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byKey[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (r *memoryRepo) Create(_ context.Context, m domain.Merchant) (*domain.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[m.Key]; ok {
		return nil, domain.ErrAlreadyExists
	}
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	r.byKey[m.Key] = m
	return &m, nil
}
