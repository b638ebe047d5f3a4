package apikey

import (
	"context"
	"sync"
	"time"

	"merchant-client/internal/domain"
)

type memoryRepo struct {
	mu   sync.RWMutex
	keys map[string]domain.APIKey
}

// NewMemory returns a Repository that keeps API keys in process memory.
func NewMemory() Repository {
	return &memoryRepo{keys: map[string]domain.APIKey{}}
}

func (r *memoryRepo) Create(_ context.Context, key domain.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[key.Key]; ok {
		return domain.ErrAlreadyExists
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	r.keys[key.Key] = key
	return nil
}

func (r *memoryRepo) Get(_ context.Context, key string) (*domain.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &k, nil
}

func (r *memoryRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.keys, key)
	return nil
}
