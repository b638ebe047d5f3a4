package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"merchant-client/internal/domain"
	apikeyrepo "merchant-client/internal/repository/apikey"
	merchantrepo "merchant-client/internal/repository/merchant"
)

const (
	livePrefix    = "sk_live_"
	sandboxPrefix = "sk_sandbox_"
)

// Service manages merchant accounts and the API keys that authenticate them.
type Service struct {
	merchants merchantrepo.Repository
	keys      apikeyrepo.Repository
}

func New(merchants merchantrepo.Repository, keys apikeyrepo.Repository) *Service {
	return &Service{merchants: merchants, keys: keys}
}

// EnsureMerchant returns the merchant with key, creating it when absent.
func (s *Service) EnsureMerchant(ctx context.Context, key, name string, live bool) (*domain.Merchant, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: merchant key required", domain.ErrInvalidInput)
	}
	m, err := s.merchants.GetByKey(ctx, key)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	m, err = s.merchants.Create(ctx, domain.Merchant{Key: key, Name: name, Live: live})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return s.merchants.GetByKey(ctx, key)
	}
	return m, err
}

// IssueKey generates and stores a fresh API key for the merchant.
func (s *Service) IssueKey(ctx context.Context, m *domain.Merchant) (string, error) {
	prefix := sandboxPrefix
	if m.Live {
		prefix = livePrefix
	}
	for i := 0; i < 5; i++ {
		key, err := randomKey(prefix)
		if err != nil {
			return "", err
		}
		err = s.keys.Create(ctx, domain.APIKey{Key: key, MerchantID: m.ID})
		if err == nil {
			return key, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("api key collision")
}

// RegisterKey binds a caller-chosen key to the merchant. Registering the
// same key for the same merchant again is a no-op.
func (s *Service) RegisterKey(ctx context.Context, merchantID, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: api key required", domain.ErrInvalidInput)
	}
	err := s.keys.Create(ctx, domain.APIKey{Key: key, MerchantID: merchantID})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		return err
	}
	existing, getErr := s.keys.Get(ctx, key)
	if getErr != nil {
		return getErr
	}
	if existing.MerchantID != merchantID {
		return err
	}
	return nil
}

// RevokeKey removes key so it no longer authenticates.
func (s *Service) RevokeKey(ctx context.Context, key string) error {
	return s.keys.Delete(ctx, key)
}

// Authenticate resolves key to the id of the merchant it belongs to.
func (s *Service) Authenticate(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", domain.ErrUnauthorized
	}
	k, err := s.keys.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", err
	}
	return k.MerchantID, nil
}

func randomKey(prefix string) (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return prefix + base64.RawURLEncoding.EncodeToString(b), nil
}
