package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leap-ai/ozone/internal/model"
	"github.com/leap-ai/ozone/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrKeyExpired         = errors.New("api key expired")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrValidation         = errors.New("validation failed")
)

// Principal is the identity a validated API key resolves to. It carries
// everything the gateway needs to authorize and report on a request
// without re-reading the key row.
type Principal struct {
	KeyID       string
	AccountID   string
	Permissions model.Permissions
	RateLimit   int64
	UsageCount  int64
}

// KeyService mints, validates, and revokes API keys.
type KeyService struct {
	store *store.Store
}

// NewKeyService creates a KeyService backed by the given store.
func NewKeyService(st *store.Store) *KeyService {
	return &KeyService{store: st}
}

// Issue mints a new credential bound to the given account. The returned
// IssuedKey carries the plaintext secret; this is the only time it exists
// server-side. If the insert fails, no plaintext escapes.
func (s *KeyService) Issue(ctx context.Context, accountID, name string) (*model.IssuedKey, error) {
	if accountID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: key name is required", ErrValidation)
	}

	// 32 random bytes, hex encoded, behind the constant public prefix.
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return nil, fmt.Errorf("generate key material: %w", err)
	}
	plaintext := model.KeyPrefix + hex.EncodeToString(rawBytes)

	key := &model.APIKey{
		AccountID:   accountID,
		Name:        strings.TrimSpace(name),
		KeyHash:     store.HashAPIKey(plaintext),
		KeyPrefix:   model.KeyPrefix,
		Permissions: model.DefaultPermissions(),
		RateLimit:   model.DefaultRateLimit,
		UsageCount:  0,
		IsActive:    true,
	}

	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, fmt.Errorf("persist key: %w", err)
	}

	return &model.IssuedKey{Key: key, Plaintext: plaintext}, nil
}

// Authenticate checks a presented secret against stored key hashes. The
// digest is recomputed with the issuance algorithm and matched by exact
// equality; revoked keys are filtered out at the store level so they can
// never come back.
func (s *KeyService) Authenticate(ctx context.Context, rawKey string) (*Principal, error) {
	if rawKey == "" {
		return nil, ErrInvalidCredentials
	}

	key, err := s.store.GetAPIKeyByHash(ctx, store.HashAPIKey(rawKey))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
		return nil, ErrKeyExpired
	}

	return &Principal{
		KeyID:       key.ID,
		AccountID:   key.AccountID,
		Permissions: key.Permissions,
		RateLimit:   key.RateLimit,
		UsageCount:  key.UsageCount,
	}, nil
}

// List returns the account's active keys, newest first.
func (s *KeyService) List(ctx context.Context, accountID string) ([]model.APIKey, error) {
	if accountID == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.ListAPIKeysByAccount(ctx, accountID)
}

// Revoke permanently deactivates a key the account owns. There is no
// reactivation path; a revoked key never authenticates again.
func (s *KeyService) Revoke(ctx context.Context, accountID, keyID string) error {
	if accountID == "" {
		return ErrUnauthenticated
	}
	return s.store.RevokeAPIKey(ctx, keyID, accountID)
}
