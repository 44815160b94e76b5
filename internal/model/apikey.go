package model

import "time"

// KeyPrefix is the constant, publicly known prefix of every Ozone API key.
// It lets downstream consumers recognize the credential type before
// validation. It carries no secret material.
const KeyPrefix = "leap_"

// DefaultRateLimit is the lifetime request quota assigned to new keys.
const DefaultRateLimit = 1000

// Permissions is the capability set attached to an API key.
type Permissions struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
}

// DefaultPermissions returns the capability set for newly issued keys.
func DefaultPermissions() Permissions {
	return Permissions{Read: true, Write: false}
}

// APIKey represents one issued credential. The raw key is never stored;
// only a SHA-256 hash and the constant prefix are persisted.
type APIKey struct {
	ID          string      `json:"id" db:"id"`
	AccountID   string      `json:"user_id" db:"account_id"`
	Name        string      `json:"name" db:"name"`
	KeyHash     string      `json:"-" db:"key_hash"` // SHA-256 hash, never expose
	KeyPrefix   string      `json:"key_prefix" db:"key_prefix"`
	Permissions Permissions `json:"permissions" db:"-"`
	RateLimit   int64       `json:"rate_limit" db:"rate_limit"`
	UsageCount  int64       `json:"usage_count" db:"usage_count"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty" db:"expires_at"`
	LastUsedAt  *time.Time  `json:"last_used_at,omitempty" db:"last_used_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// IssuedKey pairs a freshly persisted key with its one-time plaintext.
// The plaintext exists only in this value and in the caller's hands; it is
// a distinct type from APIKey so it cannot be persisted or re-returned by
// accident.
type IssuedKey struct {
	Key       *APIKey
	Plaintext string
}
