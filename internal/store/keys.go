package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leap-ai/ozone/internal/model"
)

// apiKeyRow maps 1:1 to the api_keys table. The permissions_json column
// stores the JSON-encoded model.Permissions.
type apiKeyRow struct {
	ID              string     `db:"id"`
	AccountID       string     `db:"account_id"`
	Name            string     `db:"name"`
	KeyHash         string     `db:"key_hash"`
	KeyPrefix       string     `db:"key_prefix"`
	PermissionsJSON string     `db:"permissions_json"`
	RateLimit       int64      `db:"rate_limit"`
	UsageCount      int64      `db:"usage_count"`
	IsActive        bool       `db:"is_active"`
	ExpiresAt       *time.Time `db:"expires_at"`
	LastUsedAt      *time.Time `db:"last_used_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func apiKeyRowFromModel(k *model.APIKey) (apiKeyRow, error) {
	permsJSON, err := json.Marshal(k.Permissions)
	if err != nil {
		return apiKeyRow{}, fmt.Errorf("marshal permissions: %w", err)
	}
	return apiKeyRow{
		ID:              k.ID,
		AccountID:       k.AccountID,
		Name:            k.Name,
		KeyHash:         k.KeyHash,
		KeyPrefix:       k.KeyPrefix,
		PermissionsJSON: string(permsJSON),
		RateLimit:       k.RateLimit,
		UsageCount:      k.UsageCount,
		IsActive:        k.IsActive,
		ExpiresAt:       k.ExpiresAt,
		LastUsedAt:      k.LastUsedAt,
		CreatedAt:       k.CreatedAt,
		UpdatedAt:       k.UpdatedAt,
	}, nil
}

func (r apiKeyRow) toModel() (model.APIKey, error) {
	var perms model.Permissions
	if r.PermissionsJSON != "" {
		if err := json.Unmarshal([]byte(r.PermissionsJSON), &perms); err != nil {
			return model.APIKey{}, fmt.Errorf("unmarshal permissions: %w", err)
		}
	}
	return model.APIKey{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Name:        r.Name,
		KeyHash:     r.KeyHash,
		KeyPrefix:   r.KeyPrefix,
		Permissions: perms,
		RateLimit:   r.RateLimit,
		UsageCount:  r.UsageCount,
		IsActive:    r.IsActive,
		ExpiresAt:   r.ExpiresAt,
		LastUsedAt:  r.LastUsedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// CreateAPIKey inserts a new API key record. The KeyHash must already be
// set (use HashAPIKey). ID, CreatedAt, and UpdatedAt are populated here.
func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	now := time.Now().UTC()
	key.ID = uuid.NewString()
	key.CreatedAt = now
	key.UpdatedAt = now

	row, err := apiKeyRowFromModel(key)
	if err != nil {
		return err
	}

	const q = `INSERT INTO api_keys
		(id, account_id, name, key_hash, key_prefix, permissions_json,
		 rate_limit, usage_count, is_active, expires_at, last_used_at,
		 created_at, updated_at)
		VALUES
		(:id, :account_id, :name, :key_hash, :key_prefix, :permissions_json,
		 :rate_limit, :usage_count, :is_active, :expires_at, :last_used_at,
		 :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// GetAPIKeyByHash looks up an active API key by its SHA-256 hash. The
// match is exact equality on the full digest; revoked keys are excluded
// at the query level so they can never authenticate again.
func (s *Store) GetAPIKeyByHash(ctx context.Context, hash string) (*model.APIKey, error) {
	var row apiKeyRow
	q := s.rebind(`SELECT * FROM api_keys WHERE key_hash = ? AND is_active = ?`)
	if err := s.db.GetContext(ctx, &row, q, hash, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api key by hash: %w", err)
	}
	key, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// GetAPIKey returns a key by ID regardless of active state.
func (s *Store) GetAPIKey(ctx context.Context, id string) (*model.APIKey, error) {
	var row apiKeyRow
	q := s.rebind(`SELECT * FROM api_keys WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api key: %w", err)
	}
	key, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// ListAPIKeysByAccount returns an account's active keys, newest first.
func (s *Store) ListAPIKeysByAccount(ctx context.Context, accountID string) ([]model.APIKey, error) {
	var rows []apiKeyRow
	q := s.rebind(`SELECT * FROM api_keys
		WHERE account_id = ? AND is_active = ?
		ORDER BY created_at DESC`)
	if err := s.db.SelectContext(ctx, &rows, q, accountID, true); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	keys := make([]model.APIKey, 0, len(rows))
	for _, r := range rows {
		k, err := r.toModel()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// ListAPIKeys returns every key in the store, newest first. Used by the
// operator CLI.
func (s *Store) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var rows []apiKeyRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM api_keys ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	keys := make([]model.APIKey, 0, len(rows))
	for _, r := range rows {
		k, err := r.toModel()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// RevokeAPIKey deactivates a key owned by accountID. Revocation is a
// permanent soft delete: the row stays, is_active never goes back to true,
// and the hash can never authenticate again. Returns ErrNotFound when the
// key does not exist, belongs to someone else, or is already revoked.
func (s *Store) RevokeAPIKey(ctx context.Context, id, accountID string) error {
	q := s.rebind(`UPDATE api_keys SET is_active = ?, updated_at = ?
		WHERE id = ? AND account_id = ? AND is_active = ?`)
	result, err := s.db.ExecContext(ctx, q, false, time.Now().UTC(), id, accountID, true)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke api key rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeAPIKeyByID deactivates a key without an ownership check. Used by
// the operator CLI.
func (s *Store) RevokeAPIKeyByID(ctx context.Context, id string) error {
	q := s.rebind(`UPDATE api_keys SET is_active = ?, updated_at = ?
		WHERE id = ? AND is_active = ?`)
	result, err := s.db.ExecContext(ctx, q, false, time.Now().UTC(), id, true)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke api key rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeAPIKeyUsage performs the quota check and the usage increment as a
// single conditional UPDATE. The row is touched only while it is active and
// under its limit, so N concurrent requests against k remaining quota yield
// exactly k increments — there is no read-modify-write window. Returns
// false when the quota is exhausted (or the key was revoked in between).
func (s *Store) ConsumeAPIKeyUsage(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC()
	q := s.rebind(`UPDATE api_keys
		SET usage_count = usage_count + 1, last_used_at = ?, updated_at = ?
		WHERE id = ? AND is_active = ? AND usage_count < rate_limit`)
	result, err := s.db.ExecContext(ctx, q, now, now, id, true)
	if err != nil {
		return false, fmt.Errorf("consume api key usage: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume api key usage rows affected: %w", err)
	}
	return n == 1, nil
}

// CountAPIKeys returns the total number of keys, active or not.
func (s *Store) CountAPIKeys(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM api_keys`); err != nil {
		return 0, fmt.Errorf("count api keys: %w", err)
	}
	return count, nil
}
