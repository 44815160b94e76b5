package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSetting returns the value for a settings key. ErrNotFound when unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	q := s.rebind(`SELECT setting_value FROM settings WHERE setting_key = ?`)
	if err := s.db.GetContext(ctx, &value, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting stores or replaces a settings key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	insertQ := s.rebind(`INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)`)
	if _, err := s.db.ExecContext(ctx, insertQ, key, value); err == nil {
		return nil
	} else if !isUniqueViolation(err) {
		return fmt.Errorf("insert setting: %w", err)
	}

	updateQ := s.rebind(`UPDATE settings SET setting_value = ? WHERE setting_key = ?`)
	if _, err := s.db.ExecContext(ctx, updateQ, value, key); err != nil {
		return fmt.Errorf("update setting: %w", err)
	}
	return nil
}
