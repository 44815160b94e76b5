package store

import (
	"fmt"
	"strings"
)

// The DDL below sticks to the type subset all three supported drivers
// accept: VARCHAR primary keys (MySQL cannot index bare TEXT), TIMESTAMP,
// BOOLEAN, BIGINT, and DOUBLE PRECISION. Row timestamps are set in Go so
// no driver-specific DEFAULT clauses are needed.
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(128) NOT NULL,
			name VARCHAR(255) NOT NULL,
			is_active BOOLEAN NOT NULL,
			last_login_at TIMESTAMP NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS api_keys (
			id VARCHAR(36) PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			key_hash VARCHAR(64) UNIQUE NOT NULL,
			key_prefix VARCHAR(16) NOT NULL,
			permissions_json VARCHAR(255) NOT NULL,
			rate_limit BIGINT NOT NULL,
			usage_count BIGINT NOT NULL,
			is_active BOOLEAN NOT NULL,
			expires_at TIMESTAMP NULL,
			last_used_at TIMESTAMP NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS ozone_models (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			version VARCHAR(64) NOT NULL,
			model_type VARCHAR(64) NOT NULL,
			description TEXT,
			performance_score DOUBLE PRECISION NULL,
			energy_efficiency DOUBLE PRECISION NULL,
			training_data_size BIGINT NULL,
			is_active BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (name, version)
		)`,

		`CREATE TABLE IF NOT EXISTS benchmark_suites (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) UNIQUE NOT NULL,
			category VARCHAR(64) NOT NULL,
			description TEXT,
			difficulty_level BIGINT NULL,
			total_tests BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS benchmark_results (
			id VARCHAR(36) PRIMARY KEY,
			model_id VARCHAR(36) NOT NULL REFERENCES ozone_models(id),
			suite_id VARCHAR(36) NOT NULL REFERENCES benchmark_suites(id),
			metric_name VARCHAR(128) NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			unit VARCHAR(32),
			test_date TIMESTAMP NOT NULL,
			is_verified BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS newsletters (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(32) NOT NULL,
			source VARCHAR(64) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS access_requests (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			company VARCHAR(255) NOT NULL,
			message TEXT,
			request_type VARCHAR(64) NOT NULL,
			status VARCHAR(32) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			setting_key VARCHAR(128) PRIMARY KEY,
			setting_value TEXT NOT NULL
		)`,

		`CREATE INDEX idx_api_keys_account ON api_keys (account_id)`,
		`CREATE INDEX idx_benchmark_results_test_date ON benchmark_results (test_date)`,
		`CREATE INDEX idx_access_requests_email ON access_requests (email)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// CREATE INDEX has no portable IF NOT EXISTS on MySQL; treat
			// re-creation as a no-op so migrations stay idempotent.
			if strings.Contains(strings.ToLower(err.Error()), "already exists") ||
				strings.Contains(strings.ToLower(err.Error()), "duplicate key name") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
