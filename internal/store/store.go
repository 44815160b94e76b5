package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store persists the Ozone platform state: accounts, API keys, the model
// catalog, benchmark data, newsletter subscribers, and access requests.
// It runs on SQLite by default and on PostgreSQL or MySQL for hosted
// deployments.
type Store struct {
	db     *sqlx.DB
	driver string
}

// NewStore opens the default SQLite store rooted at dataDir. Pass an empty
// string for an in-memory database (used by tests).
func NewStore(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "ozone.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	s := &Store{db: db, driver: "sqlite"}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Open connects to an external database. Supported drivers are "postgres"
// (via the pgx stdlib adapter) and "mysql".
func Open(driver, dsn string) (*Store, error) {
	var driverName string
	switch driver {
	case "postgres":
		driverName = "pgx"
	case "mysql":
		driverName = "mysql"
	default:
		return nil, fmt.Errorf("unsupported driver %q (use sqlite, postgres, or mysql)", driver)
	}

	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the configured driver name (sqlite, postgres, or mysql).
func (s *Store) Driver() string {
	return s.driver
}

// rebind converts ?-style placeholders to the driver's bind style.
func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

// HashAPIKey returns the hex-encoded SHA-256 hash of a raw API key string.
// Issuance and gateway lookup both use this digest; the plaintext is never
// stored or compared directly.
func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
