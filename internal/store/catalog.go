package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leap-ai/ozone/internal/model"
)

// ---------------------------------------------------------------------------
// Models
// ---------------------------------------------------------------------------

// CreateModel inserts a new catalog model. ID, CreatedAt, and UpdatedAt are
// populated after a successful insert.
func (s *Store) CreateModel(ctx context.Context, m *model.Model) error {
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now

	const q = `INSERT INTO ozone_models
		(id, name, version, model_type, description, performance_score,
		 energy_efficiency, training_data_size, is_active, created_at, updated_at)
		VALUES
		(:id, :name, :version, :model_type, :description, :performance_score,
		 :energy_efficiency, :training_data_size, :is_active, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, m); err != nil {
		return fmt.Errorf("insert model: %w", err)
	}
	return nil
}

// GetModelByNameVersion returns a model by its unique (name, version) pair.
func (s *Store) GetModelByNameVersion(ctx context.Context, name, version string) (*model.Model, error) {
	var m model.Model
	q := s.rebind(`SELECT * FROM ozone_models WHERE name = ? AND version = ?`)
	if err := s.db.GetContext(ctx, &m, q, name, version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get model: %w", err)
	}
	return &m, nil
}

// ListActiveModels returns all active models, newest first.
func (s *Store) ListActiveModels(ctx context.Context) ([]model.Model, error) {
	var models []model.Model
	q := s.rebind(`SELECT * FROM ozone_models WHERE is_active = ? ORDER BY created_at DESC`)
	if err := s.db.SelectContext(ctx, &models, q, true); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// CountModels returns the total number of catalog models.
func (s *Store) CountModels(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM ozone_models`); err != nil {
		return 0, fmt.Errorf("count models: %w", err)
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Benchmark suites
// ---------------------------------------------------------------------------

// CreateBenchmarkSuite inserts a new benchmark suite.
func (s *Store) CreateBenchmarkSuite(ctx context.Context, suite *model.BenchmarkSuite) error {
	now := time.Now().UTC()
	suite.ID = uuid.NewString()
	suite.CreatedAt = now
	suite.UpdatedAt = now

	const q = `INSERT INTO benchmark_suites
		(id, name, category, description, difficulty_level, total_tests, created_at, updated_at)
		VALUES
		(:id, :name, :category, :description, :difficulty_level, :total_tests, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, suite); err != nil {
		return fmt.Errorf("insert benchmark suite: %w", err)
	}
	return nil
}

// GetBenchmarkSuiteByName returns a suite by its unique name.
func (s *Store) GetBenchmarkSuiteByName(ctx context.Context, name string) (*model.BenchmarkSuite, error) {
	var suite model.BenchmarkSuite
	q := s.rebind(`SELECT * FROM benchmark_suites WHERE name = ?`)
	if err := s.db.GetContext(ctx, &suite, q, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get benchmark suite: %w", err)
	}
	return &suite, nil
}

// ---------------------------------------------------------------------------
// Benchmark results
// ---------------------------------------------------------------------------

// CreateBenchmarkResult inserts a new benchmark measurement.
func (s *Store) CreateBenchmarkResult(ctx context.Context, r *model.BenchmarkResult) error {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO benchmark_results
		(id, model_id, suite_id, metric_name, value, unit, test_date, is_verified, created_at)
		VALUES
		(:id, :model_id, :suite_id, :metric_name, :value, :unit, :test_date, :is_verified, :created_at)`

	if _, err := s.db.NamedExecContext(ctx, q, r); err != nil {
		return fmt.Errorf("insert benchmark result: %w", err)
	}
	return nil
}

// benchmarkJoinRow is the flat scan target for the benchmarks join query.
type benchmarkJoinRow struct {
	ID            string    `db:"id"`
	ModelID       string    `db:"model_id"`
	SuiteID       string    `db:"suite_id"`
	MetricName    string    `db:"metric_name"`
	Value         float64   `db:"value"`
	Unit          *string   `db:"unit"`
	TestDate      time.Time `db:"test_date"`
	IsVerified    bool      `db:"is_verified"`
	CreatedAt     time.Time `db:"created_at"`
	ModelName     string    `db:"model_name"`
	ModelVersion  string    `db:"model_version"`
	SuiteName     string    `db:"suite_name"`
	SuiteCategory string    `db:"suite_category"`
}

func (r benchmarkJoinRow) toModel() model.BenchmarkRow {
	unit := ""
	if r.Unit != nil {
		unit = *r.Unit
	}
	return model.BenchmarkRow{
		BenchmarkResult: model.BenchmarkResult{
			ID:         r.ID,
			ModelID:    r.ModelID,
			SuiteID:    r.SuiteID,
			MetricName: r.MetricName,
			Value:      r.Value,
			Unit:       unit,
			TestDate:   r.TestDate,
			IsVerified: r.IsVerified,
			CreatedAt:  r.CreatedAt,
		},
		Model: model.BenchmarkModelRef{Name: r.ModelName, Version: r.ModelVersion},
		Suite: model.BenchmarkSuiteRef{Name: r.SuiteName, Category: r.SuiteCategory},
	}
}

// ListVerifiedBenchmarks returns verified results joined with their model
// and suite, newest test date first, capped at limit.
func (s *Store) ListVerifiedBenchmarks(ctx context.Context, limit int) ([]model.BenchmarkRow, error) {
	var rows []benchmarkJoinRow
	q := s.rebind(`SELECT
			r.id, r.model_id, r.suite_id, r.metric_name, r.value, r.unit,
			r.test_date, r.is_verified, r.created_at,
			m.name AS model_name, m.version AS model_version,
			bs.name AS suite_name, bs.category AS suite_category
		FROM benchmark_results r
		JOIN ozone_models m ON m.id = r.model_id
		JOIN benchmark_suites bs ON bs.id = r.suite_id
		WHERE r.is_verified = ?
		ORDER BY r.test_date DESC
		LIMIT ?`)
	if err := s.db.SelectContext(ctx, &rows, q, true, limit); err != nil {
		return nil, fmt.Errorf("list benchmarks: %w", err)
	}

	results := make([]model.BenchmarkRow, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toModel())
	}
	return results, nil
}

// CountBenchmarkResults returns the total number of benchmark rows.
func (s *Store) CountBenchmarkResults(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM benchmark_results`); err != nil {
		return 0, fmt.Errorf("count benchmark results: %w", err)
	}
	return count, nil
}
