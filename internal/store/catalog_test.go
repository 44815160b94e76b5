package store

import (
	"context"
	"testing"
	"time"

	"github.com/leap-ai/ozone/internal/model"
)

func seedCatalog(t *testing.T, s *Store) (*model.Model, *model.BenchmarkSuite) {
	t.Helper()
	ctx := context.Background()

	score := 91.5
	m := &model.Model{
		Name:             "O3-Mini",
		Version:          "1.2",
		ModelType:        "language",
		Description:      "Compact reasoning model",
		PerformanceScore: &score,
		IsActive:         true,
	}
	if err := s.CreateModel(ctx, m); err != nil {
		t.Fatalf("CreateModel: %v", err)
	}

	suite := &model.BenchmarkSuite{
		Name:       "MMLU",
		Category:   "reasoning",
		TotalTests: 14042,
	}
	if err := s.CreateBenchmarkSuite(ctx, suite); err != nil {
		t.Fatalf("CreateBenchmarkSuite: %v", err)
	}

	return m, suite
}

func TestModelLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, _ := seedCatalog(t, s)

	got, err := s.GetModelByNameVersion(ctx, "O3-Mini", "1.2")
	if err != nil {
		t.Fatalf("GetModelByNameVersion: %v", err)
	}
	if got.ID != m.ID {
		t.Errorf("got ID %q, want %q", got.ID, m.ID)
	}

	if _, err := s.GetModelByNameVersion(ctx, "O3-Mini", "9.9"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	list, err := s.ListActiveModels(ctx)
	if err != nil {
		t.Fatalf("ListActiveModels: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d models, want 1", len(list))
	}
	if list[0].PerformanceScore == nil || *list[0].PerformanceScore != 91.5 {
		t.Errorf("performance_score not round-tripped: %+v", list[0].PerformanceScore)
	}
}

func TestListVerifiedBenchmarks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, suite := seedCatalog(t, s)

	verified := &model.BenchmarkResult{
		ModelID:    m.ID,
		SuiteID:    suite.ID,
		MetricName: "accuracy",
		Value:      88.4,
		Unit:       "percent",
		TestDate:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		IsVerified: true,
	}
	if err := s.CreateBenchmarkResult(ctx, verified); err != nil {
		t.Fatalf("CreateBenchmarkResult: %v", err)
	}

	unverified := &model.BenchmarkResult{
		ModelID:    m.ID,
		SuiteID:    suite.ID,
		MetricName: "accuracy",
		Value:      99.9,
		TestDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		IsVerified: false,
	}
	if err := s.CreateBenchmarkResult(ctx, unverified); err != nil {
		t.Fatalf("CreateBenchmarkResult unverified: %v", err)
	}

	rows, err := s.ListVerifiedBenchmarks(ctx, 10)
	if err != nil {
		t.Fatalf("ListVerifiedBenchmarks: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want only the verified result", len(rows))
	}

	row := rows[0]
	if row.Value != 88.4 {
		t.Errorf("got value %v, want 88.4", row.Value)
	}
	if row.Model.Name != "O3-Mini" || row.Model.Version != "1.2" {
		t.Errorf("model join missing: %+v", row.Model)
	}
	if row.Suite.Name != "MMLU" || row.Suite.Category != "reasoning" {
		t.Errorf("suite join missing: %+v", row.Suite)
	}

	count, err := s.CountBenchmarkResults(ctx)
	if err != nil {
		t.Fatalf("CountBenchmarkResults: %v", err)
	}
	if count != 2 {
		t.Errorf("got %d results, want 2", count)
	}
}
