package model

import "time"

// Model is one entry in the public Ozone model catalog.
type Model struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Version          string    `json:"version" db:"version"`
	ModelType        string    `json:"model_type" db:"model_type"`
	Description      string    `json:"description,omitempty" db:"description"`
	PerformanceScore *float64  `json:"performance_score,omitempty" db:"performance_score"`
	EnergyEfficiency *float64  `json:"energy_efficiency,omitempty" db:"energy_efficiency"`
	TrainingDataSize *int64    `json:"training_data_size,omitempty" db:"training_data_size"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// BenchmarkSuite groups benchmark results by test suite.
type BenchmarkSuite struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Category        string    `json:"category" db:"category"`
	Description     string    `json:"description,omitempty" db:"description"`
	DifficultyLevel *int      `json:"difficulty_level,omitempty" db:"difficulty_level"`
	TotalTests      int       `json:"total_tests" db:"total_tests"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// BenchmarkResult is a single metric measurement for a model on a suite.
type BenchmarkResult struct {
	ID         string    `json:"id" db:"id"`
	ModelID    string    `json:"model_id" db:"model_id"`
	SuiteID    string    `json:"suite_id" db:"suite_id"`
	MetricName string    `json:"metric_name" db:"metric_name"`
	Value      float64   `json:"value" db:"value"`
	Unit       string    `json:"unit,omitempty" db:"unit"`
	TestDate   time.Time `json:"test_date" db:"test_date"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// BenchmarkRow is a verified result joined with the model and suite it
// belongs to, as served by the public benchmarks endpoint.
type BenchmarkRow struct {
	BenchmarkResult
	Model BenchmarkModelRef `json:"model"`
	Suite BenchmarkSuiteRef `json:"suite"`
}

// BenchmarkModelRef is the model summary embedded in a benchmark row.
type BenchmarkModelRef struct {
	Name    string `json:"name" db:"model_name"`
	Version string `json:"version" db:"model_version"`
}

// BenchmarkSuiteRef is the suite summary embedded in a benchmark row.
type BenchmarkSuiteRef struct {
	Name     string `json:"name" db:"suite_name"`
	Category string `json:"category" db:"suite_category"`
}
