package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leap-ai/ozone/internal/model"
	"github.com/leap-ai/ozone/internal/store"
)

// seedFile is the YAML document format accepted by 'ozone seed'.
type seedFile struct {
	Models []struct {
		Name             string   `yaml:"name"`
		Version          string   `yaml:"version"`
		ModelType        string   `yaml:"model_type"`
		Description      string   `yaml:"description"`
		PerformanceScore *float64 `yaml:"performance_score"`
		EnergyEfficiency *float64 `yaml:"energy_efficiency"`
		TrainingDataSize *int64   `yaml:"training_data_size"`
	} `yaml:"models"`

	Suites []struct {
		Name            string `yaml:"name"`
		Category        string `yaml:"category"`
		Description     string `yaml:"description"`
		DifficultyLevel *int   `yaml:"difficulty_level"`
		TotalTests      int    `yaml:"total_tests"`
	} `yaml:"suites"`

	Results []struct {
		Model        string  `yaml:"model"`
		ModelVersion string  `yaml:"model_version"`
		Suite        string  `yaml:"suite"`
		Metric       string  `yaml:"metric"`
		Value        float64 `yaml:"value"`
		Unit         string  `yaml:"unit"`
		TestDate     string  `yaml:"test_date"`
		Verified     bool    `yaml:"verified"`
	} `yaml:"results"`
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Import catalog data from a YAML file",
		Long: `Import models, benchmark suites, and benchmark results from a YAML file.
Models and suites that already exist (matched by name) are reused, so the
command is safe to run repeatedly against the same file.`,
		Example: `  ozone seed catalog.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(args[0])
		},
	}

	return cmd
}

func runSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	modelIDs := make(map[string]string)
	createdModels := 0
	for _, m := range seed.Models {
		if m.Name == "" || m.Version == "" {
			return fmt.Errorf("seed model missing name or version")
		}
		key := m.Name + "@" + m.Version

		existing, err := st.GetModelByNameVersion(ctx, m.Name, m.Version)
		if err == nil {
			modelIDs[key] = existing.ID
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lookup model %s: %w", key, err)
		}

		rec := &model.Model{
			Name:             m.Name,
			Version:          m.Version,
			ModelType:        m.ModelType,
			Description:      m.Description,
			PerformanceScore: m.PerformanceScore,
			EnergyEfficiency: m.EnergyEfficiency,
			TrainingDataSize: m.TrainingDataSize,
			IsActive:         true,
		}
		if err := st.CreateModel(ctx, rec); err != nil {
			return fmt.Errorf("create model %s: %w", key, err)
		}
		modelIDs[key] = rec.ID
		createdModels++
	}

	suiteIDs := make(map[string]string)
	createdSuites := 0
	for _, s := range seed.Suites {
		if s.Name == "" {
			return fmt.Errorf("seed suite missing name")
		}

		existing, err := st.GetBenchmarkSuiteByName(ctx, s.Name)
		if err == nil {
			suiteIDs[s.Name] = existing.ID
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lookup suite %q: %w", s.Name, err)
		}

		rec := &model.BenchmarkSuite{
			Name:            s.Name,
			Category:        s.Category,
			Description:     s.Description,
			DifficultyLevel: s.DifficultyLevel,
			TotalTests:      s.TotalTests,
		}
		if err := st.CreateBenchmarkSuite(ctx, rec); err != nil {
			return fmt.Errorf("create suite %q: %w", s.Name, err)
		}
		suiteIDs[s.Name] = rec.ID
		createdSuites++
	}

	createdResults := 0
	for _, r := range seed.Results {
		modelKey := r.Model + "@" + r.ModelVersion
		modelID, ok := modelIDs[modelKey]
		if !ok {
			m, err := st.GetModelByNameVersion(ctx, r.Model, r.ModelVersion)
			if err != nil {
				return fmt.Errorf("result references unknown model %s", modelKey)
			}
			modelID = m.ID
			modelIDs[modelKey] = modelID
		}
		suiteID, ok := suiteIDs[r.Suite]
		if !ok {
			s, err := st.GetBenchmarkSuiteByName(ctx, r.Suite)
			if err != nil {
				return fmt.Errorf("result references unknown suite %q", r.Suite)
			}
			suiteID = s.ID
			suiteIDs[r.Suite] = suiteID
		}

		testDate := time.Now().UTC()
		if r.TestDate != "" {
			testDate, err = time.Parse("2006-01-02", r.TestDate)
			if err != nil {
				return fmt.Errorf("invalid test_date %q (want YYYY-MM-DD)", r.TestDate)
			}
		}

		rec := &model.BenchmarkResult{
			ModelID:    modelID,
			SuiteID:    suiteID,
			MetricName: r.Metric,
			Value:      r.Value,
			Unit:       r.Unit,
			TestDate:   testDate,
			IsVerified: r.Verified,
		}
		if err := st.CreateBenchmarkResult(ctx, rec); err != nil {
			return fmt.Errorf("create benchmark result: %w", err)
		}
		createdResults++
	}

	fmt.Printf("Seeded %d models, %d suites, %d results from %s\n",
		createdModels, createdSuites, createdResults, path)
	return nil
}
