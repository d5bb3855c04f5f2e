// Package automation runs scripted sequences of batch simulations described
// in a YAML plan and records each run.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/metrics"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
	"github.com/san-kum/threebody/internal/storage"
)

// Plan defines a scripted simulation sequence
type Plan struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Runs        []Step `yaml:"runs"`
}

// Step is one run of a plan: a preset or scenario file, with optional
// overrides. Zero overrides keep the scenario's value.
type Step struct {
	Preset     string    `yaml:"preset"`
	Config     string    `yaml:"config"`
	Name       string    `yaml:"name"`
	Integrator string    `yaml:"integrator"`
	StepSize   float64   `yaml:"step_size"`
	Duration   float64   `yaml:"duration"`
	Masses     []float64 `yaml:"masses"`
}

// LoadPlan loads a plan from a YAML file. Relative scenario paths in the
// plan are resolved against the plan's directory.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	if len(plan.Runs) == 0 {
		return nil, fmt.Errorf("plan %s has no runs: %w", path, dynamo.ErrInvalidParameter)
	}

	dir := filepath.Dir(path)
	for i := range plan.Runs {
		if c := plan.Runs[i].Config; c != "" && !filepath.IsAbs(c) {
			plan.Runs[i].Config = filepath.Join(dir, c)
		}
	}
	return &plan, nil
}

// Scenario resolves the step to a validated scenario.
func (s Step) Scenario() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "" && s.Config != "":
		return nil, fmt.Errorf("set preset or config, not both: %w", dynamo.ErrInvalidParameter)
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q: %w", s.Preset, dynamo.ErrInvalidParameter)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Name != "" {
		cfg.Name = s.Name
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.StepSize != 0 {
		cfg.StepSize = s.StepSize
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	if s.Masses != nil {
		if len(s.Masses) != dynamo.NumBodies {
			return nil, fmt.Errorf("masses needs %d values, got %d: %w", dynamo.NumBodies, len(s.Masses), dynamo.ErrInvalidParameter)
		}
		for i := range cfg.Bodies {
			cfg.Bodies[i].Mass = s.Masses[i]
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Record is what one executed step produced.
type Record struct {
	Scenario string
	RunID    string
	Steps    int
	Halted   error
}

// Execute runs the steps of plan in order and saves each to store. A run
// that halts on a singular configuration is recorded and the plan goes on;
// any other error stops the plan and returns the records so far.
func Execute(ctx context.Context, plan *Plan, store *storage.Store, logger zerolog.Logger) ([]Record, error) {
	records := make([]Record, 0, len(plan.Runs))

	for i, step := range plan.Runs {
		cfg, err := step.Scenario()
		if err != nil {
			return records, fmt.Errorf("step %d: %w", i+1, err)
		}
		integ, err := integrators.Lookup(cfg.Integrator)
		if err != nil {
			return records, fmt.Errorf("step %d: %w", i+1, err)
		}
		x0, err := cfg.State()
		if err != nil {
			return records, fmt.Errorf("step %d: %w", i+1, err)
		}

		log := logger.With().Int("step", i+1).Str("scenario", cfg.Name).Logger()
		log.Info().Str("integrator", cfg.Integrator).Float64("duration", cfg.Duration).Msg("plan step started")

		s := sim.New(physics.Derivative, integ)
		s.SetLogger(log)
		for _, m := range metrics.Standard() {
			s.AddMetric(m)
		}

		result, runErr := s.Run(ctx, x0, dynamo.Config{Duration: cfg.Duration, ValidateState: true})
		if runErr != nil && !errors.Is(runErr, dynamo.ErrSingular) {
			return records, fmt.Errorf("step %d run: %w", i+1, runErr)
		}

		id, err := store.Save(storage.RunInfo{
			Scenario:   cfg.Name,
			Integrator: cfg.Integrator,
			Duration:   cfg.Duration,
		}, result, runErr)
		if err != nil {
			return records, fmt.Errorf("step %d save: %w", i+1, err)
		}

		records = append(records, Record{Scenario: cfg.Name, RunID: id, Steps: result.StepsTaken, Halted: runErr})
	}

	return records, nil
}
