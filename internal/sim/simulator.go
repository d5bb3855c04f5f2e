package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
)

// Simulator runs a fixed-duration batch integration with optional metrics
// and observers.
type Simulator struct {
	stepper   *Stepper
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    zerolog.Logger
}

func New(field dynamo.Field, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		stepper:   NewStepper(field, integrator),
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    zerolog.Nop(),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l zerolog.Logger)    { s.logger = l }

// MaxSteps bounds the ticks of one run. Every tick is recorded, so a run
// at the limit holds about half a gigabyte of states.
const MaxSteps = 5_000_000

// preallocSteps caps the capacity reserved up front; longer runs grow.
const preallocSteps = 1 << 16

// Steps returns the number of ticks a run of cfg from x0 takes, saturated
// to [0, MaxSteps].
func Steps(x0 dynamo.SimulationState, cfg dynamo.Config) int {
	n := math.Round(cfg.Duration / x0.StepSize)
	switch {
	case math.IsNaN(n) || n <= 0:
		return 0
	case n > MaxSteps:
		return MaxSteps
	}
	return int(n)
}

// CheckSteps rejects a duration that needs more than MaxSteps ticks at
// stepSize.
func CheckSteps(stepSize, duration float64) error {
	n := math.Round(duration / stepSize)
	if math.IsNaN(n) || n > MaxSteps {
		return fmt.Errorf("duration %g at step size %g needs more than %d steps: %w",
			duration, stepSize, MaxSteps, dynamo.ErrInvalidParameter)
	}
	return nil
}

// Run integrates x0 for cfg.Duration. On a singular configuration it stops,
// returns the states recorded so far and a *dynamo.SimulationError wrapping
// dynamo.ErrSingular. Cancellation returns the partial result as well.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.SimulationState, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := Steps(x0, cfg)
	capacity := min(steps, preallocSteps) + 1
	result := &dynamo.Result{
		States:  make([]dynamo.SimulationState, 0, capacity),
		Times:   make([]float64, 0, capacity),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	result.States = append(result.States, x)
	result.Times = append(result.Times, x.T)

	initialEnergy := physics.Energy(x)
	s.logger.Debug().Int("steps", steps).Float64("step_size", x.StepSize).Msg("run started")

	var runErr error
loop:
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
			break loop
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x)
		}
		for _, obs := range s.observers {
			obs.OnStep(x)
		}

		next := s.stepper.Step(x)

		if cfg.ValidateState && !next.IsValid() {
			runErr = &dynamo.SimulationError{Step: i, Time: x.T, State: x, Wrapped: dynamo.ErrSingular}
			result.Errors = append(result.Errors, runErr)
			s.logger.Warn().Err(runErr).Msg("run halted")
			break
		}

		x = next
		result.StepsTaken++
		result.States = append(result.States, x)
		result.Times = append(result.Times, x.T)
	}

	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(physics.Energy(x)-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info().
		Int("steps", result.StepsTaken).
		Float64("energy_drift", result.EnergyDrift).
		Msg("run finished")

	return result, runErr
}

func (s *Simulator) validate(x0 dynamo.SimulationState, cfg dynamo.Config) error {
	if err := x0.Validate(); err != nil {
		return err
	}
	if !x0.IsValid() {
		return fmt.Errorf("initial state is not finite: %w", dynamo.ErrInvalidParameter)
	}
	if math.IsNaN(cfg.Duration) || math.IsInf(cfg.Duration, 0) || cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g: %w", cfg.Duration, dynamo.ErrInvalidParameter)
	}
	return CheckSteps(x0.StepSize, cfg.Duration)
}

// RunWithCallback steps until the duration elapses or callback returns
// false. The callback sees each state before it is advanced.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.SimulationState, cfg dynamo.Config, callback func(dynamo.SimulationState) bool) error {
	if err := s.validate(x0, cfg); err != nil {
		return err
	}

	x := x0.Clone()
	steps := Steps(x0, cfg)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		if !callback(x) {
			return nil
		}

		next := s.stepper.Step(x)
		if cfg.ValidateState && !next.IsValid() {
			return &dynamo.SimulationError{Step: i, Time: x.T, State: x, Wrapped: dynamo.ErrSingular}
		}
		x = next
	}

	callback(x)
	return nil
}
