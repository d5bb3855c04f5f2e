package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
)

// binary returns two unit masses on a circular orbit of separation 1 and a
// third body at (x3, y3) with mass m3.
func binary(x3, y3, m3 float64) dynamo.SimulationState {
	v := math.Sqrt(0.5)
	return dynamo.SimulationState{
		StepSize: 0.01,
		Bodies: [dynamo.NumBodies]dynamo.Body{
			{State: dynamo.NewBodyState(0.5, 0, 0, v), Mass: 1},
			{State: dynamo.NewBodyState(-0.5, 0, 0, -v), Mass: 1},
			{State: dynamo.NewBodyState(x3, 0, y3, 0), Mass: m3},
		},
	}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(physics.Derivative, integrators.NewRK4())

	x0 := binary(3, 1.5, 0)
	x0.StepSize = 0.1
	cfg := dynamo.Config{Duration: 1.0, ValidateState: true}

	result, err := sim.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if last := result.Times[len(result.Times)-1]; math.Abs(last-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %.15f", last)
	}
	if result.EnergyDrift <= 0 || result.EnergyDrift > 0.2 {
		t.Errorf("expected energy drift in (0, 0.2], got %g", result.EnergyDrift)
	}
}

func TestSimulatorInvalidInput(t *testing.T) {
	sim := New(physics.Derivative, integrators.NewRK4())

	negativeMass := binary(3, 1.5, 0)
	negativeMass.Bodies[2].Mass = -1

	zeroStep := binary(3, 1.5, 0)
	zeroStep.StepSize = 0

	nanState := binary(3, 1.5, 0)
	nanState.Bodies[0].State.X.Speed = math.NaN()

	tinyStep := binary(3, 1.5, 0)
	tinyStep.StepSize = 1e-300

	tests := []struct {
		name string
		x0   dynamo.SimulationState
		cfg  dynamo.Config
	}{
		{"negative mass", negativeMass, dynamo.DefaultConfig()},
		{"zero step size", zeroStep, dynamo.DefaultConfig()},
		{"non-finite state", nanState, dynamo.DefaultConfig()},
		{"zero duration", binary(3, 1.5, 0), dynamo.Config{Duration: 0}},
		{"negative duration", binary(3, 1.5, 0), dynamo.Config{Duration: -1}},
		{"step count overflows int", tinyStep, dynamo.Config{Duration: 1e10}},
		{"one step over the limit", binary(3, 1.5, 0), dynamo.Config{Duration: 0.01 * (MaxSteps + 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.x0, tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestStepsSaturates(t *testing.T) {
	x0 := binary(3, 1.5, 0)

	tests := []struct {
		name     string
		stepSize float64
		duration float64
		want     int
	}{
		{"exact", 0.01, 1, 100},
		{"rounds", 0.001, 0.0504, 50},
		{"overflow", 1e-300, 1e10, MaxSteps},
		{"infinite ratio", 5e-324, 1e300, MaxSteps},
		{"zero duration", 0.01, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x0.StepSize = tt.stepSize
			if got := Steps(x0, dynamo.Config{Duration: tt.duration}); got != tt.want {
				t.Errorf("expected %d steps, got %d", tt.want, got)
			}
		})
	}
}

func TestSimulatorSingularHalts(t *testing.T) {
	sim := New(physics.Derivative, integrators.NewRK4())

	x0 := binary(3, 1.5, 1)
	x0.Bodies[1].State = x0.Bodies[0].State

	result, err := sim.Run(context.Background(), x0, dynamo.DefaultConfig())
	if !errors.Is(err, dynamo.ErrSingular) {
		t.Fatalf("expected ErrSingular, got %v", err)
	}

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if simErr.Step != 0 {
		t.Errorf("expected halt at step 0, got %d", simErr.Step)
	}
	if result == nil || len(result.States) != 1 {
		t.Fatalf("expected only the initial state to be recorded")
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(result.Errors))
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(physics.Derivative, integrators.NewRK4())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, binary(3, 1.5, 0), dynamo.DefaultConfig())
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if len(result.States) != 1 {
		t.Errorf("expected 1 state, got %d", len(result.States))
	}
}

type countingMetric struct {
	count int
	sum   float64
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(s dynamo.SimulationState) {
	c.count++
	c.sum += s.T
}
func (c *countingMetric) Value() float64 { return float64(c.count) }
func (c *countingMetric) Reset() {
	c.count = 0
	c.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(physics.Derivative, integrators.NewRK4())

	metric := &countingMetric{}
	sim.AddMetric(metric)

	x0 := binary(3, 1.5, 0)
	x0.StepSize = 0.1

	result, err := sim.Run(context.Background(), x0, dynamo.Config{Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if v, ok := result.Metrics["count"]; !ok || v != 10 {
		t.Errorf("expected metric count 10, got %v (present=%v)", v, ok)
	}
}

func TestRunWithCallbackStopsEarly(t *testing.T) {
	sim := New(physics.Derivative, integrators.NewRK4())

	calls := 0
	err := sim.RunWithCallback(context.Background(), binary(3, 1.5, 0), dynamo.DefaultConfig(), func(dynamo.SimulationState) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 callbacks, got %d", calls)
	}
}

func TestStepUsesPreTickPerturbers(t *testing.T) {
	x0 := physics.FigureEight()
	rk4 := integrators.NewRK4()
	f := physics.Derivative

	got := DefaultStepper().Step(x0)

	b := x0.Bodies
	h := x0.StepSize
	want := [dynamo.NumBodies]dynamo.BodyState{
		rk4.Integrate(f, b[0].State, b[1].State, b[1].Mass, b[2].State, b[2].Mass, h),
		rk4.Integrate(f, b[1].State, b[0].State, b[0].Mass, b[2].State, b[2].Mass, h),
		rk4.Integrate(f, b[2].State, b[0].State, b[0].Mass, b[1].State, b[1].Mass, h),
	}

	for i := range want {
		if got.Bodies[i].State != want[i] {
			t.Errorf("body %d: expected %+v, got %+v", i+1, want[i], got.Bodies[i].State)
		}
	}
	if got.T != x0.T+h {
		t.Errorf("expected T %g, got %g", x0.T+h, got.T)
	}
	if got.Masses() != x0.Masses() || got.StepSize != x0.StepSize {
		t.Error("step must not change masses or step size")
	}
}

func TestStepIsPermutationEquivariant(t *testing.T) {
	x0 := binary(0.2, 1.1, 0.5)
	x0.Bodies[2].State.X.Speed = 0.3

	swapped := x0
	swapped.Bodies[1], swapped.Bodies[2] = x0.Bodies[2], x0.Bodies[1]

	a := Step(x0)
	b := Step(swapped)

	if a.Bodies[0] != b.Bodies[0] || a.Bodies[1] != b.Bodies[2] || a.Bodies[2] != b.Bodies[1] {
		t.Errorf("expected permuted results to match:\n%+v\n%+v", a.Bodies, b.Bodies)
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	x0 := physics.FigureEight()
	before := x0.Clone()

	Step(x0)

	if x0 != before {
		t.Error("Step modified its input")
	}
}
