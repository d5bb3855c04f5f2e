package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
)

var (
	origin    = dynamo.NewBodyState(0, 0, 0, 0)
	spectator = dynamo.NewBodyState(-2, 0, 0, 0)
)

// orbitError integrates a massless probe on the unit circle around a fixed
// unit mass for t = 2 and returns its distance from the exact position.
func orbitError(integ dynamo.Integrator, steps int) float64 {
	h := 2.0 / float64(steps)
	probe := dynamo.NewBodyState(1, 0, 0, 1)
	for i := 0; i < steps; i++ {
		probe = integ.Integrate(physics.Derivative, probe, origin, 1, spectator, 0, h)
	}
	x, y := probe.Pos()
	return math.Hypot(x-math.Cos(2), y-math.Sin(2))
}

func TestRK4Accuracy(t *testing.T) {
	err := orbitError(NewRK4(), 20)
	if err > 1e-5 {
		t.Errorf("position error too large: got %.3e", err)
	}
}

func TestConvergenceRatio(t *testing.T) {
	tests := []struct {
		name     string
		integ    dynamo.Integrator
		min, max float64
	}{
		{"rk4", NewRK4(), 12, 22},
		{"euler", NewEuler(), 1.5, 2.5},
		{"rk4-legacy", NewLegacyRK4(), 1.4, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e1 := orbitError(tt.integ, 20)
			e2 := orbitError(tt.integ, 40)
			e3 := orbitError(tt.integ, 80)

			for _, ratio := range []float64{e1 / e2, e2 / e3} {
				if ratio < tt.min || ratio > tt.max {
					t.Errorf("expected error ratio in [%g, %g], got %.2f (errors %.3e %.3e %.3e)",
						tt.min, tt.max, ratio, e1, e2, e3)
				}
			}
		})
	}
}

func TestZeroStepIsIdentity(t *testing.T) {
	active := dynamo.NewBodyState(0.3, -0.1, 0.8, 0.4)
	p1 := dynamo.NewBodyState(-0.5, 0.2, 0.1, 0)
	p2 := dynamo.NewBodyState(1.1, 0, -0.6, 0.3)

	for _, name := range Names() {
		integ, err := Lookup(name)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := integ.Integrate(physics.Derivative, active, p1, 1, p2, 2, 0)
		if got != active {
			t.Errorf("%s: expected %+v, got %+v", name, active, got)
		}
	}
}

func TestPerturberSwapSymmetry(t *testing.T) {
	active := dynamo.NewBodyState(0.3, -0.1, 0.8, 0.4)
	p1 := dynamo.NewBodyState(-0.5, 0.2, 0.1, 0)
	p2 := dynamo.NewBodyState(1.1, 0, -0.6, 0.3)

	integ := NewRK4()
	a := integ.Integrate(physics.Derivative, active, p1, 1, p2, 2, 0.01)
	b := integ.Integrate(physics.Derivative, active, p2, 2, p1, 1, 0.01)

	if a != b {
		t.Errorf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestIntegrateDoesNotMutateInputs(t *testing.T) {
	active := dynamo.NewBodyState(1, 0, 0, 1)
	before := active

	NewRK4().Integrate(physics.Derivative, active, origin, 1, spectator, 0, 0.1)

	if active != before {
		t.Errorf("active state changed: %+v -> %+v", before, active)
	}
}

func TestLegacyShiftsEveryComponent(t *testing.T) {
	var seen []dynamo.BodyState
	record := func(active, _ dynamo.BodyState, _ float64, _ dynamo.BodyState, _ float64) dynamo.BodyState {
		seen = append(seen, active)
		return dynamo.BodyState{}
	}

	active := dynamo.NewBodyState(1, 2, 3, 4)
	NewLegacyRK4().Integrate(record, active, origin, 1, spectator, 1, 0.5)

	want := []dynamo.BodyState{
		active,
		dynamo.NewBodyState(1.25, 2.25, 3.25, 4.25),
		dynamo.NewBodyState(1.25, 2.25, 3.25, 4.25),
		dynamo.NewBodyState(1.5, 2.5, 3.5, 4.5),
	}
	if len(seen) != len(want) {
		t.Fatalf("expected %d field evaluations, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("stage %d: expected %+v, got %+v", i+1, want[i], seen[i])
		}
	}
}

func TestLookup(t *testing.T) {
	integ, err := Lookup("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := integ.(*RK4); !ok {
		t.Errorf("expected default *RK4, got %T", integ)
	}

	if _, err := Lookup("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
