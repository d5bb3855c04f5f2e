package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

// probe is a massless body on the unit circle around a fixed unit mass.
func probe(h float64) dynamo.SimulationState {
	return dynamo.SimulationState{
		StepSize: h,
		Bodies: [dynamo.NumBodies]dynamo.Body{
			{State: dynamo.NewBodyState(1, 0, 0, 1), Mass: 0},
			{State: dynamo.NewBodyState(0, 0, 0, 0), Mass: 1},
			{State: dynamo.NewBodyState(-2, 0, 0, -1/math.Sqrt2), Mass: 0},
		},
	}
}

// lagrange is the equal-mass rotating triangle, which is unstable.
func lagrange() dynamo.SimulationState {
	r := 1 / math.Sqrt(3)
	return dynamo.SimulationState{
		StepSize: 0.001,
		Bodies: [dynamo.NumBodies]dynamo.Body{
			{State: dynamo.NewBodyState(0, -1, r, 0), Mass: 1},
			{State: dynamo.NewBodyState(-0.5, 0.5, -r/2, -math.Sqrt(3)/2), Mass: 1},
			{State: dynamo.NewBodyState(0.5, 0.5, -r/2, math.Sqrt(3)/2), Mass: 1},
		},
	}
}

func record(t *testing.T, x0 dynamo.SimulationState, duration float64) []dynamo.SimulationState {
	t.Helper()
	res, err := sim.New(physics.Derivative, integrators.NewRK4()).Run(context.Background(), x0, dynamo.Config{Duration: duration, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res.States
}

func TestSensitivityExponent(t *testing.T) {
	stepper := sim.DefaultStepper()

	stable := SensitivityExponent(stepper, physics.FigureEight(), 10, 1e-8)
	unstable := SensitivityExponent(stepper, lagrange(), 10, 1e-8)

	if math.IsNaN(stable) || math.IsNaN(unstable) {
		t.Fatalf("expected finite exponents, got %g and %g", stable, unstable)
	}
	if unstable < 1.5*stable {
		t.Errorf("expected the Lagrange triangle to diverge faster: lagrange %.3f, figure-eight %.3f", unstable, stable)
	}
}

func TestSensitivityExponentDegenerate(t *testing.T) {
	if got := SensitivityExponent(sim.DefaultStepper(), physics.FigureEight(), 10, 0); got != 0 {
		t.Errorf("expected 0 for zero perturbation, got %g", got)
	}
}

func TestConvergenceOrder(t *testing.T) {
	tests := []struct {
		name     string
		x0       dynamo.SimulationState
		min, max float64
	}{
		{"probe in fixed field", probe(0.1), 3.5, 4.7},
		{"coupled figure-eight", func() dynamo.SimulationState {
			st := physics.FigureEight()
			st.StepSize = 0.01
			return st
		}(), 0.7, 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ConvergenceOrder(context.Background(), physics.Derivative, integrators.NewRK4(), tt.x0, 2)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p < tt.min || p > tt.max {
				t.Errorf("expected order in [%g, %g], got %.3f", tt.min, tt.max, p)
			}
		})
	}
}

func TestPoincareSectionPeriod(t *testing.T) {
	states := record(t, probe(0.01), 20)
	crossings := PoincareSection(states, 0)

	if len(crossings) != 3 {
		t.Fatalf("expected 3 crossings, got %d", len(crossings))
	}
	if p := CrossingPeriod(crossings); math.Abs(p-2*math.Pi) > 1e-3 {
		t.Errorf("expected period 2π, got %.6f", p)
	}
	for _, c := range crossings {
		if math.Abs(c.X-1) > 1e-3 || math.Abs(c.VX) > 1e-2 {
			t.Errorf("expected crossing near (1, 0), got (%g, %g)", c.X, c.VX)
		}
	}
}

func TestPhasePortrait(t *testing.T) {
	states := record(t, physics.FigureEight(), 1)

	xc, err := ParseCoordinate("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	portrait := GeneratePhasePortrait(states, 2, xc, CoordVX)
	if portrait == nil || len(portrait.Points) != len(states) {
		t.Fatalf("expected %d points", len(states))
	}
	if portrait.Points[0].Y != states[0].Bodies[2].State.X.Speed {
		t.Errorf("expected vx on the Y axis")
	}

	art := PhasePortraitToASCII(portrait.Points, 40, 12)
	if lines := strings.Count(art, "\n"); lines != 12 {
		t.Errorf("expected 12 rows, got %d", lines)
	}
	if !strings.ContainsRune(art, '•') {
		t.Error("expected plotted points")
	}

	if GeneratePhasePortrait(states, 3, CoordX, CoordY) != nil {
		t.Error("expected nil for body out of range")
	}
	if _, err := ParseCoordinate("z"); err == nil {
		t.Error("expected error for unknown coordinate")
	}
}

func TestMassSweep(t *testing.T) {
	points, err := MassSweep(context.Background(), physics.Derivative, integrators.NewRK4(), physics.FigureEight(), 2, 0.5, 1.5, 3, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	for i, want := range []float64{0.5, 1.0, 1.5} {
		if math.Abs(points[i].Mass-want) > 1e-12 {
			t.Errorf("point %d: expected mass %g, got %g", i, want, points[i].Mass)
		}
		if points[i].Halted {
			t.Errorf("point %d: unexpected halt", i)
		}
	}

	if table := SweepToTable(points); strings.Count(table, "\n") != 4 {
		t.Errorf("expected header plus 3 rows, got:\n%s", table)
	}

	if _, err := MassSweep(context.Background(), physics.Derivative, integrators.NewRK4(), physics.FigureEight(), 3, 0, 1, 2, 1); err == nil {
		t.Error("expected error for body out of range")
	}
}
