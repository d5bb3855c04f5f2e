package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/metrics"
	"github.com/san-kum/threebody/internal/sim"
)

// SweepPoint summarizes one run of a mass sweep.
type SweepPoint struct {
	Mass            float64
	ClosestApproach float64
	EnergyDrift     float64
	Bounded         float64
	Halted          bool
}

// MassSweep varies the mass of body (0-based) over [lo, hi] in n evenly
// spaced runs and records how each ends. Runs go through a concurrent
// ensemble; a halted run is reported, not fatal.
func MassSweep(ctx context.Context, field dynamo.Field, integ dynamo.Integrator, x0 dynamo.SimulationState, body int, lo, hi float64, n int, duration float64) ([]SweepPoint, error) {
	if body < 0 || body >= dynamo.NumBodies {
		return nil, fmt.Errorf("body %d out of range: %w", body+1, dynamo.ErrInvalidParameter)
	}
	if n < 2 {
		n = 2
	}
	step := (hi - lo) / float64(n-1)

	jobs := make([]sim.Job, n)
	for i := range jobs {
		st := x0
		st.Bodies[body].Mass = lo + float64(i)*step
		jobs[i] = sim.Job{
			Name:       fmt.Sprintf("m%d=%g", body+1, st.Bodies[body].Mass),
			Field:      field,
			Integrator: integ,
			Initial:    st,
			Config:     dynamo.Config{Duration: duration, ValidateState: true},
		}
	}

	outcomes, err := sim.NewEnsemble(0).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(outcomes))
	for i, o := range outcomes {
		closest := metrics.NewClosestApproach()
		drift := metrics.NewEnergyDrift()
		bounded := metrics.NewBounded(10)
		for _, st := range o.Result.States {
			closest.Observe(st)
			drift.Observe(st)
			bounded.Observe(st)
		}
		points[i] = SweepPoint{
			Mass:            o.Job.Initial.Bodies[body].Mass,
			ClosestApproach: closest.Value(),
			EnergyDrift:     drift.Value(),
			Bounded:         bounded.Value(),
			Halted:          o.Err != nil,
		}
	}
	return points, nil
}

// SweepToTable renders sweep results as aligned text.
func SweepToTable(points []SweepPoint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-10s %-16s %-14s %-8s %s\n", "MASS", "CLOSEST", "ENERGY DRIFT", "BOUNDED", "HALTED")
	for _, p := range points {
		fmt.Fprintf(&sb, "%-10.4g %-16.6g %-14.3e %-8.3f %v\n",
			p.Mass, p.ClosestApproach, p.EnergyDrift, p.Bounded, p.Halted)
	}
	return sb.String()
}
