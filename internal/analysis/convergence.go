package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/sim"
)

// ConvergenceOrder estimates the observed order of accuracy of a stepper by
// running x0 for duration at StepSize, StepSize/2 and StepSize/4 and
// comparing the final positions: p = log2(|x_h - x_h/2| / |x_h/2 - x_h/4|).
//
// Classical RK4 on a single body in a fixed field gives about 4. With the
// perturbers frozen during each tick the coupled three-body stepper is
// limited to about 1.
func ConvergenceOrder(ctx context.Context, field dynamo.Field, integ dynamo.Integrator, x0 dynamo.SimulationState, duration float64) (float64, error) {
	var finals [3]dynamo.SimulationState

	jobs := make([]sim.Job, len(finals))
	for i := range jobs {
		st := x0
		st.StepSize = x0.StepSize / math.Pow(2, float64(i))
		jobs[i] = sim.Job{
			Name:       fmt.Sprintf("h=%g", st.StepSize),
			Field:      field,
			Integrator: integ,
			Initial:    st,
			Config:     dynamo.Config{Duration: duration, ValidateState: true},
		}
	}

	outcomes, err := sim.NewEnsemble(len(jobs)).Run(ctx, jobs)
	if err != nil {
		return 0, err
	}
	for i, o := range outcomes {
		if o.Err != nil {
			return 0, fmt.Errorf("%s: %w", o.Job.Name, o.Err)
		}
		finals[i] = o.Result.States[len(o.Result.States)-1]
	}

	e1 := positionDistance(finals[0], finals[1])
	e2 := positionDistance(finals[1], finals[2])
	if e1 == 0 || e2 == 0 {
		return 0, fmt.Errorf("step halving made no difference: %w", dynamo.ErrInvalidParameter)
	}
	return math.Log2(e1 / e2), nil
}

func positionDistance(a, b dynamo.SimulationState) float64 {
	sum := 0.0
	for i := range a.Bodies {
		xa, ya := a.Bodies[i].State.Pos()
		xb, yb := b.Bodies[i].State.Pos()
		sum += (xa-xb)*(xa-xb) + (ya-yb)*(ya-yb)
	}
	return math.Sqrt(sum)
}
