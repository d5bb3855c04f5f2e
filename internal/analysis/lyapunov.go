package analysis

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/sim"
)

// SensitivityExponent estimates the largest finite-time Lyapunov exponent
// of the run starting at x0 by following a twin trajectory displaced by
// perturbation along body 1's x position. The twin is pulled back to the
// initial separation after every tick and the log growth is averaged over
// time. A larger value means nearby starts diverge faster.
//
// The estimate stops early if either trajectory becomes singular. It
// returns 0 when nothing could be measured.
func SensitivityExponent(stepper *sim.Stepper, x0 dynamo.SimulationState, duration, perturbation float64) float64 {
	if perturbation <= 0 || x0.StepSize <= 0 || duration <= 0 {
		return 0
	}

	x := x0
	xp := x0
	xp.Bodies[0].State.X.Position += perturbation
	d0 := perturbation

	steps := sim.Steps(x0, dynamo.Config{Duration: duration})
	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		x = stepper.Step(x)
		xp = stepper.Step(xp)
		if !x.IsValid() || !xp.IsValid() {
			break
		}

		sep := separation(x, xp)
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		for b := range xp.Bodies {
			ref := x.Bodies[b].State
			diff := xp.Bodies[b].State.Add(ref.Scale(-1))
			xp.Bodies[b].State = ref.Add(diff.Scale(scale))
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * x0.StepSize)
}

// separation is the Euclidean distance in the full twelve-dimensional
// phase space.
func separation(a, b dynamo.SimulationState) float64 {
	sum := 0.0
	for i := range a.Bodies {
		va := a.Bodies[i].State.Values()
		vb := b.Bodies[i].State.Values()
		for j := range va {
			d := vb[j] - va[j]
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}
