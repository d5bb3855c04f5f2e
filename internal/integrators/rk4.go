package integrators

import "github.com/san-kum/threebody/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. Each stage perturbs
// the active state by the previous stage's slope; the passive bodies stay
// where they were at the start of the step.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Integrate(f dynamo.Field, active, passive1 dynamo.BodyState, mass1 float64, passive2 dynamo.BodyState, mass2 float64, h float64) dynamo.BodyState {
	k1 := f(active, passive1, mass1, passive2, mass2)
	k2 := f(active.Add(k1.Scale(h*0.5)), passive1, mass1, passive2, mass2)
	k3 := f(active.Add(k2.Scale(h*0.5)), passive1, mass1, passive2, mass2)
	k4 := f(active.Add(k3.Scale(h)), passive1, mass1, passive2, mass2)

	sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return active.Add(sum.Scale(h / 6.0))
}
