package integrators

import "github.com/san-kum/threebody/internal/dynamo"

// Euler is the explicit first-order baseline used by compare and analyze.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Integrate(f dynamo.Field, active, passive1 dynamo.BodyState, mass1 float64, passive2 dynamo.BodyState, mass2 float64, h float64) dynamo.BodyState {
	return active.Add(f(active, passive1, mass1, passive2, mass2).Scale(h))
}
