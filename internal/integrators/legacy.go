package integrators

import "github.com/san-kum/threebody/internal/dynamo"

// LegacyRK4 reproduces the stage evaluation of the first desktop version of
// the simulator: the k2 and k3 probes add the scalar h/2 to every component
// of the active state and k4 adds h, instead of stepping along the slopes.
// Only k1 carries real slope information, so the scheme is first order. It
// exists to replay old recordings; use RK4 for anything else.
type LegacyRK4 struct{}

func NewLegacyRK4() *LegacyRK4 {
	return &LegacyRK4{}
}

func (l *LegacyRK4) Integrate(f dynamo.Field, active, passive1 dynamo.BodyState, mass1 float64, passive2 dynamo.BodyState, mass2 float64, h float64) dynamo.BodyState {
	half := shift(active, h/2)

	k1 := f(active, passive1, mass1, passive2, mass2)
	k2 := f(half, passive1, mass1, passive2, mass2)
	k3 := f(half, passive1, mass1, passive2, mass2)
	k4 := f(shift(active, h), passive1, mass1, passive2, mass2)

	sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return active.Add(sum.Scale(h / 6.0))
}

func shift(s dynamo.BodyState, c float64) dynamo.BodyState {
	return dynamo.NewBodyState(s.X.Position+c, s.X.Speed+c, s.Y.Position+c, s.Y.Speed+c)
}
