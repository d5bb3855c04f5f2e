package sim

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
)

// Stepper advances all three bodies by one tick.
type Stepper struct {
	field      dynamo.Field
	integrator dynamo.Integrator
}

func NewStepper(field dynamo.Field, integrator dynamo.Integrator) *Stepper {
	return &Stepper{field: field, integrator: integrator}
}

// DefaultStepper is Newtonian gravity with classical RK4.
func DefaultStepper() *Stepper {
	return NewStepper(physics.Derivative, integrators.NewRK4())
}

// Step returns the state one StepSize later. Every body is integrated
// against the pre-tick positions of the other two, so the result does not
// depend on update order. The input is not modified and no validation is
// done; a singular configuration comes back as non-finite values.
func (s *Stepper) Step(st dynamo.SimulationState) dynamo.SimulationState {
	b1, b2, b3 := st.Bodies[0], st.Bodies[1], st.Bodies[2]
	h := st.StepSize

	next := st
	next.Bodies[0].State = s.integrator.Integrate(s.field, b1.State, b2.State, b2.Mass, b3.State, b3.Mass, h)
	next.Bodies[1].State = s.integrator.Integrate(s.field, b2.State, b1.State, b1.Mass, b3.State, b3.Mass, h)
	next.Bodies[2].State = s.integrator.Integrate(s.field, b3.State, b1.State, b1.Mass, b2.State, b2.Mass, h)
	next.T = st.T + h

	return next
}

var defaultStepper = DefaultStepper()

// Step advances st with the default stepper.
func Step(st dynamo.SimulationState) dynamo.SimulationState {
	return defaultStepper.Step(st)
}
