// Package dynamo provides the core value types for the three-body integrator.
//
// The package defines the small phase-space algebra the integrator needs:
//
//   - [Vector2]: one coordinate and its time derivative
//   - [BodyState]: a body's full planar state (x, vx, y, vy)
//   - [Body]: a state together with its mass
//   - [SimulationState]: elapsed time, step size and exactly three bodies
//   - [Field]: the derivative function signature integrators consume
//
// All types are values. Arithmetic returns new values and never mutates its
// receiver, so RK4 stage combinations can be formed freely.
//
// # Example
//
//	st := physics.FigureEight()
//	stepper := sim.NewStepper(physics.Derivative, integrators.NewRK4())
//	for i := 0; i < 1000; i++ {
//		st = stepper.Step(st)
//	}
//
// # Thread Safety
//
// Values are safe to copy between goroutines. A driver that shares one
// SimulationState across goroutines must serialize access itself.
package dynamo
