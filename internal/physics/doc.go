// Package physics holds the Newtonian gravity field for three point masses
// and the conserved quantities used to judge a run.
//
// [Derivative] satisfies [dynamo.Field]. It is pure and does no guarding:
// coincident bodies produce Inf or NaN and the caller is expected to notice
// with [dynamo.SimulationState.IsValid].
//
// # Invariants
//
// [Energy], [Momentum] and [AngularMomentum] are conserved by the exact flow.
// The fixed-step stepper does not conserve them, so their drift over a run is
// the practical measure of numerical error:
//
//	st := physics.FigureEight()
//	e0 := physics.Energy(st)
package physics
