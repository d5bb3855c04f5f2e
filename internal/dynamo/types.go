package dynamo

import "math"

// NumBodies is fixed: the model is the three-body problem only.
const NumBodies = 3

// Vector2 is one coordinate and its time derivative.
type Vector2 struct {
	Position float64 `json:"position" yaml:"position"`
	Speed    float64 `json:"speed" yaml:"speed"`
}

func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{Position: v.Position + o.Position, Speed: v.Speed + o.Speed}
}

func (v Vector2) Scale(factor float64) Vector2 {
	return Vector2{Position: v.Position * factor, Speed: v.Speed * factor}
}

// BodyState is the planar phase-space point of one body.
type BodyState struct {
	X Vector2 `json:"x" yaml:"x"`
	Y Vector2 `json:"y" yaml:"y"`
}

// NewBodyState builds a state from position and velocity components.
func NewBodyState(x, vx, y, vy float64) BodyState {
	return BodyState{
		X: Vector2{Position: x, Speed: vx},
		Y: Vector2{Position: y, Speed: vy},
	}
}

func (s BodyState) Add(o BodyState) BodyState {
	return BodyState{X: s.X.Add(o.X), Y: s.Y.Add(o.Y)}
}

func (s BodyState) Scale(factor float64) BodyState {
	return BodyState{X: s.X.Scale(factor), Y: s.Y.Scale(factor)}
}

// Pos returns the position components.
func (s BodyState) Pos() (x, y float64) { return s.X.Position, s.Y.Position }

// Vel returns the velocity components.
func (s BodyState) Vel() (vx, vy float64) { return s.X.Speed, s.Y.Speed }

// Values flattens the state as [x, vx, y, vy].
func (s BodyState) Values() [4]float64 {
	return [4]float64{s.X.Position, s.X.Speed, s.Y.Position, s.Y.Speed}
}

func (s BodyState) IsValid() bool {
	for _, v := range s.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Body struct {
	State BodyState `json:"state" yaml:"state"`
	Mass  float64   `json:"mass" yaml:"mass"`
}

// SimulationState is everything the stepper reads and writes per tick.
type SimulationState struct {
	T        float64         `json:"t"`
	StepSize float64         `json:"step_size"`
	Bodies   [NumBodies]Body `json:"bodies"`
}

// Masses returns the three masses in body order.
func (s SimulationState) Masses() [NumBodies]float64 {
	var m [NumBodies]float64
	for i, b := range s.Bodies {
		m[i] = b.Mass
	}
	return m
}

// Clone returns an independent copy. The state holds no references, so this
// is a plain value copy kept for call sites that want to say so.
func (s SimulationState) Clone() SimulationState {
	return s
}

// IsValid reports whether every body state is finite.
func (s SimulationState) IsValid() bool {
	for _, b := range s.Bodies {
		if !b.State.IsValid() {
			return false
		}
	}
	return true
}

// Validate checks the preconditions the core assumes on entry: finite
// non-negative masses and a finite positive step size.
func (s SimulationState) Validate() error {
	if math.IsNaN(s.StepSize) || math.IsInf(s.StepSize, 0) || s.StepSize <= 0 {
		return invalidf("step size must be positive, got %g", s.StepSize)
	}
	for i, b := range s.Bodies {
		if math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) || b.Mass < 0 {
			return invalidf("mass %d must be non-negative, got %g", i+1, b.Mass)
		}
	}
	return nil
}

// Field computes the time derivative of the active body's state under the
// pull of two passive bodies.
type Field func(active, passive1 BodyState, mass1 float64, passive2 BodyState, mass2 float64) BodyState

// Integrator advances the active body by one fixed step h with the passive
// bodies held in place.
type Integrator interface {
	Integrate(f Field, active, passive1 BodyState, mass1 float64, passive2 BodyState, mass2 float64, h float64) BodyState
}

// Metric accumulates a scalar over the ticks of a run.
type Metric interface {
	Name() string
	Observe(s SimulationState)
	Value() float64
	Reset()
}

// Observer is notified with the state before every tick.
type Observer interface {
	OnStep(s SimulationState)
}

// Config controls a batch run. The step size travels with the state.
type Config struct {
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      10.0,
		ValidateState: true,
	}
}

type Result struct {
	States      []SimulationState
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}
