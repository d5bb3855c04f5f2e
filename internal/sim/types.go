package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Position bounds accepted for new initial conditions.
const (
	MaxAbsX = 3.2
	MaxAbsY = 1.7
)

type UpdateKind int

const (
	SetMasses UpdateKind = iota
	SetStepSize
	SetInitialConditions
	Reset
)

func (k UpdateKind) String() string {
	switch k {
	case SetMasses:
		return "masses"
	case SetStepSize:
		return "step size"
	case SetInitialConditions:
		return "initial conditions"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("UpdateKind(%d)", int(k))
	}
}

// Update is a reconfiguration request from the shell. Only the fields that
// belong to Kind are read.
type Update struct {
	Kind     UpdateKind
	Masses   [dynamo.NumBodies]float64
	StepSize float64
	Bodies   [dynamo.NumBodies]dynamo.BodyState
}

func MassesUpdate(m1, m2, m3 float64) Update {
	return Update{Kind: SetMasses, Masses: [dynamo.NumBodies]float64{m1, m2, m3}}
}

func StepSizeUpdate(h float64) Update {
	return Update{Kind: SetStepSize, StepSize: h}
}

func InitialConditionsUpdate(b1, b2, b3 dynamo.BodyState) Update {
	return Update{Kind: SetInitialConditions, Bodies: [dynamo.NumBodies]dynamo.BodyState{b1, b2, b3}}
}

func ResetUpdate() Update {
	return Update{Kind: Reset}
}

// Validate rejects values the core must never see.
func (u Update) Validate() error {
	switch u.Kind {
	case SetMasses:
		for i, m := range u.Masses {
			if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
				return fmt.Errorf("mass %d must be non-negative, got %g: %w", i+1, m, dynamo.ErrInvalidParameter)
			}
		}
	case SetStepSize:
		if math.IsNaN(u.StepSize) || math.IsInf(u.StepSize, 0) || u.StepSize <= 0 {
			return fmt.Errorf("step size must be positive, got %g: %w", u.StepSize, dynamo.ErrInvalidParameter)
		}
	case SetInitialConditions:
		for i, b := range u.Bodies {
			if !b.IsValid() {
				return fmt.Errorf("body %d: non-finite initial condition: %w", i+1, dynamo.ErrInvalidParameter)
			}
			x, y := b.Pos()
			if math.Abs(x) > MaxAbsX || math.Abs(y) > MaxAbsY {
				return fmt.Errorf("body %d: position (%g, %g) outside |x| <= %g, |y| <= %g: %w",
					i+1, x, y, MaxAbsX, MaxAbsY, dynamo.ErrInvalidParameter)
			}
		}
	case Reset:
	default:
		return fmt.Errorf("unknown update kind %d: %w", int(u.Kind), dynamo.ErrInvalidParameter)
	}
	return nil
}

// Apply returns the new (initial, current) pair after u.
//
// Masses and step size change both states so a later reset keeps them. New
// initial conditions restart the run from t = 0, as does Reset.
func (u Update) Apply(initial, current dynamo.SimulationState) (dynamo.SimulationState, dynamo.SimulationState, error) {
	if err := u.Validate(); err != nil {
		return initial, current, err
	}

	switch u.Kind {
	case SetMasses:
		for i, m := range u.Masses {
			initial.Bodies[i].Mass = m
			current.Bodies[i].Mass = m
		}
	case SetStepSize:
		initial.StepSize = u.StepSize
		current.StepSize = u.StepSize
	case SetInitialConditions:
		for i, b := range u.Bodies {
			initial.Bodies[i].State = b
		}
		initial.T = 0
		current = initial
	case Reset:
		current = initial
	}

	return initial, current, nil
}
