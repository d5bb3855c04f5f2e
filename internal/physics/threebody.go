package physics

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Derivative returns d/dt of the active body's state under the pull of two
// passive bodies with unit gravitational constant and no softening.
//
// The position slots of the result carry the active velocity and the speed
// slots carry the net acceleration. A passive body at the active position
// yields a non-finite acceleration, which is returned as is.
func Derivative(active, passive1 dynamo.BodyState, mass1 float64, passive2 dynamo.BodyState, mass2 float64) dynamo.BodyState {
	xo, yo := active.Pos()
	vx, vy := active.Vel()
	x1, y1 := passive1.Pos()
	x2, y2 := passive2.Pos()

	dx1, dy1 := xo-x1, yo-y1
	dx2, dy2 := xo-x2, yo-y2

	r1Cubed := math.Pow(dx1*dx1+dy1*dy1, 1.5)
	r2Cubed := math.Pow(dx2*dx2+dy2*dy2, 1.5)

	ax := -(mass1*dx1/r1Cubed + mass2*dx2/r2Cubed)
	ay := -(mass1*dy1/r1Cubed + mass2*dy2/r2Cubed)

	return dynamo.NewBodyState(vx, ax, vy, ay)
}

var _ dynamo.Field = Derivative

// FigureEightPeriod is the period of the Chenciner-Montgomery orbit in
// units where G = 1 and every mass is 1.
const FigureEightPeriod = 6.32591398

// DefaultStepSize matches the interactive default.
const DefaultStepSize = 0.001

// FigureEight returns the equal-mass figure-eight initial condition. Bodies 1
// and 2 carry half of body 3's reversed velocity so total momentum is zero.
func FigureEight() dynamo.SimulationState {
	const (
		x0  = 0.97000436
		y0  = -0.24308753
		vx3 = -0.93240737
		vy3 = -0.86473146
	)
	return dynamo.SimulationState{
		StepSize: DefaultStepSize,
		Bodies: [dynamo.NumBodies]dynamo.Body{
			{State: dynamo.NewBodyState(x0, -vx3/2, y0, -vy3/2), Mass: 1},
			{State: dynamo.NewBodyState(-x0, -vx3/2, -y0, -vy3/2), Mass: 1},
			{State: dynamo.NewBodyState(0, vx3, 0, vy3), Mass: 1},
		},
	}
}
