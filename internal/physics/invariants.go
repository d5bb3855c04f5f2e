package physics

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Energy returns kinetic plus pairwise gravitational potential energy.
func Energy(s dynamo.SimulationState) float64 {
	ke := 0.0
	pe := 0.0

	for i, bi := range s.Bodies {
		vx, vy := bi.State.Vel()
		ke += 0.5 * bi.Mass * (vx*vx + vy*vy)

		xi, yi := bi.State.Pos()
		for j := i + 1; j < dynamo.NumBodies; j++ {
			bj := s.Bodies[j]
			xj, yj := bj.State.Pos()
			r := math.Hypot(xj-xi, yj-yi)
			pe -= bi.Mass * bj.Mass / r
		}
	}

	return ke + pe
}

func Momentum(s dynamo.SimulationState) (px, py float64) {
	for _, b := range s.Bodies {
		vx, vy := b.State.Vel()
		px += b.Mass * vx
		py += b.Mass * vy
	}
	return
}

func AngularMomentum(s dynamo.SimulationState) float64 {
	L := 0.0
	for _, b := range s.Bodies {
		x, y := b.State.Pos()
		vx, vy := b.State.Vel()
		L += b.Mass * (x*vy - y*vx)
	}
	return L
}

// MinSeparation returns the smallest pairwise distance between bodies.
func MinSeparation(s dynamo.SimulationState) float64 {
	minDist := math.Inf(1)
	for i := 0; i < dynamo.NumBodies; i++ {
		xi, yi := s.Bodies[i].State.Pos()
		for j := i + 1; j < dynamo.NumBodies; j++ {
			xj, yj := s.Bodies[j].State.Pos()
			minDist = math.Min(minDist, math.Hypot(xj-xi, yj-yi))
		}
	}
	return minDist
}
