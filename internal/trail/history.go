package trail

import "github.com/san-kum/threebody/internal/dynamo"

// DefaultCapacity is the number of positions kept per body.
const DefaultCapacity = 1000

type Point struct {
	X, Y float64
}

// History holds one ring of past positions per body.
type History struct {
	bodies [dynamo.NumBodies]*Ring[Point]
}

func NewHistory(capacity int) *History {
	h := &History{}
	for i := range h.bodies {
		h.bodies[i] = NewRing[Point](capacity)
	}
	return h
}

// Record appends the current position of every body.
func (h *History) Record(s dynamo.SimulationState) {
	for i, b := range s.Bodies {
		x, y := b.State.Pos()
		h.bodies[i].Push(Point{X: x, Y: y})
	}
}

func (h *History) Body(i int) *Ring[Point] {
	return h.bodies[i]
}

func (h *History) Len() int {
	return h.bodies[0].Len()
}

func (h *History) Reset() {
	for _, r := range h.bodies {
		r.Reset()
	}
}
