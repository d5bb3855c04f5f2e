package metrics

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
)

// ClosestApproach is the smallest pairwise separation seen. Small values
// flag near-collisions where fixed-step results are least trustworthy.
type ClosestApproach struct {
	name    string
	minDist float64
}

func NewClosestApproach() *ClosestApproach {
	return &ClosestApproach{name: "closest_approach", minDist: math.Inf(1)}
}

func (c *ClosestApproach) Name() string { return c.name }

func (c *ClosestApproach) Observe(s dynamo.SimulationState) {
	c.minDist = math.Min(c.minDist, physics.MinSeparation(s))
}

func (c *ClosestApproach) Value() float64 { return c.minDist }

func (c *ClosestApproach) Reset() { c.minDist = math.Inf(1) }

// Bounded is the fraction of ticks during which every body stayed within
// radius of the origin. 1 means nothing escaped the view.
type Bounded struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBounded(radius float64) *Bounded {
	return &Bounded{
		name:   "bounded",
		radius: radius,
	}
}

func (b *Bounded) Name() string { return b.name }

func (b *Bounded) Observe(s dynamo.SimulationState) {
	b.samples++
	for _, body := range s.Bodies {
		x, y := body.State.Pos()
		if math.Hypot(x, y) > b.radius {
			b.violations++
			break
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
