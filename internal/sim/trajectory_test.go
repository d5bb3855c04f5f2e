package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

func run(x0 dynamo.SimulationState, duration float64) *dynamo.Result {
	s := sim.New(physics.Derivative, integrators.NewRK4())
	res, err := s.Run(context.Background(), x0, dynamo.Config{Duration: duration, ValidateState: true})
	Expect(err).NotTo(HaveOccurred())
	return res
}

func maxDrift(res *dynamo.Result) (energy, momentum float64) {
	e0 := physics.Energy(res.States[0])
	px0, py0 := physics.Momentum(res.States[0])
	for _, st := range res.States {
		energy = math.Max(energy, math.Abs(physics.Energy(st)-e0)/math.Abs(e0))
		px, py := physics.Momentum(st)
		momentum = math.Max(momentum, math.Max(math.Abs(px-px0), math.Abs(py-py0)))
	}
	return energy, momentum
}

var _ = Describe("Three-body trajectories", func() {
	Describe("the figure-eight orbit", func() {
		It("returns near its start after one period", func() {
			x0 := physics.FigureEight()
			res := run(x0, physics.FigureEightPeriod)
			final := res.States[len(res.States)-1]

			for i := range final.Bodies {
				x, y := final.Bodies[i].State.Pos()
				x0x, x0y := x0.Bodies[i].State.Pos()
				Expect(math.Hypot(x-x0x, y-x0y)).To(BeNumerically("<", 0.1), "body %d", i+1)
			}
		})

		It("keeps total momentum close to zero", func() {
			_, momentum := maxDrift(run(physics.FigureEight(), 2))
			Expect(momentum).To(BeNumerically("<", 2e-3))
		})

		It("drifts in energy less as the step shrinks", func() {
			coarse := physics.FigureEight()
			coarse.StepSize = 0.002
			eCoarse, _ := maxDrift(run(coarse, 2))
			eFine, _ := maxDrift(run(physics.FigureEight(), 2))

			Expect(eCoarse).To(BeNumerically("<", 0.02))
			Expect(eFine).To(BeNumerically("<", eCoarse))
		})
	})

	Describe("a massless third body", func() {
		binary := func(x3, y3 float64) dynamo.SimulationState {
			v := math.Sqrt(0.5)
			return dynamo.SimulationState{
				StepSize: 0.001,
				Bodies: [dynamo.NumBodies]dynamo.Body{
					{State: dynamo.NewBodyState(0.5, 0, 0, v), Mass: 1},
					{State: dynamo.NewBodyState(-0.5, 0, 0, -v), Mass: 1},
					{State: dynamo.NewBodyState(x3, 0, y3, 0), Mass: 0},
				},
			}
		}

		It("leaves the other two bodies untouched", func() {
			a := run(binary(3, 1.5), 1)
			b := run(binary(-3, -1.5), 1)

			Expect(a.States).To(HaveLen(len(b.States)))
			for i := range a.States {
				Expect(a.States[i].Bodies[0]).To(Equal(b.States[i].Bodies[0]))
				Expect(a.States[i].Bodies[1]).To(Equal(b.States[i].Bodies[1]))
			}
		})

		It("still falls toward the others", func() {
			res := run(binary(3, 1.5), 1)
			final := res.States[len(res.States)-1].Bodies[2].State
			x, y := final.Pos()
			Expect(math.Hypot(x, y)).To(BeNumerically("<", math.Hypot(3, 1.5)))
		})
	})

	Describe("a probe around a fixed mass", func() {
		probe := func(h float64) (float64, dynamo.BodyState) {
			st := dynamo.SimulationState{
				StepSize: h,
				Bodies: [dynamo.NumBodies]dynamo.Body{
					{State: dynamo.NewBodyState(1, 0, 0, 1), Mass: 0},
					{State: dynamo.NewBodyState(0, 0, 0, 0), Mass: 1},
					{State: dynamo.NewBodyState(-2, 0, 0, -1/math.Sqrt2), Mass: 0},
				},
			}
			res := run(st, 2)
			final := res.States[len(res.States)-1]
			x, y := final.Bodies[0].State.Pos()
			return math.Hypot(x-math.Cos(final.T), y-math.Sin(final.T)), final.Bodies[1].State
		}

		It("converges at fourth order", func() {
			e1, _ := probe(0.1)
			e2, _ := probe(0.05)
			e3, _ := probe(0.025)

			Expect(e1).To(BeNumerically("<", 1e-5))
			Expect(e1 / e2).To(BeNumerically("~", 16, 5))
			Expect(e2 / e3).To(BeNumerically("~", 16, 5))
		})

		It("does not move the central mass", func() {
			_, center := probe(0.05)
			Expect(center.Values()).To(Equal([4]float64{}))
		})
	})
})
