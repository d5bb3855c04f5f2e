package config

import (
	"math"
	"sort"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
)

func body(mass, x, vx, y, vy float64) dynamo.Body {
	return dynamo.Body{State: dynamo.NewBodyState(x, vx, y, vy), Mass: mass}
}

func scenario(name string, h, duration float64, bodies ...dynamo.Body) *Config {
	s := dynamo.SimulationState{StepSize: h}
	copy(s.Bodies[:], bodies)
	return FromState(name, s, duration)
}

var (
	triangleR  = 1 / math.Sqrt(3)
	triangleVY = math.Sqrt(3) / 2
)

var Presets = map[string]*Config{
	"figure8": FromState("figure8", physics.FigureEight(), physics.FigureEightPeriod),

	// Equal masses on an equilateral triangle of side 1, rotating rigidly.
	// The configuration is unstable and breaks up after a few turns.
	"lagrange": scenario("lagrange", 0.001, 10,
		body(1, 0, -1, triangleR, 0),
		body(1, -0.5, 0.5, -triangleR/2, -triangleVY),
		body(1, 0.5, 0.5, -triangleR/2, triangleVY),
	),

	"binary-probe": scenario("binary-probe", 0.001, 20,
		body(1, 0.5, 0, 0, math.Sqrt(0.5)),
		body(1, -0.5, 0, 0, -math.Sqrt(0.5)),
		body(0, 2.5, 0, 0, math.Sqrt(2/2.5)),
	),

	// Burrau's problem at half scale: masses 3, 4, 5 released from rest at
	// the corners of a right triangle.
	"pythagorean": scenario("pythagorean", 0.0001, 10,
		body(3, 0.5, 0, 1.5, 0),
		body(4, -1, 0, -0.5, 0),
		body(5, 0.5, 0, -0.5, 0),
	),

	"kepler-probes": scenario("kepler-probes", 0.001, 20,
		body(1, 0, 0, 0, 0),
		body(0, 1, 0, 0, 1),
		body(0, -1.5, 0, 0, -math.Sqrt(1/1.5)),
	),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Bodies = append([]BodyConfig(nil), p.Bodies...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
