package config

import (
	"fmt"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

const (
	DefaultStepSize   = physics.DefaultStepSize
	DefaultDuration   = 10.0
	DefaultBackground = "white"
)

// Backgrounds lists the live view backgrounds in cycle order.
var Backgrounds = []string{"white", "red", "black", "blue"}

// RGB is a body colour with components in 0..255. In YAML it is either a
// sequence [r, g, b] or a hex string like "#ff8800".
type RGB struct {
	R, G, B int
}

func (c RGB) Valid() bool {
	for _, v := range []int{c.R, c.G, c.B} {
		if v < 0 || v > 255 {
			return false
		}
	}
	return true
}

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

func (c RGB) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []int{c.R, c.G, c.B} {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)})
	}
	return n, nil
}

func (c *RGB) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		col, err := colorful.Hex(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: colour %q: %w", value.Line, value.Value, err)
		}
		r, g, b := col.RGB255()
		*c = RGB{R: int(r), G: int(g), B: int(b)}
		return nil
	}

	var parts []int
	if err := value.Decode(&parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("line %d: colour needs 3 components, got %d", value.Line, len(parts))
	}
	*c = RGB{R: parts[0], G: parts[1], B: parts[2]}
	return nil
}

type BodyConfig struct {
	Mass  float64 `yaml:"mass"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	VX    float64 `yaml:"vx"`
	VY    float64 `yaml:"vy"`
	Color RGB     `yaml:"color"`
}

func (b BodyConfig) State() dynamo.BodyState {
	return dynamo.NewBodyState(b.X, b.VX, b.Y, b.VY)
}

// Config is a scenario: three bodies, how to integrate them and how long.
type Config struct {
	Name       string       `yaml:"name,omitempty"`
	Integrator string       `yaml:"integrator"`
	StepSize   float64      `yaml:"step_size"`
	Duration   float64      `yaml:"duration"`
	Background string       `yaml:"background"`
	Bodies     []BodyConfig `yaml:"bodies"`
}

var defaultColors = [dynamo.NumBodies]RGB{
	{0, 0, 0},
	{0, 0, 255},
	{255, 0, 0},
}

// DefaultConfig is the equal-mass figure-eight.
func DefaultConfig() *Config {
	return FromState("figure8", physics.FigureEight(), DefaultDuration)
}

// FromState builds a scenario from a state using the default colours.
func FromState(name string, s dynamo.SimulationState, duration float64) *Config {
	cfg := &Config{
		Name:       name,
		Integrator: integrators.Default,
		StepSize:   s.StepSize,
		Duration:   duration,
		Background: DefaultBackground,
		Bodies:     make([]BodyConfig, dynamo.NumBodies),
	}
	for i, b := range s.Bodies {
		x, y := b.State.Pos()
		vx, vy := b.State.Vel()
		cfg.Bodies[i] = BodyConfig{Mass: b.Mass, X: x, Y: y, VX: vx, VY: vy, Color: defaultColors[i]}
	}
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate applies the same bounds the live editor enforces.
func (c *Config) Validate() error {
	if !finite(c.StepSize) || c.StepSize <= 0 {
		return fmt.Errorf("step_size must be positive, got %g: %w", c.StepSize, dynamo.ErrInvalidParameter)
	}
	if !finite(c.Duration) || c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g: %w", c.Duration, dynamo.ErrInvalidParameter)
	}
	if err := sim.CheckSteps(c.StepSize, c.Duration); err != nil {
		return err
	}
	if _, err := integrators.Lookup(c.Integrator); err != nil {
		return err
	}
	if BackgroundIndex(c.Background) < 0 {
		return fmt.Errorf("background %q not one of %v: %w", c.Background, Backgrounds, dynamo.ErrInvalidParameter)
	}
	if len(c.Bodies) != dynamo.NumBodies {
		return fmt.Errorf("need exactly %d bodies, got %d: %w", dynamo.NumBodies, len(c.Bodies), dynamo.ErrInvalidParameter)
	}
	for i, b := range c.Bodies {
		if !finite(b.Mass) || b.Mass < 0 {
			return fmt.Errorf("body %d: mass must be non-negative, got %g: %w", i+1, b.Mass, dynamo.ErrInvalidParameter)
		}
		if !b.State().IsValid() {
			return fmt.Errorf("body %d: non-finite initial condition: %w", i+1, dynamo.ErrInvalidParameter)
		}
		if math.Abs(b.X) > sim.MaxAbsX || math.Abs(b.Y) > sim.MaxAbsY {
			return fmt.Errorf("body %d: position (%g, %g) outside |x| <= %g, |y| <= %g: %w",
				i+1, b.X, b.Y, sim.MaxAbsX, sim.MaxAbsY, dynamo.ErrInvalidParameter)
		}
		if !b.Color.Valid() {
			return fmt.Errorf("body %d: colour components must be in 0..255, got %v: %w", i+1, b.Color, dynamo.ErrInvalidParameter)
		}
	}
	return nil
}

// State converts a validated scenario to the initial simulation state.
func (c *Config) State() (dynamo.SimulationState, error) {
	if err := c.Validate(); err != nil {
		return dynamo.SimulationState{}, err
	}
	s := dynamo.SimulationState{StepSize: c.StepSize}
	for i, b := range c.Bodies {
		s.Bodies[i] = dynamo.Body{State: b.State(), Mass: b.Mass}
	}
	return s, nil
}

// Colors returns the three body colours.
func (c *Config) Colors() [dynamo.NumBodies]RGB {
	var out [dynamo.NumBodies]RGB
	for i := range out {
		if i < len(c.Bodies) {
			out[i] = c.Bodies[i].Color
		}
	}
	return out
}

func BackgroundIndex(name string) int {
	for i, b := range Backgrounds {
		if b == name {
			return i
		}
	}
	return -1
}
