package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/sim"
)

type promptKind int

const (
	promptMasses promptKind = iota
	promptStepSize
	promptInitial
	promptColors
)

func (k promptKind) label() string {
	switch k {
	case promptMasses:
		return "masses m1 m2 m3"
	case promptStepSize:
		return "step size"
	case promptInitial:
		return "x vx y vy for bodies 1-3"
	case promptColors:
		return "r g b for bodies 1-3 (0-255)"
	}
	return ""
}

// prompt is a one-line edit buffer opened by a key and closed by enter or
// esc.
type prompt struct {
	kind promptKind
	buf  string
}

func (p *prompt) insert(s string) {
	for _, r := range s {
		if (r >= '0' && r <= '9') || strings.ContainsRune(".-+eE ,", r) {
			p.buf += string(r)
		}
	}
}

func (p *prompt) backspace() {
	if len(p.buf) > 0 {
		p.buf = p.buf[:len(p.buf)-1]
	}
}

// newPrompt opens an edit of kind prefilled with the values in effect.
func newPrompt(kind promptKind, initial dynamo.SimulationState, colors [dynamo.NumBodies]config.RGB) *prompt {
	var vals []string
	g := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	switch kind {
	case promptMasses:
		for _, m := range initial.Masses() {
			vals = append(vals, g(m))
		}
	case promptStepSize:
		vals = append(vals, g(initial.StepSize))
	case promptInitial:
		for _, b := range initial.Bodies {
			x, y := b.State.Pos()
			vx, vy := b.State.Vel()
			vals = append(vals, g(x), g(vx), g(y), g(vy))
		}
	case promptColors:
		for _, c := range colors {
			vals = append(vals, strconv.Itoa(c.R), strconv.Itoa(c.G), strconv.Itoa(c.B))
		}
	}
	return &prompt{kind: kind, buf: strings.Join(vals, " ")}
}

// parseNumbers splits s on spaces or commas and requires exactly n numbers.
func parseNumbers(s string, n int) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != n {
		return nil, fmt.Errorf("want %d numbers, got %d: %w", n, len(fields), dynamo.ErrInvalidParameter)
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number: %w", f, dynamo.ErrInvalidParameter)
		}
		out[i] = v
	}
	return out, nil
}

// update parses a simulation edit into the Update it requests.
func (p *prompt) update() (sim.Update, error) {
	var u sim.Update
	switch p.kind {
	case promptMasses:
		v, err := parseNumbers(p.buf, dynamo.NumBodies)
		if err != nil {
			return u, err
		}
		u = sim.MassesUpdate(v[0], v[1], v[2])
	case promptStepSize:
		v, err := parseNumbers(p.buf, 1)
		if err != nil {
			return u, err
		}
		u = sim.StepSizeUpdate(v[0])
	case promptInitial:
		v, err := parseNumbers(p.buf, 4*dynamo.NumBodies)
		if err != nil {
			return u, err
		}
		var bodies [dynamo.NumBodies]dynamo.BodyState
		for i := range bodies {
			x, vx, y, vy := v[4*i], v[4*i+1], v[4*i+2], v[4*i+3]
			bodies[i] = dynamo.NewBodyState(x, vx, y, vy)
		}
		u = sim.InitialConditionsUpdate(bodies[0], bodies[1], bodies[2])
	default:
		return u, fmt.Errorf("%s is not a simulation edit: %w", p.kind.label(), dynamo.ErrInvalidParameter)
	}
	return u, u.Validate()
}

// colors parses a colour edit.
func (p *prompt) colors() ([dynamo.NumBodies]config.RGB, error) {
	var out [dynamo.NumBodies]config.RGB
	v, err := parseNumbers(p.buf, 3*dynamo.NumBodies)
	if err != nil {
		return out, err
	}
	for i := range out {
		c := config.RGB{R: int(v[3*i]), G: int(v[3*i+1]), B: int(v[3*i+2])}
		for _, f := range v[3*i : 3*i+3] {
			if f != float64(int(f)) {
				return out, fmt.Errorf("body %d: colour components must be integers: %w", i+1, dynamo.ErrInvalidParameter)
			}
		}
		if !c.Valid() {
			return out, fmt.Errorf("body %d: colour components must be in 0..255: %w", i+1, dynamo.ErrInvalidParameter)
		}
		out[i] = c
	}
	return out, nil
}
