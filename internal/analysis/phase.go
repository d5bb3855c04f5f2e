package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Coordinate selects one slot of a BodyState.
type Coordinate int

const (
	CoordX Coordinate = iota
	CoordVX
	CoordY
	CoordVY
)

func ParseCoordinate(s string) (Coordinate, error) {
	switch s {
	case "x":
		return CoordX, nil
	case "vx":
		return CoordVX, nil
	case "y":
		return CoordY, nil
	case "vy":
		return CoordVY, nil
	}
	return 0, fmt.Errorf("unknown coordinate %q (want x, vx, y or vy): %w", s, dynamo.ErrInvalidParameter)
}

func (c Coordinate) of(s dynamo.BodyState) float64 {
	return s.Values()[c]
}

type Point struct {
	X, Y float64
}

// PhasePortrait2D is one body's trajectory projected onto two coordinates.
type PhasePortrait2D struct {
	Body   int
	XCoord Coordinate
	YCoord Coordinate
	Points []Point
}

// GeneratePhasePortrait projects the recorded states of body (0-based).
func GeneratePhasePortrait(states []dynamo.SimulationState, body int, xc, yc Coordinate) *PhasePortrait2D {
	if body < 0 || body >= dynamo.NumBodies {
		return nil
	}

	portrait := &PhasePortrait2D{
		Body:   body,
		XCoord: xc,
		YCoord: yc,
		Points: make([]Point, 0, len(states)),
	}
	for _, s := range states {
		b := s.Bodies[body].State
		portrait.Points = append(portrait.Points, Point{X: xc.of(b), Y: yc.of(b)})
	}
	return portrait
}

// PhasePortraitToASCII rasterizes points into a width x height grid with
// axes drawn where zero is in view.
func PhasePortraitToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossing is one upward pass of a body through y = 0.
type Crossing struct {
	T  float64
	X  float64
	VX float64
}

// PoincareSection records where body crosses y = 0 moving upward, with
// time and position linearly interpolated between ticks.
func PoincareSection(states []dynamo.SimulationState, body int) []Crossing {
	if body < 0 || body >= dynamo.NumBodies {
		return nil
	}

	var out []Crossing
	for i := 1; i < len(states); i++ {
		prev := states[i-1].Bodies[body].State
		curr := states[i].Bodies[body].State
		y0, y1 := prev.Y.Position, curr.Y.Position
		if !(y0 < 0 && y1 >= 0) {
			continue
		}

		frac := -y0 / (y1 - y0)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		lerp := func(a, b float64) float64 { return a + (b-a)*frac }

		out = append(out, Crossing{
			T:  lerp(states[i-1].T, states[i].T),
			X:  lerp(prev.X.Position, curr.X.Position),
			VX: lerp(prev.X.Speed, curr.X.Speed),
		})
	}
	return out
}

// CrossingPeriod is the mean interval between consecutive crossings, or 0
// with fewer than two.
func CrossingPeriod(crossings []Crossing) float64 {
	if len(crossings) < 2 {
		return 0
	}
	return (crossings[len(crossings)-1].T - crossings[0].T) / float64(len(crossings)-1)
}

// SectionPoints converts crossings to (x, vx) points for plotting.
func SectionPoints(crossings []Crossing) []Point {
	pts := make([]Point, len(crossings))
	for i, c := range crossings {
		pts[i] = Point{X: c.X, Y: c.VX}
	}
	return pts
}
