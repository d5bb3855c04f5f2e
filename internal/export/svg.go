package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Style sets the colours of an SVG export. Colours are CSS strings.
type Style struct {
	Background string
	Bodies     [dynamo.NumBodies]string
	ShowAxes   bool
}

func DefaultStyle() Style {
	return Style{
		Background: "#ffffff",
		Bodies:     [dynamo.NumBodies]string{"#000000", "#0000ff", "#ff0000"},
	}
}

// TrajectoriesToSVG draws the path of every body over states on shared,
// equally scaled axes, with a dot at each final position sized by mass.
func TrajectoriesToSVG(states []dynamo.SimulationState, width, height int, style Style) string {
	if len(states) < 2 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, st := range states {
		for _, b := range st.Bodies {
			x, y := b.State.Pos()
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
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
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	scale := math.Min(float64(width)/rangeX, float64(height)/rangeY)
	offX := (float64(width) - rangeX*scale) / 2
	offY := (float64(height) - rangeY*scale) / 2
	project := func(x, y float64) (float64, float64) {
		return offX + (x-minX)*scale, float64(height) - offY - (y-minY)*scale
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, style.Background)

	if style.ShowAxes {
		ox, oy := project(0, 0)
		ux, _ := project(1, 0)
		_, uy := project(0, 1)
		fmt.Fprintf(&sb, `<g stroke="#00008b" stroke-width="1"><line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/><line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/></g>
`, ox, oy, ux, oy, ox, oy, ox, uy)
	}

	for b := 0; b < dynamo.NumBodies; b++ {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, style.Bodies[b])
		for i, st := range states {
			x, y := project(st.Bodies[b].State.Pos())
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	last := states[len(states)-1]
	for b, body := range last.Bodies {
		x, y := project(body.State.Pos())
		r := 2 + 4*math.Sqrt(body.Mass)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, x, y, r, style.Bodies[b])
	}

	sb.WriteString("</svg>")
	return sb.String()
}
