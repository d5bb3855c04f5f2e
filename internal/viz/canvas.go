package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

// Canvas is a braille dot grid where each character cell carries one
// colour, the colour of the last dot or text written into it.
type Canvas struct {
	Width, Height int
	grid          [][]rune
	ink           [][]string
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		grid:   make([][]rune, h),
		ink:    make([][]string, h),
	}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
		c.ink[i] = make([]string, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in sub-pixels, (Width*2) x (Height*4).
func (c *Canvas) Dots() (int, int) {
	return c.Width * 2, c.Height * 4
}

// Set lights the dot at sub-pixel (x, y) in colour. Out-of-range dots are
// ignored.
func (c *Canvas) Set(x, y int, colour string) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	cell := c.grid[row][col]
	if cell < blank || cell > blank+0xff {
		cell = blank
	}
	c.grid[row][col] = cell | rune(pixelMap[y%4][x%2])
	c.ink[row][col] = colour
}

// At reports whether the dot at (x, y) is lit.
func (c *Canvas) At(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	cell := c.grid[y/4][x/2]
	if cell < blank || cell > blank+0xff {
		return false
	}
	return cell&rune(pixelMap[y%4][x%2]) != 0
}

// Text writes s starting at character cell (col, row), clipped to the row.
func (c *Canvas) Text(col, row int, s, colour string) {
	if row < 0 || row >= c.Height {
		return
	}
	for _, r := range s {
		if col >= c.Width {
			return
		}
		if col >= 0 {
			c.grid[row][col] = r
			c.ink[row][col] = colour
		}
		col++
	}
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = blank
			c.ink[i][j] = ""
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, colour string) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, colour)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Disc fills a round blob of radius r around (x, y), clipped to the canvas.
func (c *Canvas) Disc(x, y, r int, colour string) {
	cw, ch := c.Dots()
	r = min(r, cw+ch)
	for dy := max(-r, -y); dy <= min(r, ch-1-y); dy++ {
		for dx := max(-r, -x); dx <= min(r, cw-1-x); dx++ {
			if dx*dx+dy*dy <= r*r+1 {
				c.Set(x+dx, y+dy, colour)
			}
		}
	}
}

// String returns the grid without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render paints the grid on background bg, batching runs of equal colour
// into one lipgloss span.
func (c *Canvas) Render(bg, fg lipgloss.Color) string {
	base := lipgloss.NewStyle().Background(bg).Foreground(fg)
	var b strings.Builder
	for i, row := range c.grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.ink[i][j] == c.ink[i][start] {
				continue
			}
			style := base
			if ink := c.ink[i][start]; ink != "" {
				style = style.Foreground(lipgloss.Color(ink))
			}
			b.WriteString(style.Render(string(row[start:j])))
			start = j
		}
		if i < len(c.grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
