package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 2).
			Width(panelWidth)

	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(11)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")).Bold(true)
	haltedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))

	aboutStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00ffff")).
			Padding(1, 2)
)

// fadeLevels is the number of shades a trail fades through.
const fadeLevels = 4

// fade blends colour toward bg; frac 0 keeps colour, 1 gives bg. The blend
// runs in CIE L*a*b* so the shades step evenly to the eye.
func fade(colour, bg string, frac float64) string {
	c, err := colorful.Hex(colour)
	if err != nil {
		return colour
	}
	b, err := colorful.Hex(bg)
	if err != nil {
		return colour
	}
	return c.BlendLab(b, frac).Clamped().Hex()
}

// shades returns fadeLevels colours from newest (index 0) to oldest.
func shades(colour, bg string) [fadeLevels]string {
	var out [fadeLevels]string
	for i := range out {
		out[i] = fade(colour, bg, 0.7*float64(i)/float64(fadeLevels))
	}
	return out
}

func keyHint(key, desc string) string {
	return keyStyle.Render(key) + hintStyle.Render(" "+desc)
}
