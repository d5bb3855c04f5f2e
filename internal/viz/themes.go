package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the orbit canvas for one background.
type Theme struct {
	Name       string
	Background lipgloss.Color
	Text       lipgloss.Color
	Axis       lipgloss.Color
}

// Canvas themes, one per background in config.Backgrounds.
var (
	ThemeWhite = Theme{
		Name:       "white",
		Background: lipgloss.Color("#ffffff"),
		Text:       lipgloss.Color("#000000"),
		Axis:       lipgloss.Color("#00008b"),
	}

	ThemeRed = Theme{
		Name:       "red",
		Background: lipgloss.Color("#ff0000"),
		Text:       lipgloss.Color("#ffffff"),
		Axis:       lipgloss.Color("#ffff00"),
	}

	ThemeBlack = Theme{
		Name:       "black",
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#ffffff"),
		Axis:       lipgloss.Color("#00ffff"),
	}

	ThemeBlue = Theme{
		Name:       "blue",
		Background: lipgloss.Color("#0000ff"),
		Text:       lipgloss.Color("#ffffff"),
		Axis:       lipgloss.Color("#ffd700"),
	}
)

var themes = map[string]Theme{
	"white": ThemeWhite,
	"red":   ThemeRed,
	"black": ThemeBlack,
	"blue":  ThemeBlue,
}

// GetTheme returns the named theme, or white.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return ThemeWhite
}
