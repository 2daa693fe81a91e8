package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the replay colour scheme.
type Theme struct {
	Name    string
	Path    lipgloss.Color // canvas dots
	Accent  lipgloss.Color // titles and values
	Border  lipgloss.Color
	Muted   lipgloss.Color
	Swing   lipgloss.Color // phase badge while tethered
	Flight  lipgloss.Color // phase badge after release
	Warning lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Path:    lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ff00ff"),
		Border:  lipgloss.Color("#444466"),
		Muted:   lipgloss.Color("#666688"),
		Swing:   lipgloss.Color("#00ff88"),
		Flight:  lipgloss.Color("#ffff00"),
		Warning: lipgloss.Color("#ff4444"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Path:    lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Border:  lipgloss.Color("#005500"),
		Muted:   lipgloss.Color("#007700"),
		Swing:   lipgloss.Color("#00cc00"),
		Flight:  lipgloss.Color("#ccff66"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Path:    lipgloss.Color("#00a8cc"),
		Accent:  lipgloss.Color("#ffd700"),
		Border:  lipgloss.Color("#4488aa"),
		Muted:   lipgloss.Color("#4488aa"),
		Swing:   lipgloss.Color("#00ff88"),
		Flight:  lipgloss.Color("#ffcc00"),
		Warning: lipgloss.Color("#ff4444"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeRetroGreen, ThemeOcean}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}
