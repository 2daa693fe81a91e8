package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are the lipgloss styles derived from one Theme.
type styles struct {
	canvas lipgloss.Style
	panel  lipgloss.Style
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	hint   lipgloss.Style
	swing  lipgloss.Style
	flight lipgloss.Style
	paused lipgloss.Style
}

func newStyles(t Theme) styles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	return styles{
		canvas: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Foreground(t.Path),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		label:  lipgloss.NewStyle().Foreground(t.Muted),
		value:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		hint:   lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
		swing:  badge.Foreground(t.Swing),
		flight: badge.Foreground(t.Flight),
		paused: badge.Foreground(t.Warning),
	}
}

// ProgressBar renders a fraction in [0,1] as a width-cell bar.
func ProgressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
