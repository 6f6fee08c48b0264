// Package ui provides the terminal dashboard for the activity engine.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette is the dashboard color scheme.
type Palette struct {
	Muted  lipgloss.AdaptiveColor
	Accent lipgloss.AdaptiveColor
	Active lipgloss.AdaptiveColor
	Warn   lipgloss.AdaptiveColor
	Error  lipgloss.AdaptiveColor
}

var palette = Palette{
	Muted:  lipgloss.AdaptiveColor{Light: "#6B6B7B", Dark: "#8E8EA0"},
	Accent: lipgloss.AdaptiveColor{Light: "#5B3FD9", Dark: "#A68BFF"},
	Active: lipgloss.AdaptiveColor{Light: "#1F9D6B", Dark: "#6EF2B4"},
	Warn:   lipgloss.AdaptiveColor{Light: "#B87400", Dark: "#F5C542"},
	Error:  lipgloss.AdaptiveColor{Light: "#D41C1C", Dark: "#FF5C5C"},
}

// Style holds the rendered element styles of the dashboard.
type Style struct {
	Title          lipgloss.Style
	Badge          lipgloss.Style
	Label          lipgloss.Style
	Value          lipgloss.Style
	ActiveStatus   lipgloss.Style
	InactiveStatus lipgloss.Style
	Sleeping       lipgloss.Style
	Selected       lipgloss.Style
	Unselected     lipgloss.Style
	InputBox       lipgloss.Style
	Help           lipgloss.Style
	Error          lipgloss.Style
	Reply          lipgloss.Style
	Banner         lipgloss.Style
	Countdown      lipgloss.Style
}

// DefaultStyle builds the styles from the palette.
func DefaultStyle() Style {
	base := lipgloss.NewStyle().Padding(0, 1)

	return Style{
		Title: base.
			Bold(true).
			Foreground(palette.Accent),

		Badge: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(palette.Accent),

		Label: base.
			Width(10).
			Foreground(palette.Muted),

		Value: lipgloss.NewStyle(),

		ActiveStatus: lipgloss.NewStyle().
			Foreground(palette.Active),

		InactiveStatus: lipgloss.NewStyle().
			Foreground(palette.Muted),

		Sleeping: lipgloss.NewStyle().
			Foreground(palette.Warn),

		Selected: base.
			Bold(true).
			Foreground(palette.Accent),

		Unselected: base,

		InputBox: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Accent).
			Padding(0, 1),

		Help: base.
			Foreground(palette.Muted),

		Error: base.
			Foreground(palette.Error),

		Reply: base.
			Italic(true).
			Foreground(palette.Active),

		Banner: base.
			Bold(true).
			Foreground(palette.Active),

		Countdown: base.
			Foreground(palette.Accent).
			Bold(true),
	}
}

// Current is the active style set.
var Current = DefaultStyle()
