package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette helpers. The TUI must stay readable on light and dark terminal
// backgrounds, so colors are adaptive throughout.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    = ac("240", "243")
	colorAccent   = ac("26", "39")
	colorError    = ac("124", "203")
	colorSuccess  = ac("28", "78")
	colorSelected = ac("#e9e9e9", "#262626")

	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errStyle   = lipgloss.NewStyle().Foreground(colorError)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	selectedRowStyle = lipgloss.NewStyle().Background(colorSelected).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ac("250", "243"))
	cardSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ac("232", "255"))

	toastOKStyle  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	toastErrStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorMuted)
)

// statusStyle colors a status chip.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "pending":
		return lipgloss.NewStyle().Foreground(ac("130", "214"))
	case "active":
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case "declined", "terminated":
		return lipgloss.NewStyle().Foreground(colorMuted)
	}
	return lipgloss.NewStyle()
}
