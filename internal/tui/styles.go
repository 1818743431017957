// internal/tui/styles.go
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent   = lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#B8A6FF"}
	colorMuted    = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}
	colorError    = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#FF8A80"}
	colorSelected = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	activeStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSelected).Background(colorAccent)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1).
			MarginRight(1)
)
