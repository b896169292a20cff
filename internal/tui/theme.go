package tui

import "github.com/charmbracelet/lipgloss"

var (
	Sapphire = lipgloss.Color("#74c7ec")
	Subtext0 = lipgloss.Color("#a6adc8")
	Surface1 = lipgloss.Color("#45475a")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	titleStyle = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(Subtext0)
	okStyle    = lipgloss.NewStyle().Foreground(Green).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(Red).Bold(true)

	logStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface1).
			Padding(0, 1)
)
