package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorTitle   = lipgloss.Color("#4A90E2")
	ColorCount   = lipgloss.Color("#FFFFFF")
	ColorLabel   = lipgloss.Color("#AAAAAA")
	ColorRunning = lipgloss.Color("#00CC33")
	ColorSitting = lipgloss.Color("#888888")
	ColorButton  = lipgloss.Color("#4A90E2")
	ColorWarning = lipgloss.Color("#FFAA00")
	ColorError   = lipgloss.Color("#FF3300")
)

var (
	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorTitle).
			Bold(true).
			Padding(0, 1)

	StyleCount = lipgloss.NewStyle().
			Foreground(ColorCount).
			Bold(true)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorLabel)

	StyleCalories = lipgloss.NewStyle().
			Foreground(ColorCount).
			Bold(true)

	StyleRunning = lipgloss.NewStyle().
			Foreground(ColorRunning).
			Bold(true)

	StyleSitting = lipgloss.NewStyle().
			Foreground(ColorSitting)

	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorTitle).
			Padding(1, 3)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorSitting)

	StyleNotice = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleOffline = lipgloss.NewStyle().
			Foreground(ColorError)
)
