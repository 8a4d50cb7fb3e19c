package tui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	colorPrimary   = lipgloss.Color("#7C3AED") // violet-600
	colorSecondary = lipgloss.Color("#A78BFA") // violet-400
	colorMuted     = lipgloss.Color("#6B7280") // gray-500
	colorFg        = lipgloss.Color("#F9FAFB") // gray-50
	colorFgDim     = lipgloss.Color("#9CA3AF") // gray-400
	colorWarning   = lipgloss.Color("#F59E0B") // amber-500
	colorError     = lipgloss.Color("#EF4444") // red-500
)

// Style presets for reuse across popups.
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleNormal = lipgloss.NewStyle().
			Foreground(colorFg)

	styleDim = lipgloss.NewStyle().
			Foreground(colorFgDim)

	styleErrorText = lipgloss.NewStyle().
			Foreground(colorError)

	styleWarningText = lipgloss.NewStyle().
				Foreground(colorWarning)

	styleKey = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleDesc = lipgloss.NewStyle().
			Foreground(colorFgDim)

	stylePopup = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)
)

// minTermWidth is the minimum usable terminal width.
const minTermWidth = 60

// minTermHeight is the minimum usable terminal height.
const minTermHeight = 16
