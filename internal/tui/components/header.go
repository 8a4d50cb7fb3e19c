package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	headerBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)
)

// RenderHeader returns the header bar with title and chain badge.
func RenderHeader(width int, chain string, diagnostics int) string {
	title := headerTitle.Render("layers: settings browser")
	label := fmt.Sprintf("chain: %s", chain)
	if diagnostics > 0 {
		label += fmt.Sprintf(" | %d problems", diagnostics)
	}
	badge := headerBadge.Render(label)

	spacer := width - lipgloss.Width(title) - lipgloss.Width(badge)
	if spacer < 1 {
		spacer = 1
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		lipgloss.NewStyle().Width(spacer).Render(""),
		badge,
	)
}
