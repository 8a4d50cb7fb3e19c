// Package tui implements an interactive terminal UI for browsing merged
// layered settings and where each key came from, using the Charmbracelet
// Bubble Tea framework.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"go.dot.industries/layers/internal/tui/bridge"
)

// Run starts the interactive TUI. It blocks until the user quits.
func Run(b *bridge.Bridge) error {
	m := newModel(b)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
