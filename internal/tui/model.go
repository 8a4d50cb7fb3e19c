package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go.dot.industries/layers/internal/tui/bridge"
	"go.dot.industries/layers/internal/tui/components"
)

// focusPane tracks which pane has focus.
type focusPane int

const (
	focusSources focusPane = iota
	focusKeys
)

// popup identifies which popup is currently open.
type popup int

const (
	popupNone popup = iota
	popupHelp
	popupDetail
	popupProblems
)

// model is the root Bubble Tea model for the settings browser.
type model struct {
	// Dimensions
	width  int
	height int

	// Core data
	bridge   *bridge.Bridge
	snapshot *bridge.Snapshot
	source   string // selected file, "" for the merged view

	// UI state
	focus       focusPane
	activePopup popup
	filtering   bool
	filterText  string

	// Components
	sources   components.SourceList
	table     components.KeyTable
	statusBar components.StatusBar

	// Detail popup
	detailKey string

	// Error state
	fatalError string
}

// newModel creates the initial model with the given bridge.
func newModel(b *bridge.Bridge) model {
	return model{
		bridge:  b,
		focus:   focusSources,
		sources: components.NewSourceList([]string{bridge.MergedLabel}),
	}
}

// Init merges the chain on startup.
func (m model) Init() tea.Cmd {
	return loadSnapshotCmd(m.bridge)
}

// loadSnapshotCmd creates a command that merges the chain.
func loadSnapshotCmd(b *bridge.Bridge) tea.Cmd {
	return func() tea.Msg {
		snap, err := b.Load(context.Background())
		if err != nil {
			return snapshotErrorMsg{err: err}
		}
		return snapshotLoadedMsg{snapshot: snap}
	}
}

// tableRows converts the snapshot rows of the selected source for display.
func (m model) tableRows() []components.KeyRow {
	if m.snapshot == nil {
		return nil
	}

	src := m.snapshot.Rows(m.source)
	rows := make([]components.KeyRow, 0, len(src))
	for _, r := range src {
		rows = append(rows, components.KeyRow{
			Key:        r.Key,
			Value:      bridge.FormatValue(r.Value),
			Source:     r.WinnerLabel,
			Conflicted: r.Conflicted,
		})
	}
	return rows
}

// View renders the entire TUI.
func (m model) View() string {
	if m.fatalError != "" {
		return lipgloss.NewStyle().
			Foreground(colorError).
			Padding(1, 2).
			Render("Error: " + m.fatalError + "\n\nPress q to quit.")
	}

	if m.snapshot == nil {
		return lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 2).
			Render("Merging settings...")
	}

	if m.width < minTermWidth || m.height < minTermHeight {
		return lipgloss.NewStyle().
			Foreground(colorWarning).
			Padding(1, 2).
			Render("Terminal too small. Please resize.")
	}

	dims := components.CalculateLayout(m.width, m.height)

	header := components.RenderHeader(m.width, m.bridge.Title(), len(m.snapshot.Diagnostics))

	leftContent := m.sources.View(dims.LeftWidth-2, dims.ContentHeight-2)
	rightContent := m.table.View(dims.RightWidth-2, dims.ContentHeight-2)
	panes := components.RenderDualPane(
		leftContent,
		rightContent,
		m.focus == focusSources,
		dims,
	)

	m.statusBar.KeyCount = m.table.TotalLen()
	m.statusBar.Conflicts = m.snapshot.ConflictCount()
	m.statusBar.Filtering = m.filtering
	m.statusBar.FilterText = m.filterText
	statusLine := m.statusBar.View(m.width)

	footer := components.RenderFooter(m.width, m.filtering, m.activePopup != popupNone)

	view := lipgloss.JoinVertical(lipgloss.Left,
		header,
		panes,
		statusLine,
		footer,
	)

	if m.activePopup != popupNone {
		view = m.overlayPopup(view)
	}

	return view
}

// overlayPopup renders the active popup centered on the screen.
func (m model) overlayPopup(base string) string {
	var popupContent string

	switch m.activePopup {
	case popupHelp:
		popupContent = m.renderHelpPopup()
	case popupDetail:
		popupContent = m.renderDetailPopup()
	case popupProblems:
		popupContent = m.renderProblemsPopup()
	default:
		return base
	}

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		popupContent,
		lipgloss.WithWhitespaceChars(" "),
	)
}
