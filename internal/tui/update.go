package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"go.dot.industries/layers/internal/tui/bridge"
)

// Update handles all messages in the Elm architecture.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// --- Window ---
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	// --- Merge lifecycle ---
	case snapshotLoadedMsg:
		return m.handleSnapshotLoaded(msg)

	case snapshotErrorMsg:
		if m.snapshot == nil {
			m.fatalError = msg.err.Error()
			return m, nil
		}
		m.statusBar.Message = "Merge failed: " + msg.err.Error()
		m.statusBar.IsError = true
		return m, clearStatusAfter(5 * time.Second)

	// --- Source selection ---
	case sourceSelectedMsg:
		m.source = msg.path
		m.table.SetRows(m.tableRows())
		return m, nil

	// --- Status ---
	case statusMsg:
		m.statusBar.Message = msg.text
		m.statusBar.IsError = msg.isError
		return m, clearStatusAfter(3 * time.Second)

	case clearStatusMsg:
		m.statusBar.Message = ""
		m.statusBar.IsError = false
		return m, nil

	// --- Keyboard ---
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleSnapshotLoaded refreshes both panes from a new merge.
func (m model) handleSnapshotLoaded(msg snapshotLoadedMsg) (tea.Model, tea.Cmd) {
	reload := m.snapshot != nil
	m.snapshot = msg.snapshot

	m.sources.SetItems(msg.snapshot.SourceLabels())
	m.source = msg.snapshot.SourcePath(m.sources.Cursor)
	m.table.SetRows(m.tableRows())

	if !reload {
		return m, nil
	}

	return m, func() tea.Msg {
		return statusMsg{text: "Settings reloaded"}
	}
}

// handleKey dispatches keyboard events based on current state.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.activePopup != popupNone {
		return m.handlePopupKey(msg)
	}

	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.focus == focusSources {
			m.focus = focusKeys
			m.sources.Focused = false
			m.table.Focused = true
		} else {
			m.focus = focusSources
			m.sources.Focused = true
			m.table.Focused = false
		}
		return m, nil

	case key.Matches(msg, keys.Up):
		return m.handleNav(-1)

	case key.Matches(msg, keys.Down):
		return m.handleNav(1)

	case key.Matches(msg, keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, keys.Filter):
		m.filtering = true
		m.filterText = ""
		m.table.ApplyFilter("")
		return m, nil

	case key.Matches(msg, keys.Conflicts):
		m.table.ToggleConflicts()
		return m, nil

	case key.Matches(msg, keys.Problems):
		m.activePopup = popupProblems
		return m, nil

	case key.Matches(msg, keys.Help):
		m.activePopup = popupHelp
		return m, nil

	case key.Matches(msg, keys.Copy):
		if row := m.table.Selected(); row != nil {
			return m.copyValue(row.Key)
		}
		return m, nil

	case key.Matches(msg, keys.Reload):
		return m, loadSnapshotCmd(m.bridge)
	}

	return m, nil
}

// handleNav moves the cursor in the focused pane by one row up (dir < 0) or
// down. Moving between files reloads the key table.
func (m model) handleNav(dir int) (tea.Model, tea.Cmd) {
	if m.focus == focusKeys {
		if dir < 0 {
			m.table.MoveUp()
		} else {
			m.table.MoveDown()
		}
		return m, nil
	}

	prev := m.sources.Cursor
	if dir < 0 {
		m.sources.MoveUp()
	} else {
		m.sources.MoveDown()
	}
	if m.sources.Cursor == prev || m.snapshot == nil {
		return m, nil
	}

	path := m.snapshot.SourcePath(m.sources.Cursor)
	return m, func() tea.Msg {
		return sourceSelectedMsg{path: path}
	}
}

// handleEnter opens the detail popup for the selected key.
func (m model) handleEnter() (tea.Model, tea.Cmd) {
	if m.focus != focusKeys {
		return m, nil
	}

	selected := m.table.Selected()
	if selected == nil {
		return m, nil
	}

	m.activePopup = popupDetail
	m.detailKey = selected.Key
	return m, nil
}

// copyValue copies the merged value of k to the clipboard as JSON.
func (m model) copyValue(k string) (tea.Model, tea.Cmd) {
	if m.snapshot == nil {
		return m, nil
	}

	if err := clipboard.WriteAll(bridge.PrettyValue(m.snapshot.Settings[k])); err != nil {
		m.statusBar.Message = "Copy failed: " + err.Error()
		m.statusBar.IsError = true
	} else {
		m.statusBar.Message = "Copied " + k
		m.statusBar.IsError = false
	}
	return m, clearStatusAfter(2 * time.Second)
}

// handleFilterKey handles keyboard input while in filter mode.
func (m model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.filtering = false
		m.filterText = ""
		m.table.ApplyFilter("")
		return m, nil

	case msg.Type == tea.KeyEnter:
		m.filtering = false
		return m, nil

	case msg.Type == tea.KeyBackspace:
		if len(m.filterText) > 0 {
			m.filterText = m.filterText[:len(m.filterText)-1]
			m.table.ApplyFilter(m.filterText)
		}
		return m, nil

	case msg.Type == tea.KeyRunes:
		m.filterText += string(msg.Runes)
		m.table.ApplyFilter(m.filterText)
		return m, nil
	}

	return m, nil
}

// handlePopupKey dispatches keyboard events for the currently active popup.
func (m model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Escape) || key.Matches(msg, keys.Quit) {
		m.activePopup = popupNone
		return m, nil
	}

	if m.activePopup == popupDetail && key.Matches(msg, keys.Copy) {
		return m.copyValue(m.detailKey)
	}

	if m.activePopup == popupHelp && key.Matches(msg, keys.Help) {
		m.activePopup = popupNone
	}

	return m, nil
}

// clearStatusAfter returns a command that sends clearStatusMsg after a delay.
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
