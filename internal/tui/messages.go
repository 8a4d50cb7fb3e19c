package tui

import "go.dot.industries/layers/internal/tui/bridge"

// --- Merge lifecycle ---

// snapshotLoadedMsg is sent after the chain is merged.
type snapshotLoadedMsg struct {
	snapshot *bridge.Snapshot
}

// snapshotErrorMsg is sent when merging fails outright.
type snapshotErrorMsg struct{ err error }

// --- Source selection ---

// sourceSelectedMsg signals that the user moved to another file. An empty
// path selects the merged view.
type sourceSelectedMsg struct {
	path string
}

// --- UI state ---

// statusMsg shows a temporary status message in the status bar.
type statusMsg struct {
	text    string
	isError bool
}

// clearStatusMsg clears the status message.
type clearStatusMsg struct{}
