package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard shortcuts for the TUI.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Tab       key.Binding
	Enter     key.Binding
	Filter    key.Binding
	Conflicts key.Binding
	Problems  key.Binding
	Help      key.Binding
	Copy      key.Binding
	Reload    key.Binding
	Escape    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("", ""),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch pane"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "view key"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Conflicts: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "conflicts only"),
	),
	Problems: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "merge problems"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy value"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close/cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "force quit"),
	),
}
