package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	srcSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	srcNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	srcFocused = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9FAFB"))

	srcTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6B7280")).
			MarginBottom(1)
)

// SourceList holds the state for the file selector pane. The first item is
// the merged view; the rest are chain files in merge order.
type SourceList struct {
	Items   []string
	Cursor  int
	Focused bool
	Offset  int
}

// NewSourceList creates a list from the given labels.
func NewSourceList(labels []string) SourceList {
	return SourceList{
		Items:   labels,
		Focused: true,
	}
}

// SetItems replaces the labels, keeping the cursor when it is still valid.
func (sl *SourceList) SetItems(labels []string) {
	sl.Items = labels
	if sl.Cursor >= len(labels) {
		sl.Cursor = max(0, len(labels)-1)
	}
	sl.Offset = 0
}

// Selected returns the label under the cursor.
func (sl *SourceList) Selected() string {
	if sl.Cursor >= 0 && sl.Cursor < len(sl.Items) {
		return sl.Items[sl.Cursor]
	}
	return ""
}

// MoveUp moves the cursor up by one.
func (sl *SourceList) MoveUp() {
	if sl.Cursor > 0 {
		sl.Cursor--
	}
}

// MoveDown moves the cursor down by one.
func (sl *SourceList) MoveDown() {
	if sl.Cursor < len(sl.Items)-1 {
		sl.Cursor++
	}
}

// Len returns the number of items.
func (sl *SourceList) Len() int {
	return len(sl.Items)
}

// View renders the source list pane.
func (sl *SourceList) View(width, height int) string {
	var b strings.Builder

	b.WriteString(srcTitle.Render("Files"))
	b.WriteString("\n")

	visible := height - 2 // title + margin
	if visible < 1 {
		visible = 1
	}
	if sl.Cursor < sl.Offset {
		sl.Offset = sl.Cursor
	}
	if sl.Cursor >= sl.Offset+visible {
		sl.Offset = sl.Cursor - visible + 1
	}

	for i := sl.Offset; i < len(sl.Items) && i < sl.Offset+visible; i++ {
		prefix := "  "
		style := srcNormal
		if i == sl.Cursor {
			prefix = "> "
			if sl.Focused {
				style = srcSelected
			} else {
				style = srcFocused
			}
		}

		b.WriteString(style.Render(prefix + truncateLeft(sl.Items[i], width-2)))
		if i < len(sl.Items)-1 {
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Render(b.String())
}

// truncateLeft keeps the end of a path, which is the part that tells files
// apart.
func truncateLeft(s string, maxLen int) string {
	if len(s) <= maxLen || maxLen < 4 {
		return s
	}
	return "…" + s[len(s)-maxLen+1:]
}
