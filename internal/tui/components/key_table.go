package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ktSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	ktNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9FAFB"))

	ktValue = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF"))

	ktConflict = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	ktTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#6B7280"))

	ktFocusedRow = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9FAFB")).
			Bold(true)
)

// KeyRow is one merged setting for display.
type KeyRow struct {
	Key        string
	Value      string // compact JSON
	Source     string // label of the winning file
	Conflicted bool
}

// KeyTable holds the state for the settings pane.
type KeyTable struct {
	AllRows       []KeyRow
	Rows          []KeyRow // visible rows after filtering
	Cursor        int
	Focused       bool
	Filter        string
	ConflictsOnly bool
	Offset        int
}

// NewKeyTable creates a table from rows, which are expected in key order.
func NewKeyTable(rows []KeyRow) KeyTable {
	return KeyTable{
		AllRows: rows,
		Rows:    rows,
	}
}

// SetRows replaces the table data and resets the cursor.
func (kt *KeyTable) SetRows(rows []KeyRow) {
	kt.AllRows = rows
	kt.refilter()
	kt.Cursor = 0
	kt.Offset = 0
}

// ApplyFilter filters rows by a case-insensitive match on key or value.
func (kt *KeyTable) ApplyFilter(filter string) {
	kt.Filter = filter
	kt.refilter()
}

// ToggleConflicts switches between all rows and conflicted rows only.
func (kt *KeyTable) ToggleConflicts() {
	kt.ConflictsOnly = !kt.ConflictsOnly
	kt.refilter()
}

func (kt *KeyTable) refilter() {
	if kt.Filter == "" && !kt.ConflictsOnly {
		kt.Rows = kt.AllRows
	} else {
		lower := strings.ToLower(kt.Filter)
		filtered := make([]KeyRow, 0)
		for _, row := range kt.AllRows {
			if kt.ConflictsOnly && !row.Conflicted {
				continue
			}
			if lower != "" &&
				!strings.Contains(strings.ToLower(row.Key), lower) &&
				!strings.Contains(strings.ToLower(row.Value), lower) {
				continue
			}
			filtered = append(filtered, row)
		}
		kt.Rows = filtered
	}

	if kt.Cursor >= len(kt.Rows) {
		kt.Cursor = max(0, len(kt.Rows)-1)
	}
	kt.Offset = 0
}

// Selected returns the currently selected row, or nil if empty.
func (kt *KeyTable) Selected() *KeyRow {
	if kt.Cursor >= 0 && kt.Cursor < len(kt.Rows) {
		return &kt.Rows[kt.Cursor]
	}
	return nil
}

// MoveUp moves the cursor up by one.
func (kt *KeyTable) MoveUp() {
	if kt.Cursor > 0 {
		kt.Cursor--
	}
}

// MoveDown moves the cursor down by one.
func (kt *KeyTable) MoveDown() {
	if kt.Cursor < len(kt.Rows)-1 {
		kt.Cursor++
	}
}

// Len returns the number of visible rows.
func (kt *KeyTable) Len() int {
	return len(kt.Rows)
}

// TotalLen returns the number of unfiltered rows.
func (kt *KeyTable) TotalLen() int {
	return len(kt.AllRows)
}

// View renders the settings pane.
func (kt *KeyTable) View(width, height int) string {
	var b strings.Builder

	title := "Settings"
	if kt.ConflictsOnly {
		title += " (conflicts)"
	}
	countStr := fmt.Sprintf("%d keys", len(kt.Rows))
	titleLeft := ktTitle.Render(title)

	spacer := width - lipgloss.Width(titleLeft) - lipgloss.Width(countStr) - 2
	if spacer < 1 {
		spacer = 1
	}

	b.WriteString(titleLeft)
	b.WriteString(lipgloss.NewStyle().Width(spacer).Render(""))
	b.WriteString(ktTitle.Render(countStr))
	b.WriteString("\n")

	if len(kt.Rows) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true).
			Render("  No settings found"))
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			Render(b.String())
	}

	viewportHeight := height - 2
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if kt.Cursor < kt.Offset {
		kt.Offset = kt.Cursor
	}
	if kt.Cursor >= kt.Offset+viewportHeight {
		kt.Offset = kt.Cursor - viewportHeight + 1
	}

	// key ~40%, value ~35%, source the rest
	keyWidth := width * 2 / 5
	valueWidth := width * 7 / 20
	sourceWidth := width - keyWidth - valueWidth - 5
	if sourceWidth < 4 {
		sourceWidth = 4
	}

	for i := kt.Offset; i < len(kt.Rows) && i < kt.Offset+viewportHeight; i++ {
		row := kt.Rows[i]
		prefix := "  "
		if row.Conflicted {
			prefix = " " + ktConflict.Render("!")
		}
		keyStyle := ktNormal
		valueStyle := ktValue

		if i == kt.Cursor {
			prefix = "> "
			if kt.Focused {
				keyStyle = ktSelected
				valueStyle = ktSelected
			} else {
				keyStyle = ktFocusedRow
			}
		}

		key := padRight(truncate(row.Key, keyWidth), keyWidth)
		value := padRight(truncate(row.Value, valueWidth), valueWidth)
		source := truncateLeft(row.Source, sourceWidth)

		b.WriteString(prefix + keyStyle.Render(key) + " " + valueStyle.Render(value) + " " + ktValue.Render(source))
		if i < kt.Offset+viewportHeight-1 {
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Render(b.String())
}

// truncate shortens a string to maxLen with ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen || maxLen < 4 {
		return s
	}
	return s[:maxLen-1] + "…"
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
