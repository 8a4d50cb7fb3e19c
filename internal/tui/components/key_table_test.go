package components

import (
	"strings"
	"testing"
)

func sampleRows() []KeyRow {
	return []KeyRow{
		{Key: "editor.fontSize", Value: "14", Source: "base.json"},
		{Key: "editor.tabSize", Value: "4", Source: "app/settings.json", Conflicted: true},
		{Key: "files.exclude", Value: `["dist"]`, Source: "app/settings.json"},
	}
}

func TestKeyTable_ApplyFilter(t *testing.T) {
	table := NewKeyTable(sampleRows())

	table.ApplyFilter("EDITOR")
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows for 'EDITOR', got %d", table.Len())
	}

	table.ApplyFilter("dist")
	if table.Len() != 1 || table.Rows[0].Key != "files.exclude" {
		t.Errorf("expected value match on files.exclude, got %+v", table.Rows)
	}

	table.ApplyFilter("")
	if table.Len() != 3 {
		t.Errorf("expected all 3 rows after clearing filter, got %d", table.Len())
	}
}

func TestKeyTable_ToggleConflicts(t *testing.T) {
	table := NewKeyTable(sampleRows())

	table.ToggleConflicts()
	if table.Len() != 1 || table.Rows[0].Key != "editor.tabSize" {
		t.Fatalf("expected only editor.tabSize, got %+v", table.Rows)
	}

	table.ApplyFilter("font")
	if table.Len() != 0 {
		t.Errorf("expected filter and conflicts to combine, got %d rows", table.Len())
	}

	table.ApplyFilter("")
	table.ToggleConflicts()
	if table.Len() != 3 {
		t.Errorf("expected all rows after toggling back, got %d", table.Len())
	}
}

func TestKeyTable_CursorClampedByFilter(t *testing.T) {
	table := NewKeyTable(sampleRows())
	table.MoveDown()
	table.MoveDown()
	table.MoveDown()
	if table.Cursor != 2 {
		t.Fatalf("expected cursor at 2, got %d", table.Cursor)
	}

	table.ApplyFilter("fontSize")
	if table.Cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", table.Cursor)
	}
	if sel := table.Selected(); sel == nil || sel.Key != "editor.fontSize" {
		t.Errorf("Selected() = %+v, want editor.fontSize", sel)
	}
}

func TestKeyTable_EmptySelected(t *testing.T) {
	table := NewKeyTable(nil)
	if table.Selected() != nil {
		t.Error("expected nil selection for empty table")
	}
	if !strings.Contains(table.View(60, 10), "No settings found") {
		t.Error("expected empty message in view")
	}
}

func TestKeyTable_ViewScrollsToCursor(t *testing.T) {
	rows := make([]KeyRow, 20)
	for i := range rows {
		rows[i] = KeyRow{Key: strings.Repeat("k", i+1), Value: "1"}
	}
	table := NewKeyTable(rows)
	for i := 0; i < 15; i++ {
		table.MoveDown()
	}

	table.View(80, 6)
	if table.Offset == 0 {
		t.Error("expected offset to follow the cursor")
	}
	if table.Cursor < table.Offset || table.Cursor >= table.Offset+4 {
		t.Errorf("cursor %d outside viewport starting at %d", table.Cursor, table.Offset)
	}
}
