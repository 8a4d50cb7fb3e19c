package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestKeys(t *testing.T) {
	keys := []string{"editor.tabSize", "editor.fontSize", "files.exclude", "editor.tabSizes"}

	got := suggestKeys("editor.tabsize", keys)
	require.NotEmpty(t, got)
	assert.Equal(t, "editor.tabSize", got[0])
	assert.NotContains(t, got, "files.exclude")

	assert.Empty(t, suggestKeys("completely.unrelated.key", keys))
}

func TestSuggestKeys_Limit(t *testing.T) {
	keys := []string{"a1", "a2", "a3", "a4", "a5"}

	got := suggestKeys("a", keys)
	assert.Equal(t, []string{"a1", "a2", "a3"}, got)
}

func TestReadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// exported from the editor
		"editor.tabSize": 4,
		"files.exclude": ["dist",],
	}`), 0o644))

	got, err := readSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"editor.tabSize": float64(4),
		"files.exclude":  []any{"dist"},
	}, got)

	empty := filepath.Join(dir, "null.json")
	require.NoError(t, os.WriteFile(empty, []byte("null"), 0o644))
	got, err = readSnapshot(empty)
	require.NoError(t, err)
	assert.Empty(t, got)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1, 2]"), 0o644))
	if _, err := readSnapshot(bad); err == nil {
		t.Error("readSnapshot() expected error for a non-object snapshot, got nil")
	}

	if _, err := readSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("readSnapshot() expected error for a missing file, got nil")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{90 * time.Minute, "1h30m"},
		{45 * time.Minute, "45m"},
		{30 * time.Second, "0m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
