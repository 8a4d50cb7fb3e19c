package jsonedit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.dot.industries/layers/internal/layer"
	"go.dot.industries/layers/internal/reconcile"
)

const commented = `{
	// shared editor defaults
	"extends": "../base.json",
	"settings": {
		"tabSize": 2, // narrow
		"theme": "dark",
	},
}
`

func settingsOf(t *testing.T, data []byte) map[string]any {
	t.Helper()
	cfg, err := layer.ParseConfig("test.json", data)
	require.NoError(t, err, "result must stay valid JSONC:\n%s", data)
	return cfg.Settings
}

func TestSetSetting_Replace(t *testing.T) {
	out, err := SetSetting([]byte(commented), "tabSize", 4)
	require.NoError(t, err)

	assert.Equal(t, float64(4), settingsOf(t, out)["tabSize"])
	assert.Contains(t, string(out), "// shared editor defaults")
	assert.Contains(t, string(out), `"extends": "../base.json"`)
}

func TestSetSetting_Add(t *testing.T) {
	out, err := SetSetting([]byte(commented), "files.exclude", []any{"dist"})
	require.NoError(t, err)

	settings := settingsOf(t, out)
	assert.Equal(t, []any{"dist"}, settings["files.exclude"])
	assert.Equal(t, "dark", settings["theme"])
	assert.Contains(t, string(out), "// shared editor defaults")
}

func TestSetSetting_CreatesSettings(t *testing.T) {
	out, err := SetSetting([]byte(`{"root": true}`), "a", "b")
	require.NoError(t, err)

	cfg, err := layer.ParseConfig("test.json", out)
	require.NoError(t, err)
	assert.True(t, cfg.Root)
	assert.Equal(t, map[string]any{"a": "b"}, cfg.Settings)
}

func TestSetSetting_EmptyFile(t *testing.T) {
	out, err := SetSetting(nil, "a", nil)
	require.NoError(t, err)

	settings := settingsOf(t, out)
	v, ok := settings["a"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestSetSetting_KeyWithSlash(t *testing.T) {
	out, err := SetSetting([]byte(`{"settings": {}}`), "a/b~c", 1)
	require.NoError(t, err)
	assert.Equal(t, float64(1), settingsOf(t, out)["a/b~c"])
}

func TestRemoveSetting(t *testing.T) {
	out, err := RemoveSetting([]byte(commented), "theme")
	require.NoError(t, err)

	settings := settingsOf(t, out)
	_, ok := settings["theme"]
	assert.False(t, ok)
	assert.Equal(t, float64(2), settings["tabSize"])
}

func TestRemoveSetting_MissingIsNoop(t *testing.T) {
	out, err := RemoveSetting([]byte(commented), "nope")
	require.NoError(t, err)
	assert.Equal(t, commented, string(out))

	out, err = RemoveSetting([]byte(`{"root": true}`), "nope")
	require.NoError(t, err)
	assert.Equal(t, `{"root": true}`, string(out), "settings is not created for a removal")
}

func TestApply_Mixed(t *testing.T) {
	out, err := Apply([]byte(commented), []reconcile.Edit{
		{Op: reconcile.OpSet, Key: "tabSize", Value: float64(8)},
		{Op: reconcile.OpRemove, Key: "theme"},
		{Op: reconcile.OpSet, Key: "[go]", Value: map[string]any{"formatOnSave": true}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"tabSize": float64(8),
		"[go]":    map[string]any{"formatOnSave": true},
	}, settingsOf(t, out))
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		edits []reconcile.Edit
	}{
		{name: "invalid jsonc", src: `{"settings": `, edits: []reconcile.Edit{{Op: reconcile.OpRemove, Key: "a"}}},
		{name: "top level array", src: `[]`, edits: []reconcile.Edit{{Op: reconcile.OpRemove, Key: "a"}}},
		{name: "settings not object", src: `{"settings": 1}`, edits: []reconcile.Edit{{Op: reconcile.OpRemove, Key: "a"}}},
		{name: "unknown op", src: `{"settings": {}}`, edits: []reconcile.Edit{{Op: "move", Key: "a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Apply([]byte(tt.src), tt.edits); err == nil {
				t.Fatal("Apply() expected error, got nil")
			}
		})
	}
}

func TestPreview(t *testing.T) {
	before := "{\n  \"a\": 1\n}\n"
	after := "{\n  \"a\": 2\n}\n"

	got := Preview("settings.json", before, after)
	assert.True(t, strings.HasPrefix(got, "--- settings.json\n+++ settings.json\n"), got)
	assert.Contains(t, got, "@@ ")

	assert.Equal(t, "", Preview("settings.json", before, before))
}

func TestStats(t *testing.T) {
	added, deleted := Stats("a\nb\nc\n", "a\nc\nd\ne\n")
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, deleted)
}
