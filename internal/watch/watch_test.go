package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.dot.industries/layers/internal/layer"
	"go.dot.industries/layers/internal/layerfs"
)

func TestRemerge_DiffsConsecutiveMerges(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/repo/base.json":     `{"settings": {"a": 1, "b": 2}}`,
		"/repo/settings.json": `{"extends": "base.json", "settings": {"c": 3}}`,
	})
	entries := []layer.ChainEntry{{ConfigPath: "settings.json", BaseDir: "/repo"}}

	w := New(fsys, entries)

	first := w.Remerge(context.Background())
	assert.Len(t, first.Diff.Added, 3)
	assert.Equal(t, []string{"/repo/base.json", "/repo/settings.json"}, first.Files)

	require.NoError(t, fsys.WriteFile(context.Background(), "/repo/base.json", []byte(`{"settings": {"a": 10}}`)))

	second := w.Remerge(context.Background())
	assert.Equal(t, map[string]any{"a": float64(10)}, second.Diff.Changed)
	assert.Equal(t, []string{"b"}, second.Diff.Removed)
	assert.Empty(t, second.Diff.Added)

	third := w.Remerge(context.Background())
	assert.True(t, third.Diff.Empty())
}

func TestRemerge_ReportsDiagnostics(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/repo/settings.json": `{"extends": "missing.json"}`,
	})

	w := New(fsys, []layer.ChainEntry{{ConfigPath: "/repo/settings.json", BaseDir: "/repo"}})
	u := w.Remerge(context.Background())

	require.Len(t, u.Diagnostics, 1)
	assert.Equal(t, layer.KindExtendNotFound, u.Diagnostics[0].Kind)
}

func TestRemerge_TracksNewExtends(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/repo/settings.json": `{}`,
		"/repo/extra.json":    `{"settings": {"x": true}}`,
	})
	w := New(fsys, []layer.ChainEntry{{ConfigPath: "/repo/settings.json", BaseDir: "/repo"}})

	w.Remerge(context.Background())
	assert.False(t, w.watched("/repo/extra.json"))

	require.NoError(t, fsys.WriteFile(context.Background(), "/repo/settings.json", []byte(`{"extends": "extra.json"}`)))
	w.Remerge(context.Background())
	assert.True(t, w.watched("/repo/extra.json"))
}

func TestRun_RemergesOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"settings": {"a": 1}}`), 0o644))

	updates := make(chan Update, 4)
	w := New(layerfs.OS(),
		[]layer.ChainEntry{{ConfigPath: filepath.ToSlash(path), BaseDir: filepath.ToSlash(dir)}},
		WithDebounce(100*time.Millisecond),
		WithOnChange(func(u Update) { updates <- u }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give Run time to merge and register the directory before editing.
	deadline := time.Now().Add(5 * time.Second)
	for !w.watched(filepath.ToSlash(path)) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"settings": {"a": 2}}`), 0o644))

	select {
	case u := <-updates:
		assert.Equal(t, map[string]any{"a": float64(2)}, u.Diff.Changed)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not report the change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}
