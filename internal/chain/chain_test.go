package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.dot.industries/layers/internal/config"
	"go.dot.industries/layers/internal/layer"
	"go.dot.industries/layers/internal/layerfs"
)

func paths(entries []layer.ChainEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ConfigPath
	}
	return out
}

func TestDiscover_AncestorsFirst(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/repo/settings.json":              `{"settings": {"a": 1}}`,
		"/repo/apps/settings.json":         `{"settings": {"a": 2}}`,
		"/repo/apps/web/src/settings.json": `{"settings": {"a": 3}}`,
	})

	got, err := Discover(context.Background(), fsys, "/repo/apps/web/src", Options{File: "settings.json"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/repo/settings.json",
		"/repo/apps/settings.json",
		"/repo/apps/web/src/settings.json",
	}, paths(got))
	assert.Equal(t, "/repo/apps", got[1].BaseDir)
}

func TestDiscover_StopsAtRootFile(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/repo/settings.json":     `{"settings": {"a": 1}}`,
		"/repo/app/settings.json": `{"root": true, "settings": {"a": 2}}`,
		"/repo/app/x/settings.json": `// nested
{"settings": {"a": 3}}`,
	})

	got, err := Discover(context.Background(), fsys, "/repo/app/x", Options{File: "settings.json"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/repo/app/settings.json", "/repo/app/x/settings.json"}, paths(got))
}

func TestDiscover_StopDir(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/settings.json":          `{"settings": {"outside": true}}`,
		"/repo/settings.json":     `{"settings": {"a": 1}}`,
		"/repo/pkg/settings.json": `{"settings": {"a": 2}}`,
	})

	got, err := Discover(context.Background(), fsys, "/repo/pkg", Options{File: "settings.json", StopDir: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/repo/settings.json", "/repo/pkg/settings.json"}, paths(got))
}

func TestDiscover_IncludesUnparseableFiles(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/repo/settings.json":   `{"root": true}`,
		"/repo/a/settings.json": `{not json`,
	})

	got, err := Discover(context.Background(), fsys, "/repo/a", Options{File: "settings.json"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/repo/settings.json", "/repo/a/settings.json"}, paths(got))
}

func TestDiscover_DefaultFileName(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/repo/.layers/settings.json": `{}`,
	})

	got, err := Discover(context.Background(), fsys, "/repo", Options{})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "/repo/.layers/settings.json", got[0].ConfigPath)
	assert.Equal(t, "/repo", got[0].BaseDir)
}

func TestDiscover_NothingFound(t *testing.T) {
	got, err := Discover(context.Background(), layerfs.Memory(nil), "/empty/dir", Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscover_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Discover(ctx, layerfs.Memory(nil), "/a", Options{}); err == nil {
		t.Fatal("Discover() expected error for canceled context, got nil")
	}
}

func TestDiscover_FeedsMerger(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/repo/settings.json":     `{"settings": {"tabSize": 2, "exclude": ["a"]}}`,
		"/repo/web/settings.json": `{"settings": {"tabSize": 4, "exclude": ["b"]}}`,
	})

	entries, err := Discover(context.Background(), fsys, "/repo/web", Options{File: "settings.json"})
	require.NoError(t, err)

	m := layer.New(fsys)
	m.MergeFromConfigChain(context.Background(), entries)

	settings := m.Settings()
	assert.Equal(t, float64(4), settings["tabSize"])
	assert.Equal(t, []any{"a", "b"}, settings["exclude"])
}

func TestForWorkspace(t *testing.T) {
	fsys := layerfs.Memory(map[string]string{
		"/repo/settings.json":          `{"settings": {"a": 1}}`,
		"/repo/apps/web/settings.json": `{"settings": {"a": 2}}`,
	})
	workspaces := []config.Workspace{
		{Name: "apps/web", Dir: "/repo/apps/web"},
		{Name: "apps/docs", Dir: "/repo/apps/docs"},
	}

	entries, ws, err := ForWorkspace(context.Background(), fsys, workspaces, "web", Options{File: "settings.json", StopDir: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, "apps/web", ws.Name)
	assert.Equal(t, []string{"/repo/settings.json", "/repo/apps/web/settings.json"}, paths(entries))

	if _, _, err := ForWorkspace(context.Background(), fsys, workspaces, "mobile", Options{}); err == nil {
		t.Error("ForWorkspace() expected error for unknown workspace")
	}
}
