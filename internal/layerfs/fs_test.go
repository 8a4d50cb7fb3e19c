package layerfs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ReadAndExists(t *testing.T) {
	ctx := context.Background()
	m := Memory(map[string]string{
		"/repo/.layers/settings.json": `{"settings": {}}`,
	})

	data, err := m.ReadFile(ctx, "/repo/.layers/settings.json")
	require.NoError(t, err)
	assert.Equal(t, `{"settings": {}}`, string(data))

	assert.True(t, m.Exists(ctx, "/repo/.layers/settings.json"))
	assert.False(t, m.Exists(ctx, "/repo/.layers"), "directories are not files")
	assert.False(t, m.Exists(ctx, "/repo/missing.json"))

	_, err = m.ReadFile(ctx, "/repo/missing.json")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile() error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := Memory(map[string]string{"/a.json": "{}"})

	_, err := m.ReadFile(ctx, "/a.json")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, m.Exists(ctx, "/a.json"))
}

func TestMemory_PathArithmetic(t *testing.T) {
	m := Memory(nil)

	tests := []struct {
		base string
		path string
		want string
	}{
		{"/repo/pkg", "../base.json", "/repo/base.json"},
		{"/repo/pkg", "./a/b.json", "/repo/pkg/a/b.json"},
		{"/repo/pkg", "/shared/x.json", "/shared/x.json"},
		{"", "rel.json", "/rel.json"},
	}

	for _, tt := range tests {
		if got := m.Resolve(tt.base, tt.path); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}

	assert.Equal(t, "/repo/pkg", m.Dir("/repo/pkg/settings.json"))
	assert.Equal(t, "settings.json", m.Base("/repo/pkg/settings.json"))
	assert.True(t, m.IsAbs("/repo"))
	assert.False(t, m.IsAbs("repo"))
}

func TestMemory_WriteFile(t *testing.T) {
	ctx := context.Background()
	m := Memory(nil)

	require.NoError(t, m.WriteFile(ctx, "/new/dir/settings.json", []byte(`{}`)))

	data, err := m.ReadFile(ctx, "/new/dir/settings.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestOS_ResolveIsAbsoluteForwardSlash(t *testing.T) {
	dir := t.TempDir()
	o := OS()

	got := o.Resolve(dir, "sub/../settings.json")
	want := filepath.ToSlash(filepath.Join(dir, "settings.json"))
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
	assert.True(t, o.IsAbs(got))
}

func TestOS_ReadWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	o := OS()

	p := filepath.ToSlash(filepath.Join(dir, "a", "settings.json"))
	require.NoError(t, o.WriteFile(ctx, p, []byte(`{"settings":{"x":1}}`)))
	assert.True(t, o.Exists(ctx, p))

	data, err := o.ReadFile(ctx, p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"settings":{"x":1}}`, string(data))

	info, err := os.Stat(filepath.FromSlash(p))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	_, err = o.ReadFile(ctx, filepath.ToSlash(filepath.Join(dir, "nope.json")))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
