// Package layerfs provides the file access used by the merge engine.
//
// OS and Memory are backed by afero. Vault serves documents stored in a Vault
// KV v2 mount and Mux routes a path prefix to one adapter and everything else
// to another.
package layerfs

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// Writer is implemented by adapters that can write files back.
type Writer interface {
	WriteFile(ctx context.Context, path string, data []byte) error
}

// FS adapts an afero filesystem to the merge engine. Paths it returns use
// forward slashes.
type FS struct {
	afs    afero.Fs
	native bool
}

// OS returns an adapter for the host filesystem.
func OS() *FS {
	return &FS{afs: afero.NewOsFs(), native: true}
}

// Memory returns an in-memory adapter seeded with files, keyed by absolute
// forward-slash path.
func Memory(files map[string]string) *FS {
	afs := afero.NewMemMapFs()

	for p, content := range files {
		// MemMapFs writes cannot fail for clean absolute paths.
		_ = afero.WriteFile(afs, path.Clean(p), []byte(content), 0o644)
	}

	return &FS{afs: afs}
}

func (f *FS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(f.afs, f.toNative(p))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}

	return data, nil
}

func (f *FS) Exists(ctx context.Context, p string) bool {
	if ctx.Err() != nil {
		return false
	}

	info, err := f.afs.Stat(f.toNative(p))
	return err == nil && !info.IsDir()
}

// WriteFile replaces the file at p, creating parent directories.
func (f *FS) WriteFile(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := f.toNative(p)
	if err := f.afs.MkdirAll(f.dir(name), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", p, err)
	}

	perm := os.FileMode(0o644)
	if info, err := f.afs.Stat(name); err == nil {
		perm = info.Mode().Perm()
	}

	if err := afero.WriteFile(f.afs, name, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}

	return nil
}

// Resolve joins p onto baseDir unless p is absolute and returns the cleaned
// absolute path.
func (f *FS) Resolve(baseDir, p string) string {
	if !f.native {
		if !path.IsAbs(p) {
			p = path.Join(baseDir, p)
		}
		if !path.IsAbs(p) {
			p = "/" + p
		}
		return path.Clean(p)
	}

	native := filepath.FromSlash(p)
	if !filepath.IsAbs(native) {
		native = filepath.Join(filepath.FromSlash(baseDir), native)
	}
	if abs, err := filepath.Abs(native); err == nil {
		native = abs
	}

	return filepath.ToSlash(filepath.Clean(native))
}

func (f *FS) Dir(p string) string {
	if !f.native {
		return path.Dir(p)
	}
	return filepath.ToSlash(filepath.Dir(filepath.FromSlash(p)))
}

func (f *FS) Base(p string) string {
	if !f.native {
		return path.Base(p)
	}
	return filepath.Base(filepath.FromSlash(p))
}

func (f *FS) IsAbs(p string) bool {
	if !f.native {
		return path.IsAbs(p)
	}
	return filepath.IsAbs(filepath.FromSlash(p))
}

// toNative converts a forward-slash path to the form the backing filesystem
// expects.
func (f *FS) toNative(p string) string {
	if !f.native {
		return path.Clean(p)
	}
	return filepath.FromSlash(p)
}

func (f *FS) dir(name string) string {
	if !f.native {
		return path.Dir(name)
	}
	return filepath.Dir(name)
}
