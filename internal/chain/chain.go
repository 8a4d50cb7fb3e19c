// Package chain discovers the layered config files that apply to a
// directory.
package chain

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"go.dot.industries/layers/internal/config"
	"go.dot.industries/layers/internal/layer"
)

// Options controls discovery.
type Options struct {
	// File is the config file name looked up in each directory, relative to
	// that directory. Defaults to config.DefaultSettingsFile.
	File string
	// StopDir is the last directory searched. Empty means the filesystem
	// root.
	StopDir string
}

// Discover walks from startDir upwards and returns one entry per directory
// holding opts.File, ancestors first. The walk ends at opts.StopDir, at the
// filesystem root, or after a file that declares "root": true. Files that do
// not parse are still returned so the merge can report them.
func Discover(ctx context.Context, fsys layer.FileSystem, startDir string, opts Options) ([]layer.ChainEntry, error) {
	if opts.File == "" {
		opts.File = config.DefaultSettingsFile
	}

	dir := fsys.Resolve("", startDir)
	stop := ""
	if opts.StopDir != "" {
		stop = fsys.Resolve("", opts.StopDir)
	}

	var found []layer.ChainEntry

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovering chain from %s: %w", startDir, err)
		}

		candidate := fsys.Resolve(dir, opts.File)
		if fsys.Exists(ctx, candidate) {
			found = append(found, layer.ChainEntry{ConfigPath: candidate, BaseDir: dir})

			if isRoot(ctx, fsys, candidate) {
				log.Debug().Str("path", candidate).Msg("root config reached")
				break
			}
		}

		parent := fsys.Dir(dir)
		if dir == stop || parent == dir {
			break
		}
		dir = parent
	}

	// Collected child first; the merge wants parents first.
	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}

	return found, nil
}

func isRoot(ctx context.Context, fsys layer.FileSystem, path string) bool {
	data, err := fsys.ReadFile(ctx, path)
	if err != nil {
		return false
	}

	cfg, err := layer.ParseConfig(path, data)
	if err != nil {
		return false
	}

	return cfg.Root
}

// ForWorkspace looks up the named workspace and discovers its chain.
func ForWorkspace(ctx context.Context, fsys layer.FileSystem, workspaces []config.Workspace, name string, opts Options) ([]layer.ChainEntry, config.Workspace, error) {
	ws, err := config.FindWorkspace(workspaces, name)
	if err != nil {
		return nil, config.Workspace{}, err
	}

	entries, err := Discover(ctx, fsys, filepath.ToSlash(ws.Dir), opts)
	if err != nil {
		return nil, ws, fmt.Errorf("workspace %s: %w", ws.Name, err)
	}

	return entries, ws, nil
}
