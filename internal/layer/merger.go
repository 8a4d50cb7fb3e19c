// Package layer merges layered JSONC settings files.
//
// A layered file may extend other files; extended files are merged first so
// the extending file wins. Every key keeps its provenance: the file that won,
// the values it overrode and, for arrays, which file contributed which slice
// of the concatenated result.
package layer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"go.dot.industries/layers/internal/value"
)

// FileSystem is the file access a Merger needs. Paths handed out by Resolve
// are absolute and use forward slashes.
type FileSystem interface {
	// ReadFile returns the file content, or an error wrapping fs.ErrNotExist
	// when the file is missing.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Resolve(baseDir, path string) string
	Dir(path string) string
	Base(path string) string
	IsAbs(path string) bool
}

// ChainEntry is one root configuration file of a merge.
type ChainEntry struct {
	ConfigPath string `json:"configPath" yaml:"configPath"`
	BaseDir    string `json:"baseDir" yaml:"baseDir"`
}

// Option configures a Merger.
type Option func(*Merger)

// WithHandlers sets the callbacks for non-fatal problems.
func WithHandlers(h Handlers) Option {
	return func(m *Merger) {
		m.handlers = h
	}
}

// Merger accumulates settings and provenance across a chain of layered
// files. A Merger is not safe for concurrent use; run concurrent merges on
// separate instances.
type Merger struct {
	fs       FileSystem
	handlers Handlers

	settings   map[string]any
	provenance map[string]*KeyProvenance
	resolving  map[string]bool
	extended   map[string]struct{}
}

// New creates a Merger reading files through fsys.
func New(fsys FileSystem, opts ...Option) *Merger {
	m := &Merger{fs: fsys}

	for _, opt := range opts {
		opt(m)
	}

	m.Reset()

	return m
}

// Reset clears all merge state.
func (m *Merger) Reset() {
	m.settings = make(map[string]any)
	m.provenance = make(map[string]*KeyProvenance)
	m.resolving = make(map[string]bool)
	m.extended = make(map[string]struct{})
}

// MergeFromConfig merges a single root file.
func (m *Merger) MergeFromConfig(ctx context.Context, configPath, baseDir string) {
	m.MergeFromConfigChain(ctx, []ChainEntry{{ConfigPath: configPath, BaseDir: baseDir}})
}

// MergeFromConfigChain clears the previous state and merges entries in order
// into one result, so later entries win. Problems with individual files are
// reported through the handlers and never stop the merge.
func (m *Merger) MergeFromConfigChain(ctx context.Context, entries []ChainEntry) {
	m.Reset()

	for _, e := range entries {
		path := m.fs.Resolve(e.BaseDir, e.ConfigPath)
		m.resolve(ctx, path, false)
	}
}

// resolve merges the file at path after everything it extends.
func (m *Merger) resolve(ctx context.Context, path string, viaExtends bool) {
	if m.resolving[path] {
		log.Debug().Str("path", path).Msg("circular extends")
		m.handlers.circular(path)
		return
	}

	m.resolving[path] = true
	defer delete(m.resolving, path)

	data, err := m.fs.ReadFile(ctx, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("read config failed, treating as missing")
		}
		return
	}

	cfg, err := ParseConfig(path, data)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("parse config failed")
		if viaExtends {
			m.extended[path] = struct{}{}
		}
		m.handlers.parseError(path, err)
		return
	}

	if !cfg.Enabled {
		log.Debug().Str("path", path).Msg("config disabled, skipping subtree")
		return
	}

	if viaExtends {
		m.extended[path] = struct{}{}
	}

	for _, item := range cfg.InvalidExtends {
		m.handlers.invalidExtend(fmt.Sprintf("extends entry %v in %s is not a string", item, path))
	}

	for _, target := range cfg.Extends {
		m.resolveExtend(ctx, path, target)
	}

	if cfg.Settings != nil {
		m.mergeSettings(path, cfg.Settings)
	}
}

func (m *Merger) resolveExtend(ctx context.Context, from, target string) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		log.Debug().Str("path", from).Str("target", target).Msg("skipping remote extends")
		return
	}

	if !strings.HasSuffix(target, ".json") {
		m.handlers.invalidExtend(fmt.Sprintf("extends %q in %s must reference a .json file", target, from))
		return
	}

	resolved := m.fs.Resolve(m.fs.Dir(from), target)
	if !m.fs.Exists(ctx, resolved) {
		log.Debug().Str("path", from).Str("target", resolved).Msg("extends target not found")
		m.handlers.extendNotFound(resolved)
		return
	}

	m.resolve(ctx, resolved, true)
}

// Settings returns a deep copy of the merged settings.
func (m *Merger) Settings() map[string]any {
	return value.CloneMap(m.settings)
}

// Provenance returns a copy of the provenance of every tracked key.
func (m *Merger) Provenance() map[string]KeyProvenance {
	out := make(map[string]KeyProvenance, len(m.provenance))
	for k, p := range m.provenance {
		out[k] = p.Clone()
	}
	return out
}

// OwnedKeys returns the merged setting keys, sorted.
func (m *Merger) OwnedKeys() []string {
	keys := make([]string, 0, len(m.settings))
	for k := range m.settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ExtendedFiles returns the files reached through extends, sorted. Root
// entry files are not included unless another file extends them.
func (m *Merger) ExtendedFiles() []string {
	files := make([]string, 0, len(m.extended))
	for f := range m.extended {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// ConflictedKeys returns the keys whose value overrode another file's value,
// sorted.
func (m *Merger) ConflictedKeys() []string {
	keys := []string{}
	for k, p := range m.provenance {
		if p.Conflicted() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
