// Package watch re-merges a layered chain whenever one of its files changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"go.dot.industries/layers/internal/diff"
	"go.dot.industries/layers/internal/layer"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before merging.
const DefaultDebounce = 200 * time.Millisecond

// Update is the outcome of one re-merge.
type Update struct {
	Settings    map[string]any
	Diff        diff.ObjectDiff
	Diagnostics []layer.Diagnostic
	// Files are the files the merge read: chain entries and everything they
	// extend.
	Files []string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a re-merge.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnChange sets the callback run after each re-merge that changed the
// settings or reported problems.
func WithOnChange(fn func(Update)) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// Watcher merges a chain and keeps the result current.
type Watcher struct {
	fs       layer.FileSystem
	entries  []layer.ChainEntry
	debounce time.Duration
	onChange func(Update)

	mu    sync.Mutex
	last  map[string]any
	files map[string]bool
}

// New creates a Watcher for the chain entries read through fsys.
func New(fsys layer.FileSystem, entries []layer.ChainEntry, opts ...Option) *Watcher {
	w := &Watcher{
		fs:       fsys,
		entries:  entries,
		debounce: DefaultDebounce,
		onChange: logUpdate,
		last:     make(map[string]any),
		files:    make(map[string]bool),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Remerge merges the chain and diffs it against the previous merge.
func (w *Watcher) Remerge(ctx context.Context) Update {
	var diags layer.Diagnostics
	m := layer.New(w.fs, layer.WithHandlers(diags.Handlers()))
	m.MergeFromConfigChain(ctx, w.entries)

	settings := m.Settings()

	files := make(map[string]bool)
	for _, e := range w.entries {
		files[w.fs.Resolve(e.BaseDir, e.ConfigPath)] = true
	}
	for _, f := range m.ExtendedFiles() {
		files[f] = true
	}

	w.mu.Lock()
	d := diff.Objects(w.last, settings)
	w.last = settings
	w.files = files
	w.mu.Unlock()

	list := make([]string, 0, len(files))
	for f := range files {
		list = append(list, f)
	}
	sort.Strings(list)

	return Update{
		Settings:    settings,
		Diff:        d,
		Diagnostics: diags.List(),
		Files:       list,
	}
}

// watched reports whether path is one of the files of the last merge.
func (w *Watcher) watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[filepath.ToSlash(filepath.Clean(path))]
}

// Run merges once, then re-merges after changes to any file of the chain
// until ctx is done. Files are watched through their directories so editors
// that replace files on save are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	dirs := make(map[string]bool)
	track := func(u Update) {
		for _, f := range u.Files {
			dir := filepath.Dir(filepath.FromSlash(f))
			if dirs[dir] {
				continue
			}
			if err := fsw.Add(dir); err != nil {
				log.Debug().Err(err).Str("dir", dir).Msg("cannot watch directory")
				continue
			}
			dirs[dir] = true
		}
	}

	first := w.Remerge(ctx)
	track(first)
	log.Info().Int("files", len(first.Files)).Int("keys", len(first.Settings)).Msg("watching settings chain")

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.watched(ev.Name) {
				continue
			}
			log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("settings file changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			u := w.Remerge(ctx)
			track(u)
			if !u.Diff.Empty() || len(u.Diagnostics) > 0 {
				w.onChange(u)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func logUpdate(u Update) {
	for _, d := range u.Diagnostics {
		log.Warn().Str("kind", string(d.Kind)).Str("path", d.Path).Err(d.Err).Msg("merge problem")
	}

	if u.Diff.Empty() {
		return
	}

	added := make([]string, 0, len(u.Diff.Added))
	for k := range u.Diff.Added {
		added = append(added, k)
	}
	sort.Strings(added)

	changed := make([]string, 0, len(u.Diff.Changed))
	for k := range u.Diff.Changed {
		changed = append(changed, k)
	}
	sort.Strings(changed)

	log.Info().
		Strs("added", added).
		Strs("changed", changed).
		Strs("removed", u.Diff.Removed).
		Msg("settings changed")
}
