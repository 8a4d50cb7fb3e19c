package layerfs

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// FileSystem is the adapter surface the merge engine consumes. It mirrors
// layer.FileSystem method for method; layer's tests import this package, so
// referring to layer here would create an import cycle.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Resolve(baseDir, path string) string
	Dir(path string) string
	Base(path string) string
	IsAbs(path string) bool
}

// Mux sends paths under prefix to one adapter and all other paths to a
// fallback.
type Mux struct {
	prefix   string
	routed   FileSystem
	fallback FileSystem
}

// NewMux creates a Mux. The prefix is an absolute forward-slash path such as
// "/vault".
func NewMux(prefix string, routed, fallback FileSystem) *Mux {
	return &Mux{
		prefix:   path.Clean("/" + prefix),
		routed:   routed,
		fallback: fallback,
	}
}

func (m *Mux) owns(p string) bool {
	p = strings.ReplaceAll(p, "\\", "/")
	return p == m.prefix || strings.HasPrefix(p, m.prefix+"/")
}

func (m *Mux) pick(p string) FileSystem {
	if m.owns(p) {
		return m.routed
	}
	return m.fallback
}

func (m *Mux) ReadFile(ctx context.Context, p string) ([]byte, error) {
	return m.pick(p).ReadFile(ctx, p)
}

func (m *Mux) Exists(ctx context.Context, p string) bool {
	return m.pick(p).Exists(ctx, p)
}

// Resolve uses the routed adapter when either the target or the base
// directory lives under the prefix.
func (m *Mux) Resolve(baseDir, p string) string {
	if m.owns(p) || (!m.fallback.IsAbs(p) && m.owns(baseDir)) {
		return m.routed.Resolve(baseDir, p)
	}
	return m.fallback.Resolve(baseDir, p)
}

func (m *Mux) Dir(p string) string {
	return m.pick(p).Dir(p)
}

func (m *Mux) Base(p string) string {
	return m.pick(p).Base(p)
}

func (m *Mux) IsAbs(p string) bool {
	return m.pick(p).IsAbs(p)
}

// WriteFile writes through the owning adapter when it supports writes.
func (m *Mux) WriteFile(ctx context.Context, p string, data []byte) error {
	w, ok := m.pick(p).(Writer)
	if !ok {
		return fmt.Errorf("writing %s: read-only location", p)
	}
	return w.WriteFile(ctx, p, data)
}
