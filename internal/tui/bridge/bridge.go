// Package bridge runs the layered merge for the TUI. It holds explicit
// parameters instead of relying on package-level Cobra flag variables.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.dot.industries/layers/internal/layer"
)

// MergedLabel is the source entry showing every merged key.
const MergedLabel = "[merged]"

// Source is one file of the chain as listed in the left pane.
type Source struct {
	Label string // path relative to the root directory
	Path  string // absolute path
	// Extended is set for files reached through extends rather than
	// discovered in the chain.
	Extended bool
}

// KeyRow is one merged key as listed in the right pane.
type KeyRow struct {
	Key         string
	Value       any
	Winner      string // absolute path, empty for language blocks
	WinnerLabel string
	Conflicted  bool
}

// Snapshot is the result of one merge.
type Snapshot struct {
	Sources     []Source
	Settings    map[string]any
	Provenance  map[string]layer.KeyProvenance
	Diagnostics []layer.Diagnostic

	rows []KeyRow
}

// Bridge merges a fixed chain on demand.
type Bridge struct {
	fs      layer.FileSystem
	entries []layer.ChainEntry
	rootDir string
	title   string
}

// New creates a Bridge. rootDir shortens file labels; title names the chain
// in the header, e.g. the workspace name.
func New(fsys layer.FileSystem, entries []layer.ChainEntry, rootDir, title string) *Bridge {
	return &Bridge{
		fs:      fsys,
		entries: entries,
		rootDir: strings.TrimSuffix(rootDir, "/"),
		title:   title,
	}
}

// Title returns the chain name shown in the header.
func (b *Bridge) Title() string {
	return b.title
}

// Load merges the chain and collects everything the views need.
func (b *Bridge) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	var diags layer.Diagnostics
	m := layer.New(b.fs, layer.WithHandlers(diags.Handlers()))
	m.MergeFromConfigChain(ctx, b.entries)

	snap := &Snapshot{
		Settings:    m.Settings(),
		Provenance:  m.Provenance(),
		Diagnostics: diags.List(),
	}

	seen := make(map[string]bool)
	for _, e := range b.entries {
		p := b.fs.Resolve(e.BaseDir, e.ConfigPath)
		if seen[p] {
			continue
		}
		seen[p] = true
		snap.Sources = append(snap.Sources, Source{Label: b.Label(p), Path: p})
	}
	for _, p := range m.ExtendedFiles() {
		if seen[p] {
			continue
		}
		seen[p] = true
		snap.Sources = append(snap.Sources, Source{Label: b.Label(p), Path: p, Extended: true})
	}

	for _, k := range m.OwnedKeys() {
		row := KeyRow{Key: k, Value: snap.Settings[k]}
		if prov, ok := snap.Provenance[k]; ok {
			row.Winner = prov.Winner
			row.WinnerLabel = b.Label(prov.Winner)
			row.Conflicted = prov.Conflicted()
		}
		snap.rows = append(snap.rows, row)
	}

	return snap, nil
}

// Label shortens path for display.
func (b *Bridge) Label(path string) string {
	if b.rootDir != "" && strings.HasPrefix(path, b.rootDir+"/") {
		return strings.TrimPrefix(path, b.rootDir+"/")
	}
	return path
}

// SourceLabels returns MergedLabel followed by every source label.
func (s *Snapshot) SourceLabels() []string {
	labels := make([]string, 0, len(s.Sources)+1)
	labels = append(labels, MergedLabel)
	for _, src := range s.Sources {
		label := src.Label
		if src.Extended {
			label += " (extends)"
		}
		labels = append(labels, label)
	}
	return labels
}

// SourcePath maps a position in SourceLabels to a file path. Position 0 and
// out of range positions return "" which selects the merged view.
func (s *Snapshot) SourcePath(i int) string {
	if i <= 0 || i > len(s.Sources) {
		return ""
	}
	return s.Sources[i-1].Path
}

// Rows returns the keys won by source, or every key when source is "".
func (s *Snapshot) Rows(source string) []KeyRow {
	if source == "" {
		out := make([]KeyRow, len(s.rows))
		copy(out, s.rows)
		return out
	}

	var out []KeyRow
	for _, r := range s.rows {
		if r.Winner == source {
			out = append(out, r)
		}
	}
	return out
}

// ConflictCount returns the number of conflicted keys.
func (s *Snapshot) ConflictCount() int {
	n := 0
	for _, r := range s.rows {
		if r.Conflicted {
			n++
		}
	}
	return n
}

// FormatValue renders v as compact JSON for table cells.
func FormatValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// PrettyValue renders v as indented JSON for the detail view and clipboard.
func PrettyValue(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// OverrideLines describes the override chain of a key, oldest first, ending
// with the winner.
func (b *Bridge) OverrideLines(prov layer.KeyProvenance) []string {
	lines := make([]string, 0, len(prov.Overrides)+1)
	for _, o := range prov.Overrides {
		lines = append(lines, fmt.Sprintf("%s = %s", b.Label(o.SourceFile), FormatValue(o.Value)))
	}
	lines = append(lines, fmt.Sprintf("%s = %s (winner)", b.Label(prov.Winner), FormatValue(prov.WinnerValue)))
	return lines
}

// SegmentLines describes which file contributed which slice of an array.
func (b *Bridge) SegmentLines(prov layer.KeyProvenance) []string {
	segs := make([]layer.ArraySegment, len(prov.ArraySegments))
	copy(segs, prov.ArraySegments)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	lines := make([]string, 0, len(segs))
	for _, s := range segs {
		lines = append(lines, fmt.Sprintf("[%d:%d] %s", s.Start, s.Start+s.Length, b.Label(s.SourceFile)))
	}
	return lines
}

// TruncateMiddle truncates a string in the middle if it exceeds maxLen,
// inserting "..." in the center.
func TruncateMiddle(s string, maxLen int) string {
	if len(s) <= maxLen || maxLen < 4 {
		return s
	}
	half := (maxLen - 3) / 2
	return s[:half] + "..." + s[len(s)-half:]
}
