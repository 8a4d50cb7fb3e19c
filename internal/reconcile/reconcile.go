// Package reconcile maps an edit of merged settings back onto the layered
// files that produced them.
package reconcile

import (
	"fmt"
	"sort"

	"go.dot.industries/layers/internal/diff"
	"go.dot.industries/layers/internal/layer"
	"go.dot.industries/layers/internal/value"
)

// Op is the kind of change applied to one key of one file.
type Op string

const (
	OpSet    Op = "set"
	OpRemove Op = "remove"
)

// Edit changes one key of a file's settings object.
type Edit struct {
	Op    Op     `json:"op" yaml:"op"`
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// FileEdits groups the edits for one file, sorted by key.
type FileEdits struct {
	File  string `json:"file" yaml:"file"`
	Edits []Edit `json:"edits" yaml:"edits"`
}

// Skipped is a key whose change could not be mapped onto a file.
type Skipped struct {
	Key    string `json:"key" yaml:"key"`
	Reason string `json:"reason" yaml:"reason"`
}

// Result is the outcome of Plan.
type Result struct {
	Files   []FileEdits `json:"files" yaml:"files"`
	Skipped []Skipped   `json:"skipped" yaml:"skipped"`
}

// Empty reports whether the plan changes nothing.
func (r Result) Empty() bool {
	return len(r.Files) == 0
}

// Options controls Plan.
type Options struct {
	// Target receives keys that no file owns yet, usually the most specific
	// file of the chain.
	Target string
}

// Plan computes the file edits that turn prev into curr, where prev is the
// merged result and provenance its key provenance.
func Plan(prev, curr map[string]any, provenance map[string]layer.KeyProvenance, opts Options) Result {
	p := planner{opts: opts, edits: make(map[string]map[string]Edit)}

	d := diff.Objects(prev, curr)

	for _, key := range sortedKeys(d.Added) {
		p.setInTarget(key, d.Added[key])
	}

	for _, key := range sortedKeys(d.Changed) {
		prov, ok := provenance[key]
		if !ok {
			p.setInTarget(key, d.Changed[key])
			continue
		}

		prevArr, prevIsArr := prev[key].([]any)
		currArr, currIsArr := d.Changed[key].([]any)
		if prevIsArr && currIsArr && len(prov.ArraySegments) > 0 {
			p.planArray(key, prevArr, currArr, prov)
			continue
		}

		p.add(prov.Winner, Edit{Op: OpSet, Key: key, Value: value.Clone(d.Changed[key])})
	}

	for _, key := range d.Removed {
		prov, ok := provenance[key]
		if !ok {
			p.skip(key, "no provenance for key; remove it from its file by hand")
			continue
		}
		for _, f := range prov.Files() {
			p.add(f, Edit{Op: OpRemove, Key: key})
		}
	}

	return p.result()
}

type planner struct {
	opts    Options
	edits   map[string]map[string]Edit
	skipped []Skipped
}

func (p *planner) add(file string, e Edit) {
	byKey, ok := p.edits[file]
	if !ok {
		byKey = make(map[string]Edit)
		p.edits[file] = byKey
	}
	byKey[e.Key] = e
}

func (p *planner) skip(key, reason string) {
	p.skipped = append(p.skipped, Skipped{Key: key, Reason: reason})
}

func (p *planner) setInTarget(key string, v any) {
	if p.opts.Target == "" {
		p.skip(key, "no target file for new keys")
		return
	}
	p.add(p.opts.Target, Edit{Op: OpSet, Key: key, Value: value.Clone(v)})
}

// planArray maps a simple array diff onto the segments each file
// contributed. Removals shrink the owning file's slice; additions are
// appended to the winner's slice.
func (p *planner) planArray(key string, prev, curr []any, prov layer.KeyProvenance) {
	total := 0
	for _, s := range prov.ArraySegments {
		total += s.Length
	}
	if total != len(prev) {
		p.skip(key, fmt.Sprintf("array segments cover %d of %d elements", total, len(prev)))
		return
	}

	d := diff.Arrays(prev, curr)
	switch d.Kind {
	case diff.ArrayNone:
		return
	case diff.ArrayComplex:
		p.skip(key, "array change too large to map onto source files")
		return
	}

	removed := make(map[int]bool, len(d.RemovedIndices))
	for _, i := range d.RemovedIndices {
		removed[i] = true
	}

	// A file may own several segments when it is extended along more than
	// one path; its own array is the last slice it contributed.
	last := make(map[string]layer.ArraySegment)
	dropped := make(map[string]map[int]bool)
	var order []string

	for _, s := range prov.ArraySegments {
		if _, ok := last[s.SourceFile]; !ok {
			order = append(order, s.SourceFile)
			dropped[s.SourceFile] = make(map[int]bool)
		}
		last[s.SourceFile] = s
		for i := 0; i < s.Length; i++ {
			if removed[s.Start+i] {
				dropped[s.SourceFile][i] = true
			}
		}
	}

	winner := prov.Winner
	if _, ok := last[winner]; !ok {
		winner = prov.ArraySegments[len(prov.ArraySegments)-1].SourceFile
	}

	for _, file := range order {
		changed := len(dropped[file]) > 0
		if file == winner && len(d.Added) > 0 {
			changed = true
		}
		if !changed {
			continue
		}

		seg := last[file]
		items := make([]any, 0, seg.Length)
		for i := 0; i < seg.Length; i++ {
			if !dropped[file][i] {
				items = append(items, value.Clone(prev[seg.Start+i]))
			}
		}
		if file == winner {
			items = append(items, value.CloneSlice(d.Added)...)
		}

		p.add(file, Edit{Op: OpSet, Key: key, Value: items})
	}
}

func (p *planner) result() Result {
	res := Result{Files: []FileEdits{}, Skipped: []Skipped{}}

	files := make([]string, 0, len(p.edits))
	for f := range p.edits {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		byKey := p.edits[f]
		fe := FileEdits{File: f, Edits: make([]Edit, 0, len(byKey))}
		for _, k := range sortedKeys(byKey) {
			fe.Edits = append(fe.Edits, byKey[k])
		}
		res.Files = append(res.Files, fe)
	}

	res.Skipped = append(res.Skipped, p.skipped...)
	sort.Slice(res.Skipped, func(i, j int) bool { return res.Skipped[i].Key < res.Skipped[j].Key })

	return res
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
