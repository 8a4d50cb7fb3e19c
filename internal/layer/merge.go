package layer

import (
	"regexp"
	"sort"

	"go.dot.industries/layers/internal/value"
)

var languageKey = regexp.MustCompile(`^\[.+\]$`)

// IsLanguageKey reports whether key is a language-scoped block such as
// "[typescript]".
func IsLanguageKey(key string) bool {
	return languageKey.MatchString(key)
}

// mergeSettings applies one file's settings on top of the current state.
// Keys within one file touch disjoint state, so the order they are applied in
// does not change the result; sorting keeps log output stable.
func (m *Merger) mergeSettings(source string, settings map[string]any) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := settings[key]

		if IsLanguageKey(key) {
			if block, ok := v.(map[string]any); ok {
				m.mergeLanguageBlock(key, block)
				continue
			}
		}

		switch value.KindOf(v) {
		case value.Array:
			m.mergeArray(source, key, v.([]any))
		default:
			m.mergeValue(source, key, v)
		}
	}
}

// mergeLanguageBlock shallow-merges a language block. Language blocks carry
// no provenance.
func (m *Merger) mergeLanguageBlock(key string, block map[string]any) {
	existing, ok := m.settings[key].(map[string]any)
	if !ok {
		existing = make(map[string]any, len(block))
	}

	for k, v := range block {
		existing[k] = value.Clone(v)
	}

	m.settings[key] = existing
	delete(m.provenance, key)
}

// mergeArray appends items to the merged array and records the segment.
func (m *Merger) mergeArray(source, key string, items []any) {
	p, tracked := m.provenance[key]
	if !tracked {
		p = &KeyProvenance{Overrides: []Override{}}
		m.provenance[key] = p
	}

	existing, ok := m.settings[key].([]any)
	if !ok {
		existing = nil
		p.ArraySegments = nil
	}

	merged := make([]any, 0, len(existing)+len(items))
	merged = append(merged, existing...)
	for _, item := range items {
		merged = append(merged, value.Clone(item))
	}

	p.ArraySegments = append(p.ArraySegments, ArraySegment{
		SourceFile: source,
		Start:      len(existing),
		Length:     len(items),
	})
	p.Winner = source
	p.WinnerValue = value.CloneSlice(merged)

	m.settings[key] = merged
}

// mergeValue overwrites a scalar, object or null value.
func (m *Merger) mergeValue(source, key string, v any) {
	if p, ok := m.provenance[key]; ok {
		p.Overrides = append(p.Overrides, Override{SourceFile: p.Winner, Value: p.WinnerValue})
		p.Winner = source
		p.WinnerValue = value.Clone(v)
		p.ArraySegments = nil
	} else {
		m.provenance[key] = &KeyProvenance{
			Winner:      source,
			WinnerValue: value.Clone(v),
			Overrides:   []Override{},
		}
	}

	m.settings[key] = value.Clone(v)
}
