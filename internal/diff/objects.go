package diff

import "sort"

// ObjectDiff is the flat difference between two settings maps.
type ObjectDiff struct {
	// Added holds keys present in the current map only, with their current values.
	Added map[string]any
	// Changed holds keys present in both maps whose values are not Equal,
	// with their current values.
	Changed map[string]any
	// Removed lists keys present in the previous map only, sorted.
	Removed []string
}

// Empty reports whether the diff records no change at all.
func (d ObjectDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// Objects diffs prev against curr one level deep. Membership is decided by key
// presence, so a key mapped to nil still counts as present. Nested objects are
// not diffed recursively: a change anywhere inside surfaces as one Changed
// entry holding the whole new value.
func Objects(prev, curr map[string]any) ObjectDiff {
	d := ObjectDiff{
		Added:   make(map[string]any),
		Changed: make(map[string]any),
		Removed: []string{},
	}

	for key, cv := range curr {
		pv, ok := prev[key]
		if !ok {
			d.Added[key] = cv
			continue
		}
		if !Equal(pv, cv) {
			d.Changed[key] = cv
		}
	}

	for key := range prev {
		if _, ok := curr[key]; !ok {
			d.Removed = append(d.Removed, key)
		}
	}
	sort.Strings(d.Removed)

	return d
}
