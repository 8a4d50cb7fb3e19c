package layer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"go.dot.industries/layers/internal/layerfs"
)

// Random chains of files writing arrays or scalars to a small key set must
// keep the segment and conflict invariants.
func TestMerge_InvariantsHold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(t, "files")
		keys := []string{"a", "b", "c"}

		files := make(map[string]string, n)
		entries := make([]ChainEntry, 0, n)
		for i := 0; i < n; i++ {
			settings := make(map[string]any)
			for _, k := range keys {
				switch rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("kind-%d-%s", i, k)) {
				case 0:
				case 1:
					settings[k] = float64(rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("num-%d-%s", i, k)))
				case 2:
					l := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("len-%d-%s", i, k))
					arr := make([]any, l)
					for j := range arr {
						arr[j] = float64(j)
					}
					settings[k] = arr
				}
			}

			doc, err := json.Marshal(map[string]any{"settings": settings})
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			dir := fmt.Sprintf("/r/%d", i)
			files[dir+"/s.json"] = string(doc)
			entries = append(entries, ChainEntry{ConfigPath: "s.json", BaseDir: dir})
		}

		m := New(layerfs.Memory(files))
		m.MergeFromConfigChain(context.Background(), entries)

		settings := m.Settings()
		conflicted := make(map[string]bool)
		for _, k := range m.ConflictedKeys() {
			conflicted[k] = true
		}

		for key, p := range m.Provenance() {
			if conflicted[key] != (len(p.Overrides) > 0) {
				t.Fatalf("key %q conflicted=%v with %d overrides", key, conflicted[key], len(p.Overrides))
			}

			arr, isArray := settings[key].([]any)
			if !isArray {
				if p.ArraySegments != nil {
					t.Fatalf("key %q is not an array but has segments", key)
				}
				continue
			}

			total, next := 0, 0
			for _, seg := range p.ArraySegments {
				if seg.Start != next {
					t.Fatalf("key %q segment starts at %d, want %d", key, seg.Start, next)
				}
				next += seg.Length
				total += seg.Length
			}
			if total != len(arr) {
				t.Fatalf("key %q segments sum to %d, array has %d", key, total, len(arr))
			}
		}
	})
}
