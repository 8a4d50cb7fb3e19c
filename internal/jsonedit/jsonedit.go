// Package jsonedit edits the settings object of layered JSONC files in
// place, keeping comments and layout intact.
package jsonedit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailscale/hujson"

	"go.dot.industries/layers/internal/reconcile"
)

const settingsPointer = "/settings"

// patchOp is one RFC 6902 operation.
type patchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// SetSetting sets settings[key] to v, creating the settings object when
// missing.
func SetSetting(src []byte, key string, v any) ([]byte, error) {
	return Apply(src, []reconcile.Edit{{Op: reconcile.OpSet, Key: key, Value: v}})
}

// RemoveSetting deletes settings[key]. Removing a missing key is a no-op.
func RemoveSetting(src []byte, key string) ([]byte, error) {
	return Apply(src, []reconcile.Edit{{Op: reconcile.OpRemove, Key: key}})
}

// Apply applies edits to the settings object of src. Files that were already
// in canonical layout are reformatted after the patch so inserted members
// line up; anything else is left as the patch produced it.
func Apply(src []byte, edits []reconcile.Edit) ([]byte, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		src = []byte("{}\n")
	}

	root, err := hujson.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing jsonc: %w", err)
	}
	if _, ok := root.Value.(*hujson.Object); !ok {
		return nil, fmt.Errorf("parsing jsonc: top level value is not an object")
	}

	canonical := isCanonical(src)

	var ops []patchOp

	settings := root.Find(settingsPointer)
	if settings != nil {
		if _, ok := settings.Value.(*hujson.Object); !ok {
			return nil, fmt.Errorf("settings is not an object")
		}
	}
	created := settings != nil

	for _, e := range edits {
		ptr := settingsPointer + "/" + escape(e.Key)
		exists := settings != nil && root.Find(ptr) != nil

		switch e.Op {
		case reconcile.OpSet:
			raw, err := json.Marshal(e.Value)
			if err != nil {
				return nil, fmt.Errorf("encoding value for %s: %w", e.Key, err)
			}
			if !created {
				ops = append(ops, patchOp{Op: "add", Path: settingsPointer, Value: json.RawMessage("{}")})
				created = true
			}
			op := "add"
			if exists {
				op = "replace"
			}
			ops = append(ops, patchOp{Op: op, Path: ptr, Value: raw})
		case reconcile.OpRemove:
			if exists {
				ops = append(ops, patchOp{Op: "remove", Path: ptr})
			}
		default:
			return nil, fmt.Errorf("unknown edit op %q for key %s", e.Op, e.Key)
		}
	}

	if len(ops) == 0 {
		return src, nil
	}

	patch, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("encoding patch: %w", err)
	}

	if err := root.Patch(patch); err != nil {
		return nil, fmt.Errorf("patching settings: %w", err)
	}

	if canonical {
		root.Format()
	}

	return root.Pack(), nil
}

// isCanonical reports whether src is already laid out the way
// hujson.Format would lay it out.
func isCanonical(src []byte) bool {
	v, err := hujson.Parse(src)
	if err != nil {
		return false
	}
	v.Format()
	return bytes.Equal(v.Pack(), src)
}

// escape encodes a key as a JSON pointer reference token.
func escape(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	return strings.ReplaceAll(key, "/", "~1")
}
