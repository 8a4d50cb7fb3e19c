// Package diff compares settings snapshots.
//
// Equal is the structural equality used everywhere settings are compared.
// Objects produces a flat added/changed/removed diff of two settings maps and
// Arrays classifies how an array setting changed, using a longest common
// subsequence to describe simple additions and removals.
package diff

import (
	"reflect"
	"strconv"

	"go.dot.industries/layers/internal/value"
)

// Equal reports whether a and b are structurally equal.
//
// Values of different kinds are never equal, with one exception kept on
// purpose: arrays are compared as objects keyed by their decimal indices, so
// []any{1, 2} equals map[string]any{"0": 1, "1": 2}. Order matters for arrays.
// Numbers compare by value across Go numeric types; NaN is not equal to NaN.
func Equal(a, b any) bool {
	ka, kb := value.KindOf(a), value.KindOf(b)

	if keyed(ka) && keyed(kb) {
		return keyedEqual(a, b)
	}
	if ka != kb {
		return false
	}

	switch ka {
	case value.Null:
		return true
	case value.Bool:
		return a.(bool) == b.(bool)
	case value.Number:
		x, _ := value.Float(a)
		y, _ := value.Float(b)
		return x == y
	case value.String:
		return a.(string) == b.(string)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func keyed(k value.Kind) bool {
	return k == value.Array || k == value.Object
}

// keyedEqual compares two arrays or objects by their key sets and values.
func keyedEqual(a, b any) bool {
	if keyedLen(a) != keyedLen(b) {
		return false
	}

	equal := true
	eachKey(a, func(key string, av any) bool {
		bv, ok := lookup(b, key)
		if !ok || !Equal(av, bv) {
			equal = false
			return false
		}
		return true
	})

	return equal
}

func keyedLen(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	}
	return 0
}

// eachKey calls fn for every key of an array or object until fn returns false.
func eachKey(v any, fn func(key string, val any) bool) {
	switch t := v.(type) {
	case []any:
		for i, item := range t {
			if !fn(strconv.Itoa(i), item) {
				return
			}
		}
	case map[string]any:
		for k, item := range t {
			if !fn(k, item) {
				return
			}
		}
	}
}

func lookup(v any, key string) (any, bool) {
	switch t := v.(type) {
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(t) || strconv.Itoa(i) != key {
			return nil, false
		}
		return t[i], true
	case map[string]any:
		item, ok := t[key]
		return item, ok
	}
	return nil, false
}
