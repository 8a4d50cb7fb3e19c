// Package value classifies and copies decoded JSON values.
//
// Settings values are the shapes produced by encoding/json when decoding into
// any: nil, bool, float64, string, []any and map[string]any. Kind gives the
// merge and diff code an exhaustive switch over those shapes.
package value

import (
	"encoding/json"
	"strconv"
)

// Kind is the JSON type of a value.
type Kind int

const (
	Invalid Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "invalid"
	}
}

// KindOf returns the JSON kind of v. All Go numeric types and json.Number
// report Number. Types that have no JSON representation report Invalid.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return Number
	case string:
		return String
	case []any:
		return Array
	case map[string]any:
		return Object
	default:
		return Invalid
	}
}

// Float returns the numeric value of v as a float64. The second result is
// false when v is not a number.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Clone returns a deep copy of v. Maps and slices are copied recursively;
// everything else is returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		return CloneSlice(t)
	default:
		return v
	}
}

// CloneMap returns a deep copy of m. A nil map yields an empty map.
func CloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// CloneSlice returns a deep copy of s. A nil slice yields an empty slice.
func CloneSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = Clone(v)
	}
	return out
}
