// Package migrate converts TOML settings files into layered JSON config
// documents.
package migrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"go.dot.industries/layers/internal/layer"
)

// Source is the TOML layout accepted by Convert.
//
//	root = true
//	extends = ["../base.toml"]
//
//	[settings]
//	"editor.tabSize" = 4
type Source struct {
	Root     *bool          `toml:"root"`
	Enabled  *bool          `toml:"enabled"`
	Extends  any            `toml:"extends"`
	Settings map[string]any `toml:"settings"`
}

// Options controls conversion.
type Options struct {
	// Flatten turns nested tables under settings into dotted keys, so
	// editor.tabSize = 4 becomes "editor.tabSize": 4. Language blocks are
	// kept as objects and flattened inside.
	Flatten bool
	Indent  int
}

// document is the JSON layout written by Convert. Field order is the order
// of the output.
type document struct {
	Root     *bool          `json:"root,omitempty"`
	Enabled  *bool          `json:"enabled,omitempty"`
	Extends  []string       `json:"extends,omitempty"`
	Settings map[string]any `json:"settings"`
}

// LoadSource parses the TOML settings file at path.
func LoadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	return ParseSource(path, data)
}

// ParseSource decodes TOML settings. Unknown top-level keys are rejected.
func ParseSource(path string, data []byte) (*Source, error) {
	var src Source

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&src); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	return &src, nil
}

// Convert renders src as a layered JSON config. Extends entries pointing at
// .toml files are rewritten to the .json file the migration produces next to
// them. The result is checked with the layered config parser before it is
// returned.
func Convert(src *Source, opts Options) ([]byte, error) {
	if src == nil {
		return nil, fmt.Errorf("settings source is required")
	}

	extends, err := convertExtends(src.Extends)
	if err != nil {
		return nil, err
	}

	settings := make(map[string]any, len(src.Settings))
	for k, v := range src.Settings {
		if opts.Flatten {
			flattenInto(settings, k, v)
			continue
		}
		settings[k] = convertValue(v)
	}

	doc := document{
		Root:     src.Root,
		Enabled:  src.Enabled,
		Extends:  extends,
		Settings: settings,
	}

	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", indent))
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding layered config: %w", err)
	}

	if _, err := layer.ParseConfig("migrated.json", buf.Bytes()); err != nil {
		return nil, fmt.Errorf("checking converted config: %w", err)
	}

	return buf.Bytes(), nil
}

func convertExtends(v any) ([]string, error) {
	var raw []any
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		raw = []any{t}
	case []any:
		raw = t
	default:
		return nil, fmt.Errorf("extends must be a string or an array of strings, got %T", v)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("extends entry %v is not a string", item)
		}
		out = append(out, extendTarget(s))
	}

	return out, nil
}

// extendTarget maps "../base.toml" to "../base.json". Remote targets are
// left alone.
func extendTarget(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if strings.HasSuffix(target, ".toml") {
		return strings.TrimSuffix(target, ".toml") + ".json"
	}
	return target
}

// flattenInto writes v under key, joining nested table keys with dots.
func flattenInto(dst map[string]any, key string, v any) {
	table, ok := v.(map[string]any)
	if !ok {
		dst[key] = convertValue(v)
		return
	}

	if layer.IsLanguageKey(key) {
		block := make(map[string]any, len(table))
		for k, inner := range table {
			flattenInto(block, k, inner)
		}
		dst[key] = block
		return
	}

	if len(table) == 0 {
		dst[key] = map[string]any{}
		return
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		flattenInto(dst, key+"."+k, table[k])
	}
}

// convertValue turns TOML-only values into JSON ones. Dates and times
// become strings.
func convertValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = convertValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = convertValue(inner)
		}
		return out
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case toml.LocalDate, toml.LocalTime, toml.LocalDateTime:
		return fmt.Sprint(t)
	default:
		return v
	}
}
