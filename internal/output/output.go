// Package output renders merged settings and reports as JSON or YAML,
// optionally filtered by a jq expression.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options controls rendering.
type Options struct {
	Format string
	Indent int
	// Query is a jq expression applied before rendering. Each result is
	// written as its own document.
	Query string
}

// Write renders v to w.
func Write(w io.Writer, v any, opts Options) error {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.Format != FormatJSON && opts.Format != FormatYAML {
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}

	results := []any{v}
	if opts.Query != "" {
		var err error
		results, err = Query(v, opts.Query)
		if err != nil {
			return err
		}
	}

	for _, r := range results {
		if err := writeOne(w, r, opts); err != nil {
			return err
		}
	}

	return nil
}

func writeOne(w io.Writer, v any, opts Options) error {
	switch opts.Format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if opts.Indent > 0 {
			enc.SetIndent(opts.Indent)
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if opts.Indent > 0 {
			enc.SetIndent("", strings.Repeat(" ", opts.Indent))
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
}

// Query runs a jq expression against v and collects every result.
func Query(v any, expr string) ([]any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing query %q: %w", expr, err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compiling query %q: %w", expr, err)
	}

	input, err := normalize(v)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(input)
	for {
		r, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := r.(error); ok {
			return nil, fmt.Errorf("running query %q: %w", expr, err)
		}
		results = append(results, r)
	}

	return results, nil
}

// normalize converts v into the plain map/slice/float64 shapes gojq accepts.
// Structs such as provenance reports go through a JSON round trip.
func normalize(v any) (any, error) {
	switch v.(type) {
	case nil, bool, float64, int, string, map[string]any, []any:
		return v, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding query input: %w", err)
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding query input: %w", err)
	}

	return out, nil
}
