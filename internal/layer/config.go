package layer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/jsonc"
)

// Config is one parsed layered configuration file.
type Config struct {
	// Root stops ancestor discovery above this file.
	Root bool
	// Enabled is false only when the file says "enabled": false.
	Enabled bool
	// Extends lists the extends targets in declaration order.
	Extends []string
	// InvalidExtends holds extends entries that are not strings.
	InvalidExtends []any
	// Settings is the file's own settings object, nil when absent.
	Settings map[string]any
}

// ParseError reports a file that is not valid JSONC.
type ParseError struct {
	Path   string
	Offset int64
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseConfig parses JSONC data. Comments and trailing commas are allowed.
// Unknown top-level fields are ignored and fields of the wrong type fall back
// to their defaults. A blank document, or a valid document whose top level is
// not an object, parses as an empty config.
func ParseConfig(path string, data []byte) (*Config, error) {
	cfg := &Config{Enabled: true}

	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var doc any
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, newParseError(path, data, err)
	}

	raw, ok := doc.(map[string]any)
	if !ok {
		return cfg, nil
	}

	if b, ok := raw["root"].(bool); ok {
		cfg.Root = b
	}
	if b, ok := raw["enabled"].(bool); ok {
		cfg.Enabled = b
	}
	if s, ok := raw["settings"].(map[string]any); ok {
		cfg.Settings = s
	}

	switch ext := raw["extends"].(type) {
	case nil:
	case string:
		cfg.Extends = []string{ext}
	case []any:
		for _, item := range ext {
			if s, ok := item.(string); ok {
				cfg.Extends = append(cfg.Extends, s)
			} else {
				cfg.InvalidExtends = append(cfg.InvalidExtends, item)
			}
		}
	default:
		cfg.InvalidExtends = append(cfg.InvalidExtends, ext)
	}

	return cfg, nil
}

// newParseError locates err in data. jsonc.ToJSON keeps byte offsets intact,
// so decoder offsets point into the original text.
func newParseError(path string, data []byte, err error) *ParseError {
	var offset int64

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}

	line, col := lineColumn(data, offset)

	return &ParseError{
		Path:   path,
		Offset: offset,
		Line:   line,
		Column: col,
		Err:    err,
	}
}

// lineColumn converts a decoder offset to a 1-based line and column. The
// decoder reports offsets as the number of bytes read, so the offending byte
// is the last one read.
func lineColumn(data []byte, offset int64) (int, int) {
	pos := offset - 1
	if pos > int64(len(data)) {
		pos = int64(len(data))
	}
	if pos < 0 {
		pos = 0
	}

	before := data[:pos]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')

	return line, col
}
