package layer

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrCircularDependency marks a file reached again while it is still
	// being resolved.
	ErrCircularDependency = errors.New("circular dependency")
	// ErrExtendNotFound marks an extends target that does not exist.
	ErrExtendNotFound = errors.New("extends target not found")
	// ErrInvalidExtend marks an extends target that is not a .json path.
	ErrInvalidExtend = errors.New("invalid extends target")
)

// Handlers receives the non-fatal problems found while merging. Every field
// is optional.
type Handlers struct {
	CircularDependency func(path string)
	ParseError         func(path string, err error)
	ExtendNotFound     func(path string)
	InvalidExtend      func(message string)
}

func (h Handlers) circular(path string) {
	if h.CircularDependency != nil {
		h.CircularDependency(path)
	}
}

func (h Handlers) parseError(path string, err error) {
	if h.ParseError != nil {
		h.ParseError(path, err)
	}
}

func (h Handlers) extendNotFound(path string) {
	if h.ExtendNotFound != nil {
		h.ExtendNotFound(path)
	}
}

func (h Handlers) invalidExtend(message string) {
	if h.InvalidExtend != nil {
		h.InvalidExtend(message)
	}
}

// DiagnosticKind names the kind of problem a Diagnostic reports.
type DiagnosticKind string

const (
	KindCircularDependency DiagnosticKind = "circular-dependency"
	KindParseError         DiagnosticKind = "parse-error"
	KindExtendNotFound     DiagnosticKind = "extend-not-found"
	KindInvalidExtend      DiagnosticKind = "invalid-extend"
)

// Diagnostic is one problem reported during a merge.
type Diagnostic struct {
	Kind DiagnosticKind
	// Path is the file involved. It is empty for invalid extends, which only
	// carry a message.
	Path string
	Err  error
}

func (d Diagnostic) Error() string {
	return d.Err.Error()
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Diagnostics collects everything reported through its Handlers.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Handlers returns handlers that record into d.
func (d *Diagnostics) Handlers() Handlers {
	return Handlers{
		CircularDependency: func(path string) {
			d.add(Diagnostic{
				Kind: KindCircularDependency,
				Path: path,
				Err:  fmt.Errorf("%w: %s", ErrCircularDependency, path),
			})
		},
		ParseError: func(path string, err error) {
			d.add(Diagnostic{Kind: KindParseError, Path: path, Err: err})
		},
		ExtendNotFound: func(path string) {
			d.add(Diagnostic{
				Kind: KindExtendNotFound,
				Path: path,
				Err:  fmt.Errorf("%w: %s", ErrExtendNotFound, path),
			})
		},
		InvalidExtend: func(message string) {
			d.add(Diagnostic{
				Kind: KindInvalidExtend,
				Err:  fmt.Errorf("%w: %s", ErrInvalidExtend, message),
			})
		},
	}
}

func (d *Diagnostics) add(diag Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, diag)
}

// List returns the collected diagnostics in report order.
func (d *Diagnostics) List() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of collected diagnostics.
func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Err joins every collected diagnostic, or returns nil when there are none.
func (d *Diagnostics) Err() error {
	list := d.List()
	errs := make([]error, len(list))
	for i, diag := range list {
		errs[i] = diag
	}
	return errors.Join(errs...)
}

// Reset drops everything collected so far.
func (d *Diagnostics) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = nil
}
