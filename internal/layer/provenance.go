package layer

import "go.dot.industries/layers/internal/value"

// ArraySegment records which slice of a merged array one file contributed.
type ArraySegment struct {
	SourceFile string `json:"sourceFile" yaml:"sourceFile"`
	Start      int    `json:"start" yaml:"start"`
	Length     int    `json:"length" yaml:"length"`
}

// Override is a value that was set by a file and later overridden.
type Override struct {
	SourceFile string `json:"sourceFile" yaml:"sourceFile"`
	Value      any    `json:"value" yaml:"value"`
}

// KeyProvenance describes where a merged key came from.
type KeyProvenance struct {
	// Winner is the file that last wrote the key.
	Winner string `json:"winner" yaml:"winner"`
	// WinnerValue is the effective value. For arrays it is the full
	// concatenated array.
	WinnerValue any `json:"winnerValue" yaml:"winnerValue"`
	// Overrides lists earlier values, oldest first. Arrays never add here.
	Overrides []Override `json:"overrides" yaml:"overrides"`
	// ArraySegments is set for array values; segment lengths sum to the
	// length of the merged array.
	ArraySegments []ArraySegment `json:"arraySegments,omitempty" yaml:"arraySegments,omitempty"`
}

// Conflicted reports whether some file's value for the key was overridden.
func (p KeyProvenance) Conflicted() bool {
	return len(p.Overrides) > 0
}

// Files returns every file that contributed to the key: overridden files
// oldest first, then segment owners, then the winner. Each file appears once.
func (p KeyProvenance) Files() []string {
	seen := make(map[string]bool)
	var files []string

	add := func(f string) {
		if f == "" || seen[f] {
			return
		}
		seen[f] = true
		files = append(files, f)
	}

	for _, o := range p.Overrides {
		add(o.SourceFile)
	}
	for _, s := range p.ArraySegments {
		add(s.SourceFile)
	}
	add(p.Winner)

	return files
}

// Clone returns a deep copy of p.
func (p KeyProvenance) Clone() KeyProvenance {
	out := KeyProvenance{
		Winner:      p.Winner,
		WinnerValue: value.Clone(p.WinnerValue),
		Overrides:   make([]Override, len(p.Overrides)),
	}

	for i, o := range p.Overrides {
		out.Overrides[i] = Override{SourceFile: o.SourceFile, Value: value.Clone(o.Value)}
	}

	if p.ArraySegments != nil {
		out.ArraySegments = make([]ArraySegment, len(p.ArraySegments))
		copy(out.ArraySegments, p.ArraySegments)
	}

	return out
}
