package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Workspace is one directory matched by a workspaces pattern.
type Workspace struct {
	// Name is the directory relative to the layers.toml directory, with
	// forward slashes.
	Name string
	// Dir is the absolute directory.
	Dir string
}

// Workspaces expands the configured patterns under rootDir. The result is
// sorted by name and free of duplicates.
func Workspaces(cfg *Config, rootDir string) ([]Workspace, error) {
	seen := make(map[string]bool)
	var out []Workspace

	for _, pattern := range cfg.Workspaces {
		dirs, err := expandPattern(rootDir, pattern)
		if err != nil {
			return nil, err
		}

		for _, rel := range dirs {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			out = append(out, Workspace{
				Name: rel,
				Dir:  filepath.Join(rootDir, filepath.FromSlash(rel)),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// expandPattern returns the directories under rootDir matching pattern,
// relative and with forward slashes.
func expandPattern(rootDir, pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid workspace pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(rootDir), pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding workspace pattern %q: %w", pattern, err)
	}

	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(filepath.Join(rootDir, filepath.FromSlash(m)))
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, m)
	}

	return dirs, nil
}

// FindWorkspace looks a workspace up by its relative name, or by its last
// path element when that is unambiguous.
func FindWorkspace(workspaces []Workspace, name string) (Workspace, error) {
	name = strings.Trim(filepath.ToSlash(name), "/")

	var byBase []Workspace
	for _, ws := range workspaces {
		if ws.Name == name {
			return ws, nil
		}
		if filepath.Base(ws.Dir) == name {
			byBase = append(byBase, ws)
		}
	}

	switch len(byBase) {
	case 1:
		return byBase[0], nil
	case 0:
		return Workspace{}, fmt.Errorf("workspace %q not found in configured workspaces", name)
	default:
		names := make([]string, len(byBase))
		for i, ws := range byBase {
			names[i] = ws.Name
		}
		return Workspace{}, fmt.Errorf("workspace %q is ambiguous: %s", name, strings.Join(names, ", "))
	}
}

// DetectWorkspace returns the most deeply nested workspace containing cwd.
func DetectWorkspace(cwd string, workspaces []Workspace) (Workspace, bool, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return Workspace{}, false, fmt.Errorf("resolving absolute path for cwd %s: %w", cwd, err)
	}

	var best Workspace
	found := false

	for _, ws := range workspaces {
		if !within(absCwd, ws.Dir) {
			continue
		}
		if !found || len(ws.Dir) > len(best.Dir) {
			best = ws
			found = true
		}
	}

	return best, found, nil
}

// within reports whether path is dir or below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
