// Package token caches the Vault token obtained by `layers login`.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	dirName   = ".layers"
	tokenFile = "token"
	dirPerms  = 0700
	filePerms = 0600

	// EnvToken overrides the cached token when set.
	EnvToken = "VAULT_TOKEN"
)

// ErrNoToken is returned when neither the environment nor the sink holds a
// token.
var ErrNoToken = errors.New("no vault token")

// DefaultDir returns the layers state directory (~/.layers).
var DefaultDir = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("~", dirName)
	}
	return filepath.Join(home, dirName)
}

// Entry is a cached login.
type Entry struct {
	Token     string    `json:"token"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink stores the token file on an afero filesystem.
type Sink struct {
	fs   afero.Fs
	path string
}

// NewSink creates a sink for the token file at path.
func NewSink(fsys afero.Fs, path string) *Sink {
	return &Sink{fs: fsys, path: path}
}

// DefaultSink returns the sink at ~/.layers/token on the host filesystem.
func DefaultSink() *Sink {
	return NewSink(afero.NewOsFs(), filepath.Join(DefaultDir(), tokenFile))
}

// Path returns the token file location.
func (s *Sink) Path() string {
	return s.path
}

// Read returns the cached entry. A file holding a bare token string, as
// written by other Vault tooling, is accepted too.
func (s *Sink) Read() (Entry, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, fmt.Errorf("read token: %w", ErrNoToken)
		}
		return Entry{}, fmt.Errorf("read token: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return Entry{}, fmt.Errorf("read token: file is empty: %w", ErrNoToken)
	}

	var e Entry
	if strings.HasPrefix(raw, "{") {
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return Entry{}, fmt.Errorf("read token: %w", err)
		}
	} else {
		e.Token = raw
	}

	if e.Token == "" {
		return Entry{}, fmt.Errorf("read token: %w", ErrNoToken)
	}

	return e, nil
}

// Write stores e with 0600 permissions, creating the parent directory with
// 0700.
func (s *Sink) Write(e Entry) error {
	if e.Token == "" {
		return fmt.Errorf("write token: token is empty")
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), dirPerms); err != nil {
		return fmt.Errorf("write token: create directory: %w", err)
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("write token: %w", err)
	}

	if err := afero.WriteFile(s.fs, s.path, append(data, '\n'), filePerms); err != nil {
		return fmt.Errorf("write token: %w", err)
	}

	return nil
}

// Remove deletes the token file. A missing file is not an error.
func (s *Sink) Remove() error {
	err := s.fs.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Lookup returns the token to use and where it came from: the VAULT_TOKEN
// environment variable first, then the sink.
func Lookup(s *Sink) (string, string, error) {
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok, EnvToken, nil
	}

	e, err := s.Read()
	if err != nil {
		return "", "", err
	}

	return e.Token, s.path, nil
}
