package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Default returns the configuration used when no layers.toml exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load parses the layers.toml at path and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return Parse(path, data)
}

// Parse decodes layers.toml content. Unknown keys are rejected.
func Parse(path string, data []byte) (*Config, error) {
	var cfg Config

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.File == "" {
		cfg.File = DefaultSettingsFile
	}
	if cfg.Vault.Mount == "" {
		cfg.Vault.Mount = DefaultVaultMount
	}
	if cfg.Vault.AuthMethod == "" {
		cfg.Vault.AuthMethod = "token"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}
	if cfg.Output.Indent == 0 {
		cfg.Output.Indent = DefaultIndent
	}
}

// FindRootConfig walks up from startDir looking for layers.toml and returns
// the absolute path of the first one found.
func FindRootConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path for %s: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found in %s or any parent directory: %w", FileName, startDir, os.ErrNotExist)
}
