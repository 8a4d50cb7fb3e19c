// Package config loads and validates layers.toml.
package config

import "time"

const (
	// FileName is the tool configuration file looked up from the working
	// directory upwards.
	FileName = "layers.toml"

	// DefaultSettingsFile is the layered settings file looked up in each
	// directory when layers.toml does not name one.
	DefaultSettingsFile = ".layers/settings.json"

	// DefaultVaultMount is the path prefix served from Vault.
	DefaultVaultMount = "/vault"

	// DefaultIndent is the JSON output indent width.
	DefaultIndent = 2
)

// Config represents layers.toml.
type Config struct {
	File       string       `toml:"file" validate:"required"`
	Workspaces []string     `toml:"workspaces" validate:"dive,required"`
	Vault      VaultConfig  `toml:"vault"`
	Output     OutputConfig `toml:"output"`
}

// VaultConfig holds the optional Vault connection used to serve shared
// settings documents. Vault support is off when Address is empty.
type VaultConfig struct {
	Address    string `toml:"address" validate:"omitempty,url"`
	AuthMethod string `toml:"auth_method" validate:"omitempty,oneof=token approle"`
	AuthMount  string `toml:"auth_mount"`
	RoleID     string `toml:"role_id"`
	BasePath   string `toml:"base_path" validate:"required_with=Address"`
	Mount      string `toml:"mount" validate:"omitempty,startswith=/"`
	Timeout    string `toml:"timeout" validate:"omitempty,duration"`
	CacheTTL   string `toml:"cache_ttl" validate:"omitempty,duration"`
}

// Enabled reports whether a Vault address is configured.
func (v VaultConfig) Enabled() bool {
	return v.Address != ""
}

// TimeoutDuration returns the parsed timeout, or zero when unset or invalid.
func (v VaultConfig) TimeoutDuration() time.Duration {
	if v.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(v.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// CacheTTLDuration returns how long fetched documents are reused. Zero means
// the adapter default.
func (v VaultConfig) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(v.CacheTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// OutputConfig controls how merged settings are printed.
type OutputConfig struct {
	Format string `toml:"format" validate:"omitempty,oneof=json yaml"`
	Indent int    `toml:"indent" validate:"gte=0,lte=8"`
}
