package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Vault = VaultConfig{
		Address:    "https://vault.example.com",
		AuthMethod: "token",
		BasePath:   "secret",
		Mount:      "/vault",
		Timeout:    "10s",
	}
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	if err := Validate(Default()); err != nil {
		t.Errorf("Validate(Default()) error = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "missing file",
			mutate:  func(c *Config) { c.File = "" },
			wantMsg: "file: is required",
		},
		{
			name:    "bad auth method",
			mutate:  func(c *Config) { c.Vault.AuthMethod = "oidc" },
			wantMsg: "vault.auth_method: must be one of [token approle]",
		},
		{
			name:    "bad address",
			mutate:  func(c *Config) { c.Vault.Address = "not a url" },
			wantMsg: "vault.address: must be a URL",
		},
		{
			name:    "base path required with address",
			mutate:  func(c *Config) { c.Vault.BasePath = "" },
			wantMsg: "vault.base_path: is required when address is set",
		},
		{
			name:    "relative mount",
			mutate:  func(c *Config) { c.Vault.Mount = "vault" },
			wantMsg: "vault.mount: must start with",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Vault.Timeout = "soon" },
			wantMsg: "vault.timeout: must be a duration",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantMsg: "output.format: must be one of [json yaml]",
		},
		{
			name:    "indent too large",
			mutate:  func(c *Config) { c.Output.Indent = 20 },
			wantMsg: "output.indent: must be at most 8",
		},
		{
			name:    "empty workspace pattern",
			mutate:  func(c *Config) { c.Workspaces = []string{"apps/*", ""} },
			wantMsg: "workspaces[1]: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("Validate(nil) expected error, got nil")
	}
}

func TestValidateWithRoot(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "apps/web", "packages/api")

	cfg := validConfig()
	cfg.Workspaces = []string{"apps/*", "packages/*"}
	if err := ValidateWithRoot(cfg, root); err != nil {
		t.Errorf("ValidateWithRoot() error = %v, want nil", err)
	}

	cfg.Workspaces = []string{"services/*"}
	if err := ValidateWithRoot(cfg, root); err == nil {
		t.Error("ValidateWithRoot() expected error for pattern matching nothing")
	}

	cfg.Workspaces = []string{"apps/[a"}
	if err := ValidateWithRoot(cfg, root); err == nil {
		t.Error("ValidateWithRoot() expected error for invalid pattern")
	}
}
