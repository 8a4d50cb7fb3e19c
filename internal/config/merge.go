package config

// Overrides holds values given on the command line. Empty fields leave the
// file value in place.
type Overrides struct {
	File       string
	VaultAddr  string
	RoleID     string
	Format     string
	AuthMethod string
}

// Merge applies command line overrides on top of cfg and returns a new
// Config. The input config is never mutated.
func Merge(cfg *Config, o Overrides) *Config {
	out := *cfg
	out.Workspaces = append([]string(nil), cfg.Workspaces...)

	if o.File != "" {
		out.File = o.File
	}
	if o.VaultAddr != "" {
		out.Vault.Address = o.VaultAddr
	}
	if o.RoleID != "" {
		out.Vault.RoleID = o.RoleID
		out.Vault.AuthMethod = "approle"
	}
	if o.AuthMethod != "" {
		out.Vault.AuthMethod = o.AuthMethod
	}
	if o.Format != "" {
		out.Output.Format = o.Format
	}

	return &out
}
