package config

import "testing"

func TestMerge_Overrides(t *testing.T) {
	base := validConfig()
	base.Workspaces = []string{"apps/*"}

	got := Merge(base, Overrides{
		File:      "custom.json",
		VaultAddr: "https://other:8200",
		RoleID:    "ci-role",
		Format:    "yaml",
	})

	if got.File != "custom.json" {
		t.Errorf("File = %q, want %q", got.File, "custom.json")
	}
	if got.Vault.Address != "https://other:8200" {
		t.Errorf("Vault.Address = %q", got.Vault.Address)
	}
	if got.Vault.AuthMethod != "approle" {
		t.Errorf("Vault.AuthMethod = %q, want approle when a role id is given", got.Vault.AuthMethod)
	}
	if got.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q, want yaml", got.Output.Format)
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	base := validConfig()
	base.Workspaces = []string{"apps/*"}

	got := Merge(base, Overrides{VaultAddr: "https://other:8200"})
	got.Workspaces[0] = "changed"

	if base.Vault.Address != "https://vault.example.com" {
		t.Errorf("input Vault.Address mutated to %q", base.Vault.Address)
	}
	if base.Workspaces[0] != "apps/*" {
		t.Errorf("input Workspaces mutated to %v", base.Workspaces)
	}
}

func TestMerge_EmptyOverridesKeepValues(t *testing.T) {
	base := validConfig()

	got := Merge(base, Overrides{})
	if got.File != base.File || got.Vault != base.Vault || got.Output != base.Output {
		t.Errorf("Merge() with no overrides changed config: %+v", got)
	}
}
