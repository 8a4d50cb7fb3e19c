package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/layers/internal/token"
	"go.dot.industries/layers/internal/vault"
)

// envSecretID supplies the AppRole secret ID when --secret-id is not given.
const envSecretID = "VAULT_SECRET_ID"

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Vault via AppRole and cache the token",
	Long: `Logs in to Vault with AppRole credentials from layers.toml and the
--role-id/--secret-id flags (or VAULT_SECRET_ID). On success the token is
saved to ~/.layers/token and used to read settings served from Vault.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.Vault.Enabled() {
		return fmt.Errorf("vault address is not configured (set [vault] address in layers.toml or --vault-addr)")
	}

	secretID := flagSecretID
	if secretID == "" {
		secretID = os.Getenv(envSecretID)
	}

	client, err := vault.NewClient(cfg.Vault.Address, cfg.Vault.BasePath, vault.WithTimeout(cfg.Vault.TimeoutDuration()))
	if err != nil {
		return err
	}

	log.Info().Str("address", client.Address()).Msg("authenticating with approle")

	if err := vault.AppRoleAuth(ctx, client, cfg.Vault.AuthMount, cfg.Vault.RoleID, secretID); err != nil {
		return fmt.Errorf("approle authentication failed: %w", err)
	}

	sink := token.DefaultSink()
	if err := sink.Write(token.Entry{
		Token:     client.Token(),
		Address:   client.Address(),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	log.Info().Str("path", sink.Path()).Msg("authenticated successfully")

	return nil
}
