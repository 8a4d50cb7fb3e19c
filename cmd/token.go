package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go.dot.industries/layers/internal/token"
	"go.dot.industries/layers/internal/vault"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenStatusCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage Vault tokens",
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current Vault token status and TTL",
	Args:  cobra.NoArgs,
	RunE:  runTokenStatus,
}

func runTokenStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	sink := token.DefaultSink()
	tok, source, err := token.Lookup(sink)
	if errors.Is(err, token.ErrNoToken) {
		fmt.Println("Token: not found")
		fmt.Printf("Token path: %s\n", sink.Path())
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Token source: %s\n", source)

	if !cfg.Vault.Enabled() {
		fmt.Println("Token: present (no vault address configured to verify it)")
		return nil
	}

	client, err := vault.NewClientWithToken(cfg.Vault.Address, cfg.Vault.BasePath, tok, vault.WithTimeout(cfg.Vault.TimeoutDuration()))
	if err != nil {
		return fmt.Errorf("creating vault client: %w", err)
	}

	ttl, err := client.TokenTTL(ctx)
	if err != nil {
		fmt.Println("Token: present but cannot verify (lookup failed)")
		return nil
	}

	if ttl <= 0 {
		fmt.Println("Token: expired")
		return nil
	}

	fmt.Println("Token: valid")
	fmt.Printf("TTL: %s\n", formatDuration(ttl))
	fmt.Printf("Expires: %s\n", time.Now().Add(ttl).Format("2006-01-02 15:04:05"))

	return nil
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}

	return fmt.Sprintf("%dm", minutes)
}
