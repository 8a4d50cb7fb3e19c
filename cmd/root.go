package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/layers/internal/chain"
	"go.dot.industries/layers/internal/config"
	"go.dot.industries/layers/internal/layer"
	"go.dot.industries/layers/internal/layerfs"
	"go.dot.industries/layers/internal/token"
	"go.dot.industries/layers/internal/vault"
)

var (
	flagConfig    string
	flagWorkspace string
	flagVerbose   bool
	flagLogFormat string
	flagVaultAddr string
	flagRoleID    string
	flagSecretID  string
	flagFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "layers",
	Short: "Layered JSONC settings for monorepos",
	Long: `layers merges a chain of JSONC settings files, from the repository root
down to the current directory, following "extends" references. It reports
which file set every key, finds conflicts, and writes edits of the merged
result back into the files that own each key.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to layers.toml (auto-detected if omitted)")
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", "", "workspace to merge (detected from the working directory if omitted)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: console or json (default: console on a terminal)")
	rootCmd.PersistentFlags().StringVar(&flagVaultAddr, "vault-addr", "", "vault address; overrides config")
	rootCmd.PersistentFlags().StringVar(&flagRoleID, "role-id", "", "AppRole role ID; overrides config")
	rootCmd.PersistentFlags().StringVar(&flagSecretID, "secret-id", "", "AppRole secret ID")

	cobra.OnInitialize(initLogger)
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}

	console := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	switch flagLogFormat {
	case "json":
		console = false
	case "console":
		console = true
	}

	if console {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger().Level(level)
		return
	}

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
}

// loadConfig finds and parses layers.toml and returns the config with
// command line overrides applied and the directory it was found in. Without
// a layers.toml the defaults apply and the root directory is empty.
func loadConfig() (*config.Config, string, error) {
	configPath := flagConfig

	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("getting working directory: %w", err)
		}

		found, err := config.FindRootConfig(cwd)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("dir", cwd).Msg("no layers.toml found, using defaults")
			return overrides(config.Default()), "", nil
		case err != nil:
			return nil, "", err
		}
		configPath = found
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}

	rootDir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, "", fmt.Errorf("resolving config directory: %w", err)
	}

	return overrides(cfg), rootDir, nil
}

func overrides(cfg *config.Config) *config.Config {
	return config.Merge(cfg, config.Overrides{
		VaultAddr: flagVaultAddr,
		RoleID:    flagRoleID,
		Format:    flagFormat,
	})
}

// session is everything a command needs to merge: the validated config, the
// workspaces it declares and the filesystem files are read through.
type session struct {
	cfg        *config.Config
	rootDir    string
	fs         layer.FileSystem
	host       *layerfs.FS
	workspaces []config.Workspace
}

func loadSession(ctx context.Context) (*session, error) {
	cfg, rootDir, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, rootDir: rootDir, host: layerfs.OS()}
	s.fs = s.host

	if rootDir != "" {
		s.workspaces, err = config.Workspaces(cfg, rootDir)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Vault.Enabled() {
		v, err := vaultFS(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.fs = layerfs.NewMux(cfg.Vault.Mount, v, s.host)
		log.Debug().Str("mount", cfg.Vault.Mount).Str("address", cfg.Vault.Address).Msg("serving shared settings from vault")
	}

	return s, nil
}

// vaultFS authenticates against Vault and returns the adapter serving the
// configured mount.
func vaultFS(ctx context.Context, cfg *config.Config) (*layerfs.Vault, error) {
	client, err := vaultClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cache := layerfs.NewCache(cfg.Vault.CacheTTLDuration())
	return layerfs.NewVault(client, cfg.Vault.Mount, layerfs.WithCache(cache)), nil
}

func vaultClient(ctx context.Context, cfg *config.Config) (*vault.Client, error) {
	opt := vault.WithTimeout(cfg.Vault.TimeoutDuration())

	if cfg.Vault.AuthMethod == "approle" && flagSecretID != "" {
		client, err := vault.NewClient(cfg.Vault.Address, cfg.Vault.BasePath, opt)
		if err != nil {
			return nil, err
		}
		if err := vault.AppRoleAuth(ctx, client, cfg.Vault.AuthMount, cfg.Vault.RoleID, flagSecretID); err != nil {
			return nil, err
		}
		return client, nil
	}

	tok, source, err := token.Lookup(token.DefaultSink())
	if err != nil {
		return nil, fmt.Errorf("vault is configured but no token is available (run `layers login` or set %s): %w", token.EnvToken, err)
	}
	log.Debug().Str("source", source).Msg("using cached vault token")

	return vault.NewClientWithToken(cfg.Vault.Address, cfg.Vault.BasePath, tok, opt)
}

// discoverOptions stops discovery at the layers.toml directory.
func (s *session) discoverOptions() chain.Options {
	return chain.Options{File: s.cfg.File, StopDir: filepath.ToSlash(s.rootDir)}
}

// currentChain returns the chain for --workspace, the workspace containing
// the working directory, or the working directory itself, along with a
// name for it.
func (s *session) currentChain(ctx context.Context) ([]layer.ChainEntry, string, error) {
	if flagWorkspace != "" {
		entries, ws, err := chain.ForWorkspace(ctx, s.fs, s.workspaces, flagWorkspace, s.discoverOptions())
		if err != nil {
			return nil, "", err
		}
		return entries, ws.Name, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting working directory: %w", err)
	}

	start, name := cwd, "."
	if ws, ok, err := config.DetectWorkspace(cwd, s.workspaces); err != nil {
		return nil, "", err
	} else if ok {
		start, name = ws.Dir, ws.Name
	}

	entries, err := chain.Discover(ctx, s.fs, filepath.ToSlash(start), s.discoverOptions())
	if err != nil {
		return nil, "", err
	}

	if len(entries) == 0 {
		log.Warn().Str("dir", start).Str("file", s.cfg.File).Msg("no settings files found")
	}

	return entries, name, nil
}

// merge runs one merge of entries and collects its diagnostics.
func (s *session) merge(ctx context.Context, entries []layer.ChainEntry) (*layer.Merger, []layer.Diagnostic) {
	var diags layer.Diagnostics
	m := layer.New(s.fs, layer.WithHandlers(diags.Handlers()))
	m.MergeFromConfigChain(ctx, entries)
	return m, diags.List()
}

// logDiagnostics reports merge problems without failing the command.
func logDiagnostics(diags []layer.Diagnostic) {
	for _, d := range diags {
		log.Warn().Str("kind", string(d.Kind)).Str("path", d.Path).Err(d.Err).Msg("merge problem")
	}
}
