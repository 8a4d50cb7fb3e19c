package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/layers/internal/chain"
	"go.dot.industries/layers/internal/config"
	"go.dot.industries/layers/internal/layer"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check layers.toml and every settings chain",
	Long: `Checks layers.toml for structural validity, then merges the chain of every
workspace (or of the current directory when no workspaces are declared) and
reports circular extends, parse errors, and missing or invalid extends targets.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := loadSession(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if s.rootDir != "" {
		if err := config.ValidateWithRoot(s.cfg, s.rootDir); err != nil {
			return fmt.Errorf("%s: %w", config.FileName, err)
		}
		log.Debug().Str("root", s.rootDir).Msg("root config valid")
		fmt.Printf("%s: valid\n", config.FileName)
	}

	type target struct {
		name    string
		entries []layer.ChainEntry
	}

	var targets []target
	if len(s.workspaces) == 0 {
		entries, name, err := s.currentChain(ctx)
		if err != nil {
			return err
		}
		targets = append(targets, target{name, entries})
	}
	for _, ws := range s.workspaces {
		entries, _, err := chain.ForWorkspace(ctx, s.fs, s.workspaces, ws.Name, s.discoverOptions())
		if err != nil {
			return err
		}
		targets = append(targets, target{ws.Name, entries})
	}

	problems := 0
	for _, t := range targets {
		_, diags := s.merge(ctx, t.entries)
		if len(diags) == 0 {
			fmt.Printf("%s: valid (%d files)\n", t.name, len(t.entries))
			continue
		}

		problems += len(diags)
		for _, d := range diags {
			fmt.Printf("%s: %s %s\n", t.name, color.RedString(string(d.Kind)), d.Err)
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}

	return nil
}
