package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.dot.industries/layers/internal/chain"
	"go.dot.industries/layers/internal/output"
)

var (
	flagMergeAll bool
	flagQuery    string
)

func init() {
	mergeCmd.Flags().BoolVar(&flagMergeAll, "all", false, "merge every workspace and print them keyed by name")
	mergeCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "output format: json or yaml (overrides config)")
	mergeCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "jq expression applied to the merged settings")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Print the merged settings",
	Long: `Merges the settings chain of the current workspace and prints the result.
With --all every workspace declared in layers.toml is merged concurrently.`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := loadSession(ctx)
	if err != nil {
		return err
	}

	opts := output.Options{
		Format: s.cfg.Output.Format,
		Indent: s.cfg.Output.Indent,
		Query:  flagQuery,
	}

	if flagMergeAll {
		all, err := s.mergeAll(ctx)
		if err != nil {
			return err
		}
		return output.Write(os.Stdout, all, opts)
	}

	entries, name, err := s.currentChain(ctx)
	if err != nil {
		return err
	}

	m, diags := s.merge(ctx, entries)
	logDiagnostics(diags)
	log.Debug().Str("workspace", name).Int("files", len(entries)).Msg("merged settings chain")

	return output.Write(os.Stdout, m.Settings(), opts)
}

// mergeAll merges every workspace with its own Merger.
func (s *session) mergeAll(ctx context.Context) (map[string]any, error) {
	if len(s.workspaces) == 0 {
		return nil, fmt.Errorf("no workspaces configured in layers.toml")
	}

	var mu sync.Mutex
	results := make(map[string]any, len(s.workspaces))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, ws := range s.workspaces {
		ws := ws // per-iteration copy; go directive is 1.21 (pre-loopvar semantics)
		g.Go(func() error {
			entries, _, err := chain.ForWorkspace(gctx, s.fs, s.workspaces, ws.Name, s.discoverOptions())
			if err != nil {
				return err
			}

			m, diags := s.merge(gctx, entries)
			for _, d := range diags {
				log.Warn().Str("workspace", ws.Name).Str("kind", string(d.Kind)).Str("path", d.Path).Err(d.Err).Msg("merge problem")
			}

			mu.Lock()
			results[ws.Name] = m.Settings()
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("merging workspaces: %w", err)
	}

	return results, nil
}
