package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go.dot.industries/layers/internal/watch"
)

var flagDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", watch.DefaultDebounce, "quiet period before re-merging")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-merge whenever a settings file changes",
	Long: `Watches every file of the settings chain, including files reached through
extends, and logs which keys changed after each edit. Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := loadSession(ctx)
	if err != nil {
		return err
	}

	entries, _, err := s.currentChain(ctx)
	if err != nil {
		return err
	}

	return watch.New(s.fs, entries, watch.WithDebounce(flagDebounce)).Run(ctx)
}
