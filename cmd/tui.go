package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"go.dot.industries/layers/internal/tui"
	"go.dot.industries/layers/internal/tui/bridge"
)

func init() {
	rootCmd.AddCommand(tuiCmd)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse merged settings interactively",
	Long: `Opens a terminal UI listing the files of the settings chain and the keys
they set. Select a key to see its value, the files it overrode, and for
arrays which file contributed which elements.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := loadSession(ctx)
	if err != nil {
		return err
	}

	entries, name, err := s.currentChain(ctx)
	if err != nil {
		return err
	}

	return tui.Run(bridge.New(s.fs, entries, s.labelRoot(), name))
}

// labelRoot is the directory file paths are shown relative to: the
// layers.toml directory, or the working directory without one.
func (s *session) labelRoot() string {
	if s.rootDir != "" {
		return filepath.ToSlash(s.rootDir)
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.ToSlash(cwd)
	}
	return ""
}
