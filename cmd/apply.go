package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/layers/internal/jsonedit"
	"go.dot.industries/layers/internal/layerfs"
	"go.dot.industries/layers/internal/reconcile"
)

var (
	flagApplyWrite  bool
	flagApplyTarget string
)

func init() {
	applyCmd.Flags().BoolVar(&flagApplyWrite, "write", false, "write the edits to disk (default: dry-run)")
	applyCmd.Flags().StringVar(&flagApplyTarget, "target", "", "file receiving new keys (default: the most specific file of the chain)")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply <edited.json>",
	Short: "Write an edited copy of the merged settings back to its source files",
	Long: `Compares an edited copy of the merged settings with the current merge and
writes each change into the file that owns the key. Comments and formatting
of the edited files are kept. By default only a preview is printed; use
--write to change files.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	edited, err := readSnapshot(args[0])
	if err != nil {
		return err
	}

	s, err := loadSession(ctx)
	if err != nil {
		return err
	}

	entries, _, err := s.currentChain(ctx)
	if err != nil {
		return err
	}

	m, diags := s.merge(ctx, entries)
	if len(diags) > 0 {
		logDiagnostics(diags)
		return fmt.Errorf("refusing to apply edits to a chain with %d merge problem(s)", len(diags))
	}

	target := flagApplyTarget
	if target != "" {
		abs, err := filepath.Abs(target)
		if err != nil {
			return fmt.Errorf("resolving target %s: %w", target, err)
		}
		target = filepath.ToSlash(abs)
	} else if len(entries) > 0 {
		last := entries[len(entries)-1]
		target = s.fs.Resolve(last.BaseDir, last.ConfigPath)
	}

	plan := reconcile.Plan(m.Settings(), edited, m.Provenance(), reconcile.Options{Target: target})

	for _, sk := range plan.Skipped {
		fmt.Println(color.YellowString("skipped %s: %s", sk.Key, sk.Reason))
	}

	if len(plan.Files) == 0 {
		fmt.Println("nothing to apply")
		return nil
	}

	w, writable := s.fs.(layerfs.Writer)

	for _, fe := range plan.Files {
		before, err := s.fs.ReadFile(ctx, fe.File)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", fe.File, err)
		}

		after, err := jsonedit.Apply(before, fe.Edits)
		if err != nil {
			return fmt.Errorf("editing %s: %w", fe.File, err)
		}

		if !flagApplyWrite {
			fmt.Print(jsonedit.Preview(fe.File, string(before), string(after)))
			continue
		}

		if !writable {
			return fmt.Errorf("writing %s: filesystem is read-only", fe.File)
		}
		if err := w.WriteFile(ctx, fe.File, after); err != nil {
			return err
		}

		added, deleted := jsonedit.Stats(string(before), string(after))
		log.Debug().Str("path", fe.File).Int("edits", len(fe.Edits)).Msg("settings file updated")
		fmt.Printf("wrote %s (%s, %s)\n", fe.File,
			color.GreenString("+%d", added), color.RedString("-%d", deleted))
	}

	if !flagApplyWrite {
		fmt.Println("\n# Dry run: use --write to change files")
	}

	return nil
}
