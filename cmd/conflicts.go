package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List settings that one file overrides in another",
	Args:  cobra.NoArgs,
	RunE:  runConflicts,
}

func runConflicts(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := loadSession(ctx)
	if err != nil {
		return err
	}

	entries, name, err := s.currentChain(ctx)
	if err != nil {
		return err
	}

	m, diags := s.merge(ctx, entries)
	logDiagnostics(diags)

	keys := m.ConflictedKeys()
	if len(keys) == 0 {
		fmt.Printf("%s: no conflicts\n", name)
		return nil
	}

	prov := m.Provenance()
	bold := color.New(color.Bold).SprintFunc()

	for _, k := range keys {
		p := prov[k]
		fmt.Printf("%s = %s  %s\n", bold(k), compactJSON(p.WinnerValue), color.GreenString(p.Winner))
		for i := len(p.Overrides) - 1; i >= 0; i-- {
			o := p.Overrides[i]
			fmt.Printf("    overrides %s = %s\n", color.RedString(o.SourceFile), compactJSON(o.Value))
		}
	}

	fmt.Printf("\n%d conflicted setting(s) in %s\n", len(keys), name)
	return nil
}
