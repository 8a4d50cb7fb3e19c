package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"go.dot.industries/layers/internal/diff"
)

func init() {
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff <old.json> <new.json>",
	Short: "Compare two merged settings snapshots",
	Long: `Prints the keys added, changed and removed between two settings objects.
Changed arrays are broken down into the elements added and removed.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	prev, err := readSnapshot(args[0])
	if err != nil {
		return err
	}
	curr, err := readSnapshot(args[1])
	if err != nil {
		return err
	}

	d := diff.Objects(prev, curr)
	if d.Empty() {
		fmt.Println("no changes")
		return nil
	}

	for _, k := range sortedKeys(d.Added) {
		fmt.Println(color.GreenString("+ %s: %s", k, compactJSON(d.Added[k])))
	}

	for _, k := range sortedKeys(d.Changed) {
		fmt.Println(color.YellowString("~ %s: %s -> %s", k, compactJSON(prev[k]), compactJSON(d.Changed[k])))

		before, okPrev := prev[k].([]any)
		after, okCurr := d.Changed[k].([]any)
		if !okPrev || !okCurr {
			continue
		}

		ad := diff.Arrays(before, after)
		switch ad.Kind {
		case diff.ArrayNone:
			fmt.Println("    reordered")
		case diff.ArrayComplex:
			fmt.Printf("    too large to diff (over %d elements)\n", diff.MaxArrayLen)
		default:
			for i, v := range ad.Removed {
				fmt.Println(color.RedString("    - [%d] %s", ad.RemovedIndices[i], compactJSON(v)))
			}
			for _, v := range ad.Added {
				fmt.Println(color.GreenString("    + %s", compactJSON(v)))
			}
		}
	}

	for _, k := range d.Removed {
		fmt.Println(color.RedString("- %s", k))
	}

	return nil
}

// readSnapshot reads a settings object from a JSON or JSONC file.
func readSnapshot(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var out map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &out); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if out == nil {
		out = map[string]any{}
	}

	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
