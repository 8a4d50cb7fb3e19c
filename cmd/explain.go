package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"go.dot.industries/layers/internal/layer"
)

const maxSuggestions = 3

func init() {
	rootCmd.AddCommand(explainCmd)
}

var explainCmd = &cobra.Command{
	Use:   "explain <key>",
	Short: "Show where a merged setting comes from",
	Long: `Prints the effective value of a setting, the file that set it, every file
whose value it overrode, and for arrays which file contributed which elements.`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := args[0]

	s, err := loadSession(ctx)
	if err != nil {
		return err
	}

	entries, _, err := s.currentChain(ctx)
	if err != nil {
		return err
	}

	m, diags := s.merge(ctx, entries)
	logDiagnostics(diags)

	settings := m.Settings()
	v, ok := settings[key]
	if !ok {
		msg := fmt.Sprintf("setting %q is not set", key)
		if sugg := suggestKeys(key, m.OwnedKeys()); len(sugg) > 0 {
			msg += fmt.Sprintf("; did you mean %s?", strings.Join(sugg, ", "))
		}
		return fmt.Errorf("%s", msg)
	}

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Printf("%s %s\n", bold("key:"), key)
	fmt.Printf("%s %s\n", bold("value:"), compactJSON(v))

	prov, tracked := m.Provenance()[key]
	if !tracked {
		fmt.Printf("%s %s\n", bold("set by:"), dim("language block merged across files"))
		return nil
	}

	fmt.Printf("%s %s\n", bold("set by:"), color.GreenString(prov.Winner))
	printOverrides(prov)

	if len(prov.ArraySegments) > 0 {
		fmt.Println(bold("segments:"))
		for _, seg := range prov.ArraySegments {
			fmt.Printf("  [%d:%d] %s\n", seg.Start, seg.Start+seg.Length, seg.SourceFile)
		}
	}

	return nil
}

func printOverrides(prov layer.KeyProvenance) {
	if !prov.Conflicted() {
		return
	}

	fmt.Println(color.New(color.Bold).Sprint("overrides:"))
	for i := len(prov.Overrides) - 1; i >= 0; i-- {
		o := prov.Overrides[i]
		fmt.Printf("  %s = %s\n", color.RedString(o.SourceFile), compactJSON(o.Value))
	}
}

// suggestKeys returns the keys closest to key by edit distance.
func suggestKeys(key string, keys []string) []string {
	type candidate struct {
		key  string
		dist int
	}

	limit := max(2, len(key)/3)
	var found []candidate
	for _, k := range keys {
		d := levenshtein.ComputeDistance(key, k)
		if d <= limit {
			found = append(found, candidate{k, d})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].key < found[j].key
	})

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(found) && i < maxSuggestions; i++ {
		out = append(out, found[i].key)
	}
	return out
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
