package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/layers/internal/config"
	"go.dot.industries/layers/internal/layerfs"
	"go.dot.industries/layers/internal/migrate"
)

var (
	flagMigrateWrite   bool
	flagMigrateFlatten bool
	flagMigrateOut     string
)

func init() {
	migrateCmd.Flags().BoolVar(&flagMigrateWrite, "write", false, "write the JSON file to disk (default: dry-run)")
	migrateCmd.Flags().BoolVar(&flagMigrateFlatten, "flatten", true, "turn nested tables into dotted keys")
	migrateCmd.Flags().StringVarP(&flagMigrateOut, "output", "o", "", "output path (default: input path with a .json extension)")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <settings.toml>",
	Short: "Convert a TOML settings file to a layered JSON config",
	Long: `Reads a TOML settings file and generates the equivalent layered JSON config.
By default runs in dry-run mode printing the result. Use --write to write
the file next to the input.`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	log.Debug().Str("path", absPath).Msg("loading toml settings")

	src, err := migrate.LoadSource(absPath)
	if err != nil {
		return err
	}

	indent := config.DefaultIndent
	if cfg, _, err := loadConfig(); err == nil {
		indent = cfg.Output.Indent
	}

	out, err := migrate.Convert(src, migrate.Options{Flatten: flagMigrateFlatten, Indent: indent})
	if err != nil {
		return fmt.Errorf("converting %s: %w", absPath, err)
	}

	outPath := flagMigrateOut
	if outPath == "" {
		outPath = strings.TrimSuffix(absPath, filepath.Ext(absPath)) + ".json"
	}

	if !flagMigrateWrite {
		fmt.Println("// Dry run: use --write to create the file")
		fmt.Printf("// %s\n", outPath)
		fmt.Print(string(out))
		return nil
	}

	if err := layerfs.OS().WriteFile(context.Background(), filepath.ToSlash(outPath), out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)

	return nil
}
