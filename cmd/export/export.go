// Package export provides the CSV export subcommand.
package export

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gardenbase/seedvault/internal/conf"
	"github.com/gardenbase/seedvault/internal/datastore"
	"github.com/gardenbase/seedvault/internal/export"
)

// Command creates the export command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		outputPath string
		search     string
		category   int64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the seed catalog to CSV",
		Long:  "Write the seed catalog as CSV, to stdout or to a file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(settings, outputPath, search, category)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path, stdout when empty")
	cmd.Flags().StringVar(&search, "search", "", "Free-text filter on name, variety, brand and description")
	cmd.Flags().Int64Var(&category, "category", 0, "Category term id filter")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}

	return cmd
}

func runExport(settings *conf.Settings, outputPath, search string, category int64) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() { _ = ds.Close() }()

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	filters := &datastore.SeedFilters{Query: search, CategoryTermID: category}
	if err := export.WriteCSV(out, ds, settings, filters); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if outputPath != "" {
		fmt.Printf("exported to %s\n", outputPath)
	}
	return nil
}
