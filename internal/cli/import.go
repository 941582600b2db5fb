package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var importJSON bool

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import products from CSV files",
	Long: `Import products from a CSV file or every matching CSV file under a directory.
Files need the columns sku, name, quantity and price. New SKUs are created,
existing ones updated, and incomplete rows are reported as discarded.

Examples:
  inventory import stock.csv
  inventory import ./exports --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importJSON, "json", false, "output the summary as JSON")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	files, err := a.importer.Files(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No CSV files found.")
		return nil
	}

	progress := newProgress("Importing")
	if importJSON {
		progress = nil
	}
	summary, importErr := a.importer.Import(cmd.Context(), files, progress)

	if importJSON {
		output, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Created:   %d\n", len(summary.Created))
		fmt.Printf("Updated:   %d\n", len(summary.Updated))
		for _, u := range summary.Updated {
			fmt.Printf("  %s (%s):\n", u.SKU, u.Name)
			for _, change := range strings.Split(u.Changes, "\n") {
				fmt.Printf("    %s\n", change)
			}
		}
		fmt.Printf("Discarded: %d\n", len(summary.Discarded))
		for _, row := range summary.Discarded {
			fmt.Printf("  sku=%q name=%q quantity=%q price=%q\n", row["sku"], row["name"], row["quantity"], row["price"])
		}
	}

	return importErr
}
