package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"inventory/internal/domain"
)

var (
	searchText string
	searchTopN int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search products by meaning",
	Long: `Rank products by cosine similarity between the query embedding and the
cached embedding of every product name. The cache is rebuilt automatically
after any product change.

Examples:
  inventory search -q "coffee cup"
  inventory search -q "garden tools" -n 5 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchText, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchTopN, "top-n", "n", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	topN := cfg.Search.TopN
	if searchTopN > 0 {
		topN = searchTopN
	}

	results, err := a.search.Search(cmd.Context(), searchText, topN)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if results == nil {
		results = []domain.ScoredProduct{}
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		count, err := a.store.CountProducts(cmd.Context())
		if err == nil && count == 0 {
			fmt.Printf("No results found: %v.\n", domain.ErrEmptyCorpus)
			return nil
		}
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), searchText)
	for i, r := range results {
		fmt.Printf("[%d] (score: %.3f) %s\n", i+1, r.Score, formatProduct(r.Product))
	}
	return nil
}
