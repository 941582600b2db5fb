package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	trendingTopN   int
	trendingWindow time.Duration
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List products with the largest recent stock movement",
	Long: `Sum the absolute quantity change of every change event inside the window
and list products by that total. Price-only changes list a product with a
total of zero.

Examples:
  inventory trending
  inventory trending -n 20 --window 24h`,
	RunE: runTrending,
}

func init() {
	rootCmd.AddCommand(trendingCmd)
	trendingCmd.Flags().IntVarP(&trendingTopN, "top-n", "n", 10, "number of products")
	trendingCmd.Flags().DurationVar(&trendingWindow, "window", 0, "look-back window (default from config)")
}

func runTrending(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	window := cfg.Insights.TrendingWindow
	if trendingWindow > 0 {
		window = trendingWindow
	}

	products, err := a.trends.DetectTrending(cmd.Context(), time.Now(), trendingTopN, window)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Printf("No stock changes in the last %s.\n", window)
		return nil
	}
	for i, p := range products {
		fmt.Printf("%d. %s\n", i+1, formatProduct(p))
	}
	return nil
}
