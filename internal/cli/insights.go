package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var insightsJSON bool

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show the low-stock ratio and trending products",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "output as JSON")
}

func runInsights(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	insights, err := a.insights.ComposeInsights(cmd.Context())
	if err != nil {
		return err
	}

	if insightsJSON {
		output, _ := json.MarshalIndent(insights, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Products:        %d\n", insights.ProductCount)
	fmt.Printf("Low stock (<%d): %.2f%%\n", cfg.Insights.LowStockThreshold, insights.LowStockPercentage)
	fmt.Printf("\nTrending (last %s):\n", cfg.Insights.TrendingWindow)
	if len(insights.TrendingProducts) == 0 {
		fmt.Println("  none")
		return nil
	}
	for i, p := range insights.TrendingProducts {
		fmt.Printf("  %d. %-16s %-32s price=%d\n", i+1, p.SKU, p.Name, p.Price)
	}
	return nil
}
