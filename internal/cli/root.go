package cli

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"inventory/config"
	"inventory/internal/logging"
	"inventory/internal/metrics"
)

var (
	cfgFile     string
	cfg         *config.Config
	rootDir     string
	dumpMetrics bool

	logger   *zap.Logger
	registry *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inventory - Product catalog with semantic search and trend insights",
	Long: `Inventory keeps a product catalog in a local bbolt database, records every
stock and price change, and answers free-text product searches through a cached
embedding index.

Example usage:
  inventory product add --sku MUG-1 --name "Blue mug" --quantity 12 --price 1299
  inventory search -q "coffee cup"     # Semantic product search
  inventory insights                   # Low-stock ratio and trending products
  inventory import ./stock             # Bulk import CSV files`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		registry = prometheus.NewRegistry()

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			_ = logger.Sync()
		}
		if !dumpMetrics {
			return nil
		}
		return metrics.WriteText(cmd.OutOrStdout(), registry)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./inventory.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print collected metrics after the command")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
