package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the product embedding cache",
	Long: `Embed every product name and store the snapshot used by search, so the
next search does not pay for the rebuild.`,
	RunE: runReindex,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the product embedding cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the product embedding cache",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(reindexCmd, cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	snap, err := a.cache.Rebuild(cmd.Context(), newProgress("Embedding"))
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Printf("Embedded %d products with %s (dim %d) in %v\n",
		len(snap.Products), snap.Model, snap.Dimension, time.Since(start).Round(time.Millisecond))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cache.Invalidate(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Embedding cache cleared.")
	return nil
}
