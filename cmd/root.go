package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kodujdlapolski/tree-research/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "trees",
	Short: "Warsaw street tree inventory scraper",
	Long: "Walks the city map viewer tile by tile, collects every tree feature with its " +
		"attributes, and writes the dated inventory to data/trees_YYYY-MM-DD.csv.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: runScrape,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("trees failed", zap.Error(err))
		_ = zap.L().Sync()
		os.Exit(1)
	}
}
