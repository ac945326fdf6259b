package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mingli/atrader/config"
	"github.com/mingli/atrader/feed"
)

var rootCmd = &cobra.Command{
	Use:   "atrader",
	Short: "An A-share backtesting and research tool",
	Long: `Atrader replays Chinese A-share price history through simple rule-based
strategies and reports the outcome.

It provides tools for:
  - Backtesting moving-average crossover strategies with stop/take exits
  - Intraday grid (range-trading) simulation with A-share fees
  - Downloading qfq-adjusted daily bars to CSV
  - Scanning a watchlist for fresh bullish crossovers
  - Journaling runs and transactions to SQLite or CSV`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// newSource builds the configured bar source with retry and rate limiting
// layered on.
func newSource(cfg *config.Config) feed.Source {
	var src feed.Source
	if cfg.Data.Source == "csv" {
		src = &feed.CSVSource{Dir: cfg.Data.Dir}
	} else {
		src = feed.NewKlineClient()
		if cfg.Data.RateLimit > 0 {
			src = feed.NewRateLimited(src, cfg.Data.RateLimit)
		}
	}

	attempts := cfg.Data.RetryAttempts
	if attempts == 0 {
		attempts = feed.DefaultRetryPolicy().MaxAttempts
	}
	return &feed.RetrySource{
		Source: src,
		Policy: feed.RetryPolicy{
			MaxAttempts: attempts,
			Delay:       cfg.Data.RetryDelayDuration(),
		},
	}
}
