package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mingli/atrader/config"
	"github.com/mingli/atrader/feed"
	"github.com/mingli/atrader/report"
	"github.com/mingli/atrader/strategies"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the configured stocks for a fresh bullish crossover",
	Long: `Scan fetches recent bars for each configured stock and reports the ones
whose short moving average crossed above the long one on the latest bar.

Example:
  atrader scan -c atrader.yaml`,
	RunE: runScan,
}

var scanConfigPath string

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanConfigPath, "config", "c", "atrader.yaml", "path to config file (YAML or JSON)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(scanConfigPath)
	if err != nil {
		return err
	}
	if len(cfg.Strategies) == 0 {
		return fmt.Errorf("no strategy variants configured")
	}
	variant := cfg.Strategies[0]

	start, end, err := cfg.Data.Range()
	if err != nil {
		return err
	}

	ctx := context.Background()
	src := newSource(cfg)

	hits := 0
	for _, s := range cfg.Data.Stocks {
		bars, err := src.Bars(ctx, s.Code, start, end)
		if err != nil {
			if errors.Is(err, feed.ErrNoData) {
				fmt.Println(report.NoData(s.Code))
				continue
			}
			return err
		}

		strat, err := strategies.NewMACross(strategies.MACrossConfig{
			ShortWindow: variant.MAShort,
			LongWindow:  variant.MALong,
			ConfirmLag:  variant.ConfirmLag,
		})
		if err != nil {
			return err
		}

		var last strategies.Decision
		for _, b := range bars {
			last = strat.Update(b)
		}

		if last.Signal == strategies.Buy {
			hits++
			fmt.Printf("%s %s: %s (short %.2f, long %.2f, close %.2f)\n",
				s.Code, s.Name, last.Reason, last.Short, last.Long, last.Close)
		}
	}

	fmt.Printf("%d of %d stocks crossed on the latest bar\n", hits, len(cfg.Data.Stocks))
	return nil
}
