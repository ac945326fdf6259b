package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mingli/atrader/backtest"
	"github.com/mingli/atrader/config"
	"github.com/mingli/atrader/feed"
	"github.com/mingli/atrader/internal/id"
	"github.com/mingli/atrader/journal"
	"github.com/mingli/atrader/market"
	"github.com/mingli/atrader/report"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run every configured strategy variant over the configured stocks",
	Long: `Backtest fetches daily bars for each configured stock, replays them
through every strategy variant in the config file, prints per-stock
transaction logs and a per-strategy portfolio summary, and journals the
results.

Example:
  atrader backtest -c atrader.yaml`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btWorkers    int
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "atrader.yaml", "path to config file (YAML or JSON)")
	backtestCmd.Flags().IntVarP(&btWorkers, "workers", "w", 0, "concurrent backtests (0 = GOMAXPROCS)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(btConfigPath)
	if err != nil {
		return err
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	start, end, err := cfg.Data.Range()
	if err != nil {
		return err
	}

	ctx := context.Background()
	src := newSource(cfg)

	instruments, err := loadInstruments(ctx, src, cfg, start, end)
	if err != nil {
		return err
	}
	if len(instruments) == 0 {
		return fmt.Errorf("no data obtained for any configured stock")
	}

	for _, strat := range cfg.Strategies {
		fmt.Printf("Executing %s...\n", strat.Name)

		runner := &backtest.Runner{
			Config:  strat.Engine(cfg.Account),
			Workers: btWorkers,
		}
		p, err := runner.Run(ctx, instruments)
		if err != nil {
			return fmt.Errorf("strategy %s: %w", strat.Name, err)
		}

		for _, ir := range p.Results {
			fmt.Print(report.Result(ir.Meta.Code, cfg.Account.InitialBalance, ir.Result))
			if j != nil {
				err := journal.RecordResult(j, journal.RunRecord{
					RunID:          id.New(),
					Symbol:         ir.Meta.Code,
					Name:           ir.Meta.Name,
					Strategy:       strat.Name,
					Start:          start,
					End:            end,
					InitialBalance: cfg.Account.InitialBalance,
					CreatedAt:      time.Now().UTC(),
				}, ir.Result)
				if err != nil {
					return fmt.Errorf("journal: %w", err)
				}
			}
		}

		fmt.Println()
		fmt.Print(report.Portfolio(strat.Name, p))
		fmt.Println()
	}

	return nil
}

// loadInstruments fetches bars for every configured stock. A stock with no
// obtainable data is reported and skipped rather than failing the whole run.
func loadInstruments(ctx context.Context, src feed.Source, cfg *config.Config, start, end time.Time) ([]backtest.Instrument, error) {
	instruments := make([]backtest.Instrument, 0, len(cfg.Data.Stocks))

	for _, s := range cfg.Data.Stocks {
		meta, err := market.NewInstrument(s.Code, s.Name)
		if err != nil {
			return nil, err
		}

		bars, err := src.Bars(ctx, s.Code, start, end)
		if err != nil {
			if errors.Is(err, feed.ErrNoData) {
				fmt.Println(report.NoData(s.Code))
				continue
			}
			return nil, err
		}
		if err := market.ValidateBars(bars); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Code, err)
		}

		instruments = append(instruments, backtest.Instrument{Meta: meta, Bars: bars})
	}
	return instruments, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return nil, nil
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.RunsFile, cfg.Journal.TransactionsFile)
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}
