package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mingli/atrader/feed"
	"github.com/mingli/atrader/grid"
	"github.com/mingli/atrader/market"
	"github.com/mingli/atrader/report"
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Run an intraday grid (range-trading) simulation over a bar file",
	Long: `Grid replays intraday bars from a CSV file through a range-trading
simulator: sell a tranche when the price climbs the sell band above the last
fill, buy one back when it drops the buy band below, with A-share commission
and stamp duty applied.

Example:
  atrader grid --bars data/600030-minute.csv --base 21.50 --buy 1 --sell 1`,
	RunE: runGrid,
}

var (
	gridBarsPath   string
	gridSymbol     string
	gridBase       float64
	gridBuyPct     float64
	gridSellPct    float64
	gridCommission float64
	gridStampDuty  float64
	gridCash       float64
	gridPosValue   float64
	gridTradeValue float64
)

func init() {
	rootCmd.AddCommand(gridCmd)

	gridCmd.Flags().StringVarP(&gridBarsPath, "bars", "b", "", "path to intraday bar CSV (required)")
	gridCmd.Flags().StringVar(&gridSymbol, "symbol", "", "symbol label for the report")
	gridCmd.Flags().Float64Var(&gridBase, "base", 0, "anchor price, normally the previous close (required)")
	gridCmd.Flags().Float64Var(&gridBuyPct, "buy", 1, "buy band in percent below the anchor")
	gridCmd.Flags().Float64Var(&gridSellPct, "sell", 1, "sell band in percent above the anchor")
	gridCmd.Flags().Float64Var(&gridCommission, "commission", 0.0003, "commission rate, both sides")
	gridCmd.Flags().Float64Var(&gridStampDuty, "stamp-duty", 0.001, "stamp duty rate, sells only")
	gridCmd.Flags().Float64Var(&gridCash, "cash", 1_000_000, "initial cash")
	gridCmd.Flags().Float64Var(&gridPosValue, "position-value", 1_000_000, "seeded position value")
	gridCmd.Flags().Float64Var(&gridTradeValue, "trade-value", 10_000, "tranche value per fill")

	gridCmd.MarkFlagRequired("bars")
	gridCmd.MarkFlagRequired("base")
}

func runGrid(cmd *cobra.Command, args []string) error {
	bars, err := feed.ReadCSV(gridBarsPath)
	if err != nil {
		return err
	}
	if err := market.ValidateBars(bars); err != nil {
		return err
	}

	engine, err := grid.New(grid.Config{
		BuyPct:         gridBuyPct / 100,
		SellPct:        gridSellPct / 100,
		CommissionRate: gridCommission,
		StampDutyRate:  gridStampDuty,
		InitialCash:    gridCash,
		PositionValue:  gridPosValue,
		TradeValue:     gridTradeValue,
	})
	if err != nil {
		return err
	}

	symbol := gridSymbol
	if symbol == "" {
		symbol = gridBarsPath
	}

	res := engine.Run(gridBase, bars)
	fmt.Print(report.Grid(symbol, res))
	return nil
}
