// Package report renders backtest outcomes as plain text. The engines return
// data only; everything user-facing lives here and in cmd/.
package report

import (
	"fmt"
	"strings"

	"github.com/mingli/atrader/backtest"
	"github.com/mingli/atrader/grid"
)

// NoData is the message for a failed fetch. It is distinct from a valid
// zero-trade run, which renders as a normal summary.
func NoData(symbol string) string {
	return fmt.Sprintf("%s: no data obtained", symbol)
}

// Result renders one instrument's transaction log and final balances.
func Result(symbol string, initialBalance float64, res backtest.Result) string {
	var b strings.Builder

	if len(res.Transactions) == 0 {
		fmt.Fprintf(&b, "%s: no trades\n", symbol)
	}
	for _, tx := range res.Transactions {
		fmt.Fprintf(&b, "%s, %s, %d, %.2f, %.2f\n",
			tx.Time.Format("2006-01-02"), tx.Side, tx.Shares, tx.Price, tx.CashAfter)
	}

	fmt.Fprintf(&b, "Initial Balance: %.2f\n", initialBalance)
	fmt.Fprintf(&b, "Final Cash: %.2f\n", res.Position.Cash)
	if res.Position.Shares > 0 {
		fmt.Fprintf(&b, "Open Position: %d shares, Mark-to-Market: %.2f\n",
			res.Position.Shares, res.MarkToMarket)
	}
	fmt.Fprintf(&b, "Ending Equity: %.2f\n", res.EndingEquity)
	fmt.Fprintf(&b, "Total Profit/Loss: %.2f\n", res.ProfitLoss)

	return b.String()
}

// Portfolio renders the cross-instrument summary of one strategy variant.
func Portfolio(strategy string, p backtest.Portfolio) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Strategy: %s\n", strategy)
	fmt.Fprintf(&b, "Total Cash: %.2f\n", p.TotalCash)
	fmt.Fprintf(&b, "Total Stock Value: %.2f\n", p.TotalStockValue)
	fmt.Fprintf(&b, "Total Portfolio Value: %.2f\n", p.TotalValue)
	fmt.Fprintf(&b, "Number of Stocks Simulated: %d\n", p.NumInstruments)
	fmt.Fprintf(&b, "Number of Profitable Stocks: %d\n", p.NumProfitable)
	fmt.Fprintf(&b, "Number of Losing Stocks: %d\n", p.NumLosing)
	fmt.Fprintf(&b, "Win Rate: %.2f%%\n", p.WinRate)
	fmt.Fprintf(&b, "Average Profit: %.2f\n", p.AvgProfit)
	fmt.Fprintf(&b, "Average Loss: %.2f\n", p.AvgLoss)

	return b.String()
}

// Grid renders an intraday range-trading run: every fill with its fees, then
// the final book.
func Grid(symbol string, res grid.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "--- %s grid run ---\n", symbol)
	fmt.Fprintf(&b, "Initial Position: %d, Initial Market Value: %.2f, Initial Total Assets: %.2f\n",
		res.InitialPosition, res.InitialMarketValue, res.InitialTotalAssets)

	for _, f := range res.Fills {
		fmt.Fprintf(&b, "%s | %s | price %.2f | shares %d | value %.2f | stamp duty %.2f | commission %.2f | position %d | cash %.2f\n",
			f.Time.Format("2006-01-02 15:04:05"), f.Side, f.Price, f.Shares,
			f.Value, f.StampDuty, f.Commission, f.PositionAfter, f.CashAfter)
	}

	fmt.Fprintf(&b, "Buys: %d, Sells: %d, Total Commission: %.2f, Total Stamp Duty: %.2f\n",
		res.BuyCount, res.SellCount, res.TotalCommission, res.TotalStampDuty)
	fmt.Fprintf(&b, "Final Position: %d, Final Price: %.2f, Final Market Value: %.2f, Final Cash: %.2f\n",
		res.FinalPosition, res.FinalPrice, res.FinalMarketValue, res.FinalCash)
	fmt.Fprintf(&b, "Final Total Assets: %.2f, Asset Change (net of fees): %.2f\n",
		res.FinalTotalAssets, res.AssetChange)

	return b.String()
}
