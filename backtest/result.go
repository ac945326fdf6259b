package backtest

// Result is the read-only outcome of one engine run.
type Result struct {
	Transactions []Transaction
	Position     Position

	// MarkToMarket values a still-open position at the last bar's close.
	// Reporting only; no trade is executed.
	MarkToMarket float64

	// EndingEquity is cash plus mark-to-market value.
	EndingEquity float64

	// ProfitLoss is ending equity minus the initial balance.
	ProfitLoss float64
}

func newResult(cfg Config, txs []Transaction, pos Position, lastClose float64) Result {
	mtm := float64(pos.Shares) * lastClose
	equity := pos.Cash + mtm
	return Result{
		Transactions: txs,
		Position:     pos,
		MarkToMarket: mtm,
		EndingEquity: equity,
		ProfitLoss:   equity - cfg.InitialBalance,
	}
}

// Wins counts profitable sells: any SELL whose fill price is above the entry
// price of the buy it closes.
func (r Result) Wins() int {
	wins := 0
	var entry float64
	for _, tx := range r.Transactions {
		switch tx.Side {
		case SideBuy:
			entry = tx.Price
		case SideSell:
			if tx.Price > entry {
				wins++
			}
		}
	}
	return wins
}

// Losses counts losing sells.
func (r Result) Losses() int {
	losses := 0
	var entry float64
	for _, tx := range r.Transactions {
		switch tx.Side {
		case SideBuy:
			entry = tx.Price
		case SideSell:
			if tx.Price < entry {
				losses++
			}
		}
	}
	return losses
}
