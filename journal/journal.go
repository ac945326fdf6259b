// Package journal persists backtest runs and their transaction logs.
package journal

import (
	"time"

	"github.com/mingli/atrader/backtest"
)

// RunRecord summarizes one backtest of one instrument.
type RunRecord struct {
	RunID          string
	Symbol         string
	Name           string
	Strategy       string
	Start          time.Time
	End            time.Time
	InitialBalance float64
	EndingEquity   float64
	ProfitLoss     float64
	Wins           int
	Losses         int
	CreatedAt      time.Time
}

// TransactionRecord is one executed fill within a run.
type TransactionRecord struct {
	RunID     string
	Symbol    string
	Time      time.Time
	Side      string
	Shares    int64
	Price     float64
	CashAfter float64
}

// Journal is the persistence boundary. The engines know nothing about it;
// callers record results after a run completes.
type Journal interface {
	RecordRun(RunRecord) error
	RecordTransaction(TransactionRecord) error
	Close() error
}

// RecordResult writes a run summary plus its full transaction log.
func RecordResult(j Journal, rec RunRecord, res backtest.Result) error {
	rec.EndingEquity = res.EndingEquity
	rec.ProfitLoss = res.ProfitLoss
	rec.Wins = res.Wins()
	rec.Losses = res.Losses()

	if err := j.RecordRun(rec); err != nil {
		return err
	}
	for _, tx := range res.Transactions {
		err := j.RecordTransaction(TransactionRecord{
			RunID:     rec.RunID,
			Symbol:    rec.Symbol,
			Time:      tx.Time,
			Side:      string(tx.Side),
			Shares:    tx.Shares,
			Price:     tx.Price,
			CashAfter: tx.CashAfter,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
