package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	runs *csv.Writer
	txs  *csv.Writer
	rf   *os.File
	tf   *os.File
}

func NewCSV(runsPath, transactionsPath string) (*CSVJournal, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(transactionsPath)
	if err != nil {
		rf.Close()
		return nil, err
	}

	rw := csv.NewWriter(rf)
	tw := csv.NewWriter(tf)

	if err := rw.Write([]string{"run_id", "symbol", "name", "strategy", "start", "end", "initial_balance", "ending_equity", "profit_loss", "wins", "losses", "created_at"}); err != nil {
		return nil, err
	}
	if err := tw.Write([]string{"run_id", "symbol", "time", "side", "shares", "price", "cash_after"}); err != nil {
		return nil, err
	}

	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{runs: rw, txs: tw, rf: rf, tf: tf}, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Symbol,
		r.Name,
		r.Strategy,
		r.Start.Format(time.RFC3339),
		r.End.Format(time.RFC3339),
		f(r.InitialBalance),
		f(r.EndingEquity),
		f(r.ProfitLoss),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		r.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) RecordTransaction(t TransactionRecord) error {
	err := j.txs.Write([]string{
		t.RunID,
		t.Symbol,
		t.Time.Format(time.RFC3339),
		t.Side,
		strconv.FormatInt(t.Shares, 10),
		f(t.Price),
		f(t.CashAfter),
	})
	if err != nil {
		return err
	}
	j.txs.Flush()
	return j.txs.Error()
}

func (j *CSVJournal) Close() error {
	j.runs.Flush()
	j.txs.Flush()
	if err := j.rf.Close(); err != nil {
		j.tf.Close()
		return err
	}
	return j.tf.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
