package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, symbol, name, strategy, start, end, initial_balance, ending_equity, profit_loss, wins, losses, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Symbol, r.Name, r.Strategy, r.Start, r.End,
		r.InitialBalance, r.EndingEquity, r.ProfitLoss, r.Wins, r.Losses, r.CreatedAt,
	)
	return err
}

func (j *SQLiteJournal) RecordTransaction(t TransactionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO transactions
		(run_id, symbol, time, side, shares, price, cash_after)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Symbol, t.Time, t.Side, t.Shares, t.Price, t.CashAfter,
	)
	return err
}

// ListRuns returns run summaries, newest first by run ID (ULIDs sort by
// creation time).
func (j *SQLiteJournal) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, symbol, name, strategy, start, end, initial_balance,
		       ending_equity, profit_loss, wins, losses, created_at
		FROM runs ORDER BY run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var r RunRecord
		err := rows.Scan(&r.RunID, &r.Symbol, &r.Name, &r.Strategy, &r.Start, &r.End,
			&r.InitialBalance, &r.EndingEquity, &r.ProfitLoss, &r.Wins, &r.Losses, &r.CreatedAt)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// ListTransactions returns a run's fills in execution order.
func (j *SQLiteJournal) ListTransactions(runID string) ([]TransactionRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, symbol, time, side, shares, price, cash_after
		FROM transactions WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []TransactionRecord
	for rows.Next() {
		var t TransactionRecord
		err := rows.Scan(&t.RunID, &t.Symbol, &t.Time, &t.Side, &t.Shares, &t.Price, &t.CashAfter)
		if err != nil {
			return nil, err
		}
		recs = append(recs, t)
	}
	return recs, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
