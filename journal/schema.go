package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	name TEXT NOT NULL,
	strategy TEXT NOT NULL,
	start DATETIME NOT NULL,
	end DATETIME NOT NULL,
	initial_balance REAL NOT NULL,
	ending_equity REAL NOT NULL,
	profit_loss REAL NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	run_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	time DATETIME NOT NULL,
	side TEXT NOT NULL,
	shares INTEGER NOT NULL,
	price REAL NOT NULL,
	cash_after REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_run ON transactions(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_symbol ON runs(symbol);
`
