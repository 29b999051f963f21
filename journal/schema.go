package journal

const Schema = `
CREATE TABLE IF NOT EXISTS option_runs (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	model TEXT NOT NULL,
	option_type TEXT NOT NULL,
	style TEXT NOT NULL,
	strike REAL NOT NULL,
	maturity REAL NOT NULL,
	spot REAL NOT NULL,
	vol REAL NOT NULL,
	price TEXT NOT NULL,
	std_err TEXT NOT NULL,
	detail TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS loan_runs (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	rating TEXT NOT NULL,
	principal REAL NOT NULL,
	policy TEXT NOT NULL,
	expected_loss TEXT NOT NULL,
	economic_capital TEXT NOT NULL,
	net_income TEXT NOT NULL,
	raroc TEXT NOT NULL,
	accepted INTEGER,
	detail TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_option_runs_time ON option_runs(time);
CREATE INDEX IF NOT EXISTS idx_loan_runs_time ON loan_runs(time);
`
