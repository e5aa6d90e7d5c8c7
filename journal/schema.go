package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	fill_id      TEXT PRIMARY KEY,
	cl_ord_id    TEXT NOT NULL,
	broker_id    TEXT,
	symbol       TEXT NOT NULL,
	side         TEXT NOT NULL,
	quantity     REAL NOT NULL,
	price        REAL NOT NULL,
	commission   REAL NOT NULL,
	strategy_tag TEXT,
	time         TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time            TIMESTAMP NOT NULL,
	equity          REAL NOT NULL,
	cash            REAL NOT NULL,
	positions_value REAL NOT NULL,
	drawdown        REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_symbol ON fills(symbol);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
