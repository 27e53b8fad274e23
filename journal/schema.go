package journal

// Schema is shared by SQLite and Postgres. Decimals are canonical TEXT so
// the natural key compares exactly; instants are unix nanoseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL,
	currency TEXT NOT NULL DEFAULT 'TWD',
	nickname TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
	id TEXT PRIMARY KEY,
	ticker TEXT NOT NULL,
	exchange TEXT NOT NULL,
	asset_class TEXT NOT NULL,
	lot_size BIGINT NOT NULL DEFAULT 1,
	created_at BIGINT NOT NULL,
	CONSTRAINT uq_symbol UNIQUE (ticker, exchange)
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	symbol_id TEXT NOT NULL REFERENCES symbols(id),
	side TEXT NOT NULL CHECK (side IN ('BUY', 'SELL')),
	quantity TEXT NOT NULL,
	price TEXT NOT NULL,
	trade_ts BIGINT NOT NULL,
	tz_offset BIGINT NOT NULL DEFAULT 0,
	order_id TEXT NOT NULL DEFAULT '',
	fee TEXT NOT NULL DEFAULT '0',
	tax TEXT NOT NULL DEFAULT '0',
	venue TEXT NOT NULL DEFAULT '',
	raw_json TEXT,
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL,
	CONSTRAINT uq_trade_natural_key UNIQUE (account_id, order_id, trade_ts, price, quantity)
);

CREATE INDEX IF NOT EXISTS idx_trades_account_ts ON trades(account_id, trade_ts);

CREATE TABLE IF NOT EXISTS strategies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	CONSTRAINT uq_strategy_name UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS trade_tags (
	trade_id TEXT NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
	strategy_id TEXT NOT NULL REFERENCES strategies(id) ON DELETE CASCADE,
	PRIMARY KEY (trade_id, strategy_id)
);

CREATE TABLE IF NOT EXISTS equity_points (
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	date TEXT NOT NULL,
	equity TEXT NOT NULL,
	net_pnl_day TEXT NOT NULL,
	updated_at BIGINT NOT NULL,
	CONSTRAINT uq_equity_daily PRIMARY KEY (account_id, date)
);

CREATE TABLE IF NOT EXISTS kpis (
	scope TEXT NOT NULL CHECK (scope IN ('account', 'strategy', 'account_month', 'strategy_month')),
	scope_ref_id TEXT NOT NULL,
	period_start BIGINT NOT NULL,
	period_end BIGINT NOT NULL,
	win_rate TEXT,
	avg_win TEXT,
	avg_loss TEXT,
	profit_factor TEXT,
	expectancy TEXT,
	max_drawdown TEXT,
	total_trades BIGINT NOT NULL DEFAULT 0,
	wins BIGINT NOT NULL DEFAULT 0,
	losses BIGINT NOT NULL DEFAULT 0,
	net_pnl TEXT NOT NULL DEFAULT '0',
	updated_at BIGINT NOT NULL,
	CONSTRAINT uq_kpi_period PRIMARY KEY (scope, scope_ref_id, period_start, period_end)
);
`
