package db

import "fmt"

const schema = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS closed_trades (
    id TEXT PRIMARY KEY,
    symbol TEXT NOT NULL,
    direction TEXT NOT NULL,
    entry_price REAL NOT NULL,
    exit_price REAL NOT NULL,
    qty REAL NOT NULL,
    pnl REAL NOT NULL,
    risk_at_entry REAL NOT NULL,
    r_multiple REAL,
    reason TEXT,
    opened_at DATETIME NOT NULL,
    closed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS relay_orders (
    id TEXT PRIMARY KEY,
    symbol TEXT NOT NULL,
    side TEXT NOT NULL,
    amount_usd REAL NOT NULL,
    qty_base REAL NOT NULL,
    price REAL NOT NULL,
    status TEXT NOT NULL,
    dry_run INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_closed_trades_symbol ON closed_trades(symbol, closed_at);
CREATE INDEX IF NOT EXISTS idx_relay_orders_symbol ON relay_orders(symbol, created_at);
`

// ApplyMigrations creates the journal tables if they do not exist.
func ApplyMigrations(d *Database) error {
	if _, err := d.DB.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
