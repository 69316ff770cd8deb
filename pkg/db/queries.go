package db

import (
	"context"
	"fmt"
)

// InsertClosedTrade journals a finished bracket trade.
func (d *Database) InsertClosedTrade(ctx context.Context, row ClosedTradeRow) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO closed_trades
			(id, symbol, direction, entry_price, exit_price, qty, pnl, risk_at_entry, r_multiple, reason, opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.Symbol, row.Direction, row.EntryPrice, row.ExitPrice, row.Qty,
		row.PnL, row.RiskAtEntry, row.RMultiple, row.Reason, row.OpenedAt, row.ClosedAt)
	if err != nil {
		return fmt.Errorf("insert closed trade: %w", err)
	}
	return nil
}

// ListClosedTrades returns the most recent closed trades, newest first.
func (d *Database) ListClosedTrades(ctx context.Context, limit int) ([]ClosedTradeRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.DB.QueryContext(ctx, `
		SELECT id, symbol, direction, entry_price, exit_price, qty, pnl, risk_at_entry, r_multiple, reason, opened_at, closed_at
		FROM closed_trades
		ORDER BY closed_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query closed trades: %w", err)
	}
	defer rows.Close()

	var out []ClosedTradeRow
	for rows.Next() {
		var r ClosedTradeRow
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Direction, &r.EntryPrice, &r.ExitPrice, &r.Qty,
			&r.PnL, &r.RiskAtEntry, &r.RMultiple, &r.Reason, &r.OpenedAt, &r.ClosedAt); err != nil {
			return nil, fmt.Errorf("scan closed trade: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertRelayOrder journals an order handled by the webhook relay.
func (d *Database) InsertRelayOrder(ctx context.Context, row RelayOrderRow) error {
	dry := 0
	if row.DryRun {
		dry = 1
	}
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO relay_orders (id, symbol, side, amount_usd, qty_base, price, status, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.Symbol, row.Side, row.AmountUSD, row.QtyBase, row.Price, row.Status, dry)
	if err != nil {
		return fmt.Errorf("insert relay order: %w", err)
	}
	return nil
}

// ListRelayOrders returns the most recent relay orders, newest first.
func (d *Database) ListRelayOrders(ctx context.Context, limit int) ([]RelayOrderRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.DB.QueryContext(ctx, `
		SELECT id, symbol, side, amount_usd, qty_base, price, status, dry_run, created_at
		FROM relay_orders
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query relay orders: %w", err)
	}
	defer rows.Close()

	var out []RelayOrderRow
	for rows.Next() {
		var r RelayOrderRow
		var dry int
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Side, &r.AmountUSD, &r.QtyBase, &r.Price, &r.Status, &dry, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan relay order: %w", err)
		}
		r.DryRun = dry == 1
		out = append(out, r)
	}
	return out, rows.Err()
}
