package db

import "time"

// ClosedTradeRow is one journal entry for a finished bracket trade.
type ClosedTradeRow struct {
	ID          string
	Symbol      string
	Direction   string
	EntryPrice  float64
	ExitPrice   float64
	Qty         float64
	PnL         float64
	RiskAtEntry float64
	RMultiple   float64 // 0 when the entry risk was unknown
	Reason      string
	OpenedAt    time.Time
	ClosedAt    time.Time
}

// RelayOrderRow is one journal entry for an order the relay handled,
// including dry-run acknowledgements.
type RelayOrderRow struct {
	ID        string
	Symbol    string
	Side      string
	AmountUSD float64
	QtyBase   float64
	Price     float64
	Status    string
	DryRun    bool
	CreatedAt time.Time
}
