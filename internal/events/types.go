package events

import "time"

// Event identifies a topic on the bus.
type Event string

const (
	// EventCandleClosed fires once per confirmed candle consumed by the engine.
	EventCandleClosed Event = "candle.closed"
	// EventSignal fires when the detector emits a directional signal.
	EventSignal Event = "signal"
	// EventPositionOpened fires when the bracket manager opens a position.
	EventPositionOpened Event = "position.opened"
	// EventTradeClosed fires when an exit condition closes a position.
	EventTradeClosed Event = "trade.closed"
	// EventOrderSubmitted fires when the relay submits (or dry-runs) an order.
	EventOrderSubmitted Event = "order.submitted"
)

// TradeClosedPayload is published on EventTradeClosed.
type TradeClosedPayload struct {
	Symbol      string
	Direction   string
	EntryPrice  float64
	ExitPrice   float64
	Quantity    float64
	PnL         float64
	RiskAtEntry float64
	ClosedAt    time.Time
	Reason      string
}

// OrderSubmittedPayload is published on EventOrderSubmitted.
type OrderSubmittedPayload struct {
	Symbol    string
	Side      string
	QtyBase   float64
	AmountUSD float64
	DryRun    bool
}
