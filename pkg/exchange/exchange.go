// Package exchange abstracts the venue behind the three calls the relay
// needs: a ticker lookup, a market-order submission and the tradable market
// set.
package exchange

import (
	"context"
	"time"
)

// Ticker is a point-in-time price quote.
type Ticker struct {
	Symbol string
	Last   float64
	Bid    float64
	Ask    float64
}

// Order is the synchronous result of a market-order submission. The exchange
// owns the order afterwards; nothing here polls its fill status.
type Order struct {
	ID        string
	Symbol    string
	Side      string // "buy" or "sell"
	QtyBase   float64
	FillPrice float64
	Status    string
	CreatedAt time.Time
}

// Client is the minimal exchange capability consumed by the relay.
type Client interface {
	// FetchTicker returns the current quote for an exchange symbol.
	FetchTicker(ctx context.Context, symbol string) (Ticker, error)
	// CreateMarketOrder submits a market order and returns the raw result.
	CreateMarketOrder(ctx context.Context, symbol, side string, qty float64) (Order, error)
	// LoadMarkets returns the set of tradable pair names.
	LoadMarkets(ctx context.Context) (map[string]bool, error)
}
