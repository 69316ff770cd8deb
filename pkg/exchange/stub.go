package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stub is an in-memory Client for tests and local runs. Prices and markets
// are fixed; submitted orders fill instantly at the stub price.
type Stub struct {
	mu      sync.Mutex
	Prices  map[string]float64
	Markets map[string]bool
	Orders  []Order

	// TickerErr / OrderErr / MarketsErr force the corresponding call to fail.
	TickerErr  error
	OrderErr   error
	MarketsErr error
}

// NewStub creates a stub with the given last prices.
func NewStub(prices map[string]float64) *Stub {
	markets := make(map[string]bool, len(prices))
	for sym := range prices {
		markets[sym] = true
	}
	return &Stub{Prices: prices, Markets: markets}
}

func (s *Stub) FetchTicker(_ context.Context, symbol string) (Ticker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TickerErr != nil {
		return Ticker{}, s.TickerErr
	}
	px, ok := s.Prices[symbol]
	if !ok {
		return Ticker{}, fmt.Errorf("no ticker for %s", symbol)
	}
	return Ticker{Symbol: symbol, Last: px, Bid: px, Ask: px}, nil
}

func (s *Stub) CreateMarketOrder(_ context.Context, symbol, side string, qty float64) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OrderErr != nil {
		return Order{}, s.OrderErr
	}
	o := Order{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		QtyBase:   qty,
		FillPrice: s.Prices[symbol],
		Status:    "filled",
		CreatedAt: time.Now(),
	}
	s.Orders = append(s.Orders, o)
	return o, nil
}

func (s *Stub) LoadMarkets(_ context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarketsErr != nil {
		return nil, s.MarketsErr
	}
	out := make(map[string]bool, len(s.Markets))
	for k, v := range s.Markets {
		out[k] = v
	}
	return out, nil
}
