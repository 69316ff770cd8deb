package stats

import (
	"sync"

	"trend-relay/internal/risk"
)

// Tracker maintains rolling performance aggregates over closed trades. The
// candle loop writes and the stats endpoint reads, so access is guarded.
type Tracker struct {
	mu sync.RWMutex

	tradeCount  int
	wins        int
	grossProfit float64
	grossLoss   float64 // stored as a negative sum
	netProfit   float64

	// R-multiple accounting. AvgR averages over trades with a recorded
	// positive dollar risk at entry, not over all trades; a trade whose
	// risk was never captured contributes no R sample.
	sumR   float64
	rCount int

	// Peak-to-trough decline of the running realized-equity curve.
	peak        float64
	maxDrawdown float64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record folds one closed trade into the aggregates. The R-multiple uses the
// dollar risk fixed at entry time; ATR may have changed since and is never
// consulted here.
func (t *Tracker) Record(ct risk.ClosedTrade) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tradeCount++
	t.netProfit += ct.PnL
	if ct.PnL > 0 {
		t.wins++
		t.grossProfit += ct.PnL
	} else {
		t.grossLoss += ct.PnL
	}

	if ct.RiskAtEntry > 0 {
		t.sumR += ct.PnL / ct.RiskAtEntry
		t.rCount++
	}

	if t.netProfit > t.peak {
		t.peak = t.netProfit
	}
	if dd := t.peak - t.netProfit; dd > t.maxDrawdown {
		t.maxDrawdown = dd
	}
}

// Summary is a point-in-time view of the aggregates. ProfitFactor is nil
// until at least one losing trade exists; with a zero gross loss the ratio
// is undefined, not zero.
type Summary struct {
	TradeCount   int      `json:"trade_count"`
	Wins         int      `json:"wins"`
	WinRate      float64  `json:"win_rate"`
	ProfitFactor *float64 `json:"profit_factor,omitempty"`
	NetProfit    float64  `json:"net_profit"`
	MaxDrawdown  float64  `json:"max_drawdown"`
	AvgR         float64  `json:"avg_r"`
}

// Snapshot returns the current aggregates. Ratios are zero until their
// denominators exist.
func (t *Tracker) Snapshot() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Summary{
		TradeCount:  t.tradeCount,
		Wins:        t.wins,
		NetProfit:   t.netProfit,
		MaxDrawdown: t.maxDrawdown,
	}
	if t.tradeCount > 0 {
		s.WinRate = float64(t.wins) / float64(t.tradeCount)
	}
	if t.grossLoss != 0 {
		pf := t.grossProfit / -t.grossLoss
		s.ProfitFactor = &pf
	}
	if t.rCount > 0 {
		s.AvgR = t.sumR / float64(t.rCount)
	}
	return s
}
