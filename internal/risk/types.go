package risk

import (
	"time"

	"trend-relay/internal/strategy"
)

// Parameters is the fixed-fractional risk configuration, immutable per run.
type Parameters struct {
	RiskPct         float64 `yaml:"risk_pct"`          // percent of equity risked per trade
	ATRMult         float64 `yaml:"atr_mult"`          // stop distance in ATR multiples
	MinStopDistance float64 `yaml:"min_stop_distance"` // price floor for the stop distance
	RewardRisk      float64 `yaml:"reward_risk"`       // take-profit in R multiples
	TrailingEnabled bool    `yaml:"trailing_enabled"`
	TrailingATRMult float64 `yaml:"trailing_atr_mult"`
}

// DefaultParameters mirrors the chart-strategy inputs.
func DefaultParameters() Parameters {
	return Parameters{
		RiskPct:         1.0,
		ATRMult:         1.0,
		MinStopDistance: 0.5,
		RewardRisk:      1.2,
		TrailingEnabled: true,
		TrailingATRMult: 1.0,
	}
}

// Bracket is a fully sized trade: either every field is consistent or the
// sizer returned no trade at all.
type Bracket struct {
	Direction        strategy.Direction
	EntryPrice       float64
	Quantity         float64
	StopPrice        float64
	TargetPrice      float64
	RiskPerUnit      float64
	TrailingDistance float64 // 0 when trailing is disabled
}

// Position is an open bracket trade for one instrument.
type Position struct {
	Symbol           string
	Direction        strategy.Direction
	EntryPrice       float64
	Quantity         float64
	StopPrice        float64
	TargetPrice      float64
	TrailingDistance float64
	RiskPerUnit      float64
	waterMark        float64 // best price seen in the trade's favor
	OpenedAt         time.Time
}

// RiskAtEntry is the dollar risk fixed when the position was opened.
func (p *Position) RiskAtEntry() float64 {
	return p.RiskPerUnit * p.Quantity
}

// ClosedTrade records a finished position. Immutable once produced.
type ClosedTrade struct {
	Symbol      string
	Direction   strategy.Direction
	EntryPrice  float64
	ExitPrice   float64
	Quantity    float64
	PnL         float64
	RiskAtEntry float64
	OpenedAt    time.Time
	ClosedAt    time.Time
	Reason      string // "stop", "target" or "trailing"
}
