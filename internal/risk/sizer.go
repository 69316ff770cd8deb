package risk

import (
	"math"

	"trend-relay/internal/strategy"
)

// Size turns an entry price, the current ATR and account equity into a
// complete bracket. The boolean is false when no trade should be taken; this
// is a routine skip (degenerate stop distance or non-positive inputs), not an
// error.
func Size(dir strategy.Direction, entry, atr, equity float64, p Parameters) (Bracket, bool) {
	if dir == strategy.DirectionNone || equity <= 0 || p.RiskPct <= 0 {
		return Bracket{}, false
	}

	stopDistance := math.Max(atr*p.ATRMult, p.MinStopDistance)

	var stop, target, riskPerUnit float64
	switch dir {
	case strategy.DirectionLong:
		stop = entry - stopDistance
		riskPerUnit = entry - stop
		target = entry + p.RewardRisk*riskPerUnit
	case strategy.DirectionShort:
		stop = entry + stopDistance
		riskPerUnit = stop - entry
		target = entry - p.RewardRisk*riskPerUnit
	}

	if riskPerUnit <= 0 {
		return Bracket{}, false
	}

	quantity := (equity * p.RiskPct / 100.0) / riskPerUnit
	if quantity <= 0 {
		return Bracket{}, false
	}

	b := Bracket{
		Direction:   dir,
		EntryPrice:  entry,
		Quantity:    quantity,
		StopPrice:   stop,
		TargetPrice: target,
		RiskPerUnit: riskPerUnit,
	}
	if p.TrailingEnabled {
		b.TrailingDistance = p.TrailingATRMult * atr
	}
	return b, true
}
