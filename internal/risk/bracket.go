package risk

import (
	"time"

	"trend-relay/internal/market"
	"trend-relay/internal/strategy"
)

// BracketManager owns per-instrument position state. An instrument is either
// flat or holds exactly one open position (pyramiding = 1); a signal arriving
// while a position is open is ignored by the caller via IsOpen. The manager is
// driven by the single candle-loop goroutine and holds no locks.
type BracketManager struct {
	positions map[string]*Position
}

// NewBracketManager creates an empty manager.
func NewBracketManager() *BracketManager {
	return &BracketManager{positions: make(map[string]*Position)}
}

// IsOpen reports whether the instrument currently holds an open position.
func (m *BracketManager) IsOpen(symbol string) bool {
	return m.positions[symbol] != nil
}

// GetPosition returns the open position for symbol, or nil.
func (m *BracketManager) GetPosition(symbol string) *Position {
	return m.positions[symbol]
}

// Open creates a position from a sized bracket. It returns nil when the
// instrument already holds one.
func (m *BracketManager) Open(symbol string, b Bracket, openedAt time.Time) *Position {
	if m.positions[symbol] != nil {
		return nil
	}
	pos := &Position{
		Symbol:           symbol,
		Direction:        b.Direction,
		EntryPrice:       b.EntryPrice,
		Quantity:         b.Quantity,
		StopPrice:        b.StopPrice,
		TargetPrice:      b.TargetPrice,
		TrailingDistance: b.TrailingDistance,
		RiskPerUnit:      b.RiskPerUnit,
		waterMark:        b.EntryPrice,
		OpenedAt:         openedAt,
	}
	m.positions[symbol] = pos
	return pos
}

// OnCandle checks the instrument's exit conditions against a confirmed
// candle's range, then tightens the trailing stop from the candle's favorable
// extreme if the position survives. Exits are tested against the stop as it
// stood before this candle: raising the stop from a bar's high and exiting on
// the same bar's low would assume the high printed first. When both stop and
// target lie inside the candle's range the stop wins (conservative
// first-touch rule). Returns the resulting ClosedTrade, or nil.
func (m *BracketManager) OnCandle(symbol string, c market.Candle) *ClosedTrade {
	pos := m.positions[symbol]
	if pos == nil || !c.Confirmed {
		return nil
	}

	if ct := m.checkExit(pos, c); ct != nil {
		return ct
	}
	if pos.TrailingDistance > 0 {
		m.trail(pos, c)
	}
	return nil
}

func (m *BracketManager) checkExit(pos *Position, c market.Candle) *ClosedTrade {
	switch pos.Direction {
	case strategy.DirectionLong:
		if c.Low <= pos.StopPrice {
			return m.close(pos, pos.StopPrice, c.CloseTime, stopReason(pos))
		}
		if c.High >= pos.TargetPrice {
			return m.close(pos, pos.TargetPrice, c.CloseTime, "target")
		}
	case strategy.DirectionShort:
		if c.High >= pos.StopPrice {
			return m.close(pos, pos.StopPrice, c.CloseTime, stopReason(pos))
		}
		if c.Low <= pos.TargetPrice {
			return m.close(pos, pos.TargetPrice, c.CloseTime, "target")
		}
	}
	return nil
}

// trail ratchets the stop behind the best favorable price.
func (m *BracketManager) trail(pos *Position, c market.Candle) {
	if pos.Direction == strategy.DirectionLong {
		if c.High > pos.waterMark {
			pos.waterMark = c.High
			if s := pos.waterMark - pos.TrailingDistance; s > pos.StopPrice {
				pos.StopPrice = s
			}
		}
		return
	}
	if c.Low < pos.waterMark {
		pos.waterMark = c.Low
		if s := pos.waterMark + pos.TrailingDistance; s < pos.StopPrice {
			pos.StopPrice = s
		}
	}
}

func (m *BracketManager) close(pos *Position, exit float64, at time.Time, reason string) *ClosedTrade {
	delete(m.positions, pos.Symbol)

	pnl := (exit - pos.EntryPrice) * pos.Quantity
	if pos.Direction == strategy.DirectionShort {
		pnl = -pnl
	}
	return &ClosedTrade{
		Symbol:      pos.Symbol,
		Direction:   pos.Direction,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   exit,
		Quantity:    pos.Quantity,
		PnL:         pnl,
		RiskAtEntry: pos.RiskAtEntry(),
		OpenedAt:    pos.OpenedAt,
		ClosedAt:    at,
		Reason:      reason,
	}
}

// stopReason distinguishes a ratcheted trailing stop from the original one.
func stopReason(pos *Position) string {
	if pos.TrailingDistance > 0 {
		long := pos.Direction == strategy.DirectionLong
		if (long && pos.StopPrice > pos.EntryPrice-pos.RiskPerUnit) ||
			(!long && pos.StopPrice < pos.EntryPrice+pos.RiskPerUnit) {
			return "trailing"
		}
	}
	return "stop"
}
