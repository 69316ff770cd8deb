package risk

import (
	"math"
	"testing"
	"time"

	"trend-relay/internal/market"
	"trend-relay/internal/strategy"
)

func candle(o, h, l, c float64) market.Candle {
	return market.Candle{Open: o, High: h, Low: l, Close: c, CloseTime: time.Now(), Confirmed: true}
}

func TestBracketPyramidingLimit(t *testing.T) {
	m := NewBracketManager()
	b := Bracket{Direction: strategy.DirectionLong, EntryPrice: 100, Quantity: 1, StopPrice: 98, TargetPrice: 102.4, RiskPerUnit: 2}

	if pos := m.Open("BTC/USD", b, time.Now()); pos == nil {
		t.Fatal("first open should succeed")
	}
	if pos := m.Open("BTC/USD", b, time.Now()); pos != nil {
		t.Fatal("second open on the same instrument must be rejected")
	}
	if !m.IsOpen("BTC/USD") {
		t.Fatal("instrument should report open")
	}
}

func TestBracketLongExits(t *testing.T) {
	tests := []struct {
		name       string
		c          market.Candle
		wantReason string
		wantExit   float64
	}{
		{"target touch", candle(101, 103, 100.5, 102), "target", 102.4},
		{"stop touch", candle(99, 100, 97.5, 98), "stop", 98},
		// Both sides inside the range: the stop wins.
		{"both touched", candle(100, 103, 97, 100), "stop", 98},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewBracketManager()
			m.Open("BTC/USD", Bracket{
				Direction: strategy.DirectionLong, EntryPrice: 100, Quantity: 2,
				StopPrice: 98, TargetPrice: 102.4, RiskPerUnit: 2,
			}, time.Now())

			ct := m.OnCandle("BTC/USD", tt.c)
			if ct == nil {
				t.Fatal("expected an exit")
			}
			if ct.Reason != tt.wantReason {
				t.Fatalf("reason=%q, expected %q", ct.Reason, tt.wantReason)
			}
			if ct.ExitPrice != tt.wantExit {
				t.Fatalf("exit=%v, expected %v", ct.ExitPrice, tt.wantExit)
			}
			wantPnL := (tt.wantExit - 100) * 2
			if math.Abs(ct.PnL-wantPnL) > 1e-9 {
				t.Fatalf("pnl=%v, expected %v", ct.PnL, wantPnL)
			}
			if ct.RiskAtEntry != 4 {
				t.Fatalf("riskAtEntry=%v, expected 4", ct.RiskAtEntry)
			}
			if m.IsOpen("BTC/USD") {
				t.Fatal("instrument should be flat after exit")
			}
		})
	}
}

func TestBracketShortExitMirrors(t *testing.T) {
	m := NewBracketManager()
	m.Open("BTC/USD", Bracket{
		Direction: strategy.DirectionShort, EntryPrice: 100, Quantity: 1,
		StopPrice: 102, TargetPrice: 97.6, RiskPerUnit: 2,
	}, time.Now())

	ct := m.OnCandle("BTC/USD", candle(99, 99.5, 97, 98))
	if ct == nil || ct.Reason != "target" {
		t.Fatalf("expected target exit, got %+v", ct)
	}
	if math.Abs(ct.PnL-(100-97.6)) > 1e-9 {
		t.Fatalf("pnl=%v, expected %v", ct.PnL, 100-97.6)
	}
}

func TestTrailingStopOnlyTightens(t *testing.T) {
	m := NewBracketManager()
	m.Open("BTC/USD", Bracket{
		Direction: strategy.DirectionLong, EntryPrice: 100, Quantity: 1,
		StopPrice: 98, TargetPrice: 110, RiskPerUnit: 2, TrailingDistance: 2,
	}, time.Now())

	// Price runs up: stop ratchets to high - trail = 104 - 2.
	if ct := m.OnCandle("BTC/USD", candle(100, 104, 99.9, 103)); ct != nil {
		t.Fatalf("position should survive the run-up, closed with %+v", ct)
	}
	pos := m.GetPosition("BTC/USD")
	if pos.StopPrice != 102 {
		t.Fatalf("trailed stop=%v, expected 102", pos.StopPrice)
	}

	// Pullback that stays above the new stop does not loosen it.
	if ct := m.OnCandle("BTC/USD", candle(103, 103.5, 102.1, 102.5)); ct != nil {
		t.Fatalf("position should survive the pullback, closed with %+v", ct)
	}
	if pos.StopPrice != 102 {
		t.Fatalf("stop loosened to %v", pos.StopPrice)
	}

	// Deeper pullback hits the trailed stop.
	ct := m.OnCandle("BTC/USD", candle(102.5, 102.6, 101.5, 101.6))
	if ct == nil {
		t.Fatal("expected a trailing-stop exit")
	}
	if ct.Reason != "trailing" {
		t.Fatalf("reason=%q, expected trailing", ct.Reason)
	}
	if ct.ExitPrice != 102 {
		t.Fatalf("exit=%v, expected 102", ct.ExitPrice)
	}
	if ct.PnL <= 0 {
		t.Fatalf("trailed exit above entry should be profitable, pnl=%v", ct.PnL)
	}
}
