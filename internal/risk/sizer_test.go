package risk

import (
	"math"
	"testing"

	"trend-relay/internal/strategy"
)

func TestSizeLongBracket(t *testing.T) {
	p := Parameters{
		RiskPct:         1.0,
		ATRMult:         1.0,
		MinStopDistance: 0.5,
		RewardRisk:      1.2,
		TrailingEnabled: true,
		TrailingATRMult: 1.0,
	}

	b, ok := Size(strategy.DirectionLong, 100, 2, 10000, p)
	if !ok {
		t.Fatal("expected a sized bracket")
	}
	if b.StopPrice != 98 {
		t.Fatalf("stop=%v, expected 98", b.StopPrice)
	}
	if b.RiskPerUnit != 2 {
		t.Fatalf("riskPerUnit=%v, expected 2", b.RiskPerUnit)
	}
	// target - entry = rr * (entry - stop)
	if got, want := b.TargetPrice-100, 1.2*(100-b.StopPrice); math.Abs(got-want) > 1e-9 {
		t.Fatalf("target offset=%v, expected %v", got, want)
	}
	// qty = equity*riskPct/100 / riskPerUnit = 100/2
	if b.Quantity != 50 {
		t.Fatalf("quantity=%v, expected 50", b.Quantity)
	}
	if b.TrailingDistance != 2 {
		t.Fatalf("trailingDistance=%v, expected 2", b.TrailingDistance)
	}
}

func TestSizeShortBracketMirrors(t *testing.T) {
	p := DefaultParameters()
	p.TrailingEnabled = false

	b, ok := Size(strategy.DirectionShort, 100, 2, 5000, p)
	if !ok {
		t.Fatal("expected a sized bracket")
	}
	if b.StopPrice != 102 {
		t.Fatalf("stop=%v, expected 102", b.StopPrice)
	}
	// entry - target = rr * (stop - entry)
	if got, want := 100-b.TargetPrice, p.RewardRisk*(b.StopPrice-100); math.Abs(got-want) > 1e-9 {
		t.Fatalf("target offset=%v, expected %v", got, want)
	}
	if b.TrailingDistance != 0 {
		t.Fatalf("trailingDistance=%v, expected 0 when trailing disabled", b.TrailingDistance)
	}
}

func TestSizeStopDistanceFloor(t *testing.T) {
	p := DefaultParameters()

	tests := []struct {
		name    string
		atr     float64
		atrMult float64
		minStop float64
		want    float64
	}{
		{"atr dominates", 2.0, 1.5, 0.5, 3.0},
		{"floor dominates", 0.1, 1.0, 0.5, 0.5},
		{"zero atr", 0, 1.0, 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.ATRMult = tt.atrMult
			p.MinStopDistance = tt.minStop
			b, ok := Size(strategy.DirectionLong, 100, tt.atr, 1000, p)
			if !ok {
				t.Fatal("expected a sized bracket")
			}
			if got := 100 - b.StopPrice; math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("stopDistance=%v, expected %v", got, tt.want)
			}
		})
	}
}

func TestSizeMonotonicity(t *testing.T) {
	p := DefaultParameters()

	base, _ := Size(strategy.DirectionLong, 100, 2, 1000, p)
	moreEquity, _ := Size(strategy.DirectionLong, 100, 2, 2000, p)
	if moreEquity.Quantity <= base.Quantity {
		t.Fatalf("quantity should grow with equity: %v -> %v", base.Quantity, moreEquity.Quantity)
	}

	p2 := p
	p2.RiskPct = 2.0
	moreRisk, _ := Size(strategy.DirectionLong, 100, 2, 1000, p2)
	if moreRisk.Quantity <= base.Quantity {
		t.Fatalf("quantity should grow with riskPct: %v -> %v", base.Quantity, moreRisk.Quantity)
	}

	widerStop, _ := Size(strategy.DirectionLong, 100, 4, 1000, p)
	if widerStop.Quantity >= base.Quantity {
		t.Fatalf("quantity should shrink as riskPerUnit grows: %v -> %v", base.Quantity, widerStop.Quantity)
	}
}

func TestSizeSkips(t *testing.T) {
	p := DefaultParameters()

	if _, ok := Size(strategy.DirectionNone, 100, 2, 1000, p); ok {
		t.Fatal("no direction should not size")
	}
	if _, ok := Size(strategy.DirectionLong, 100, 2, 0, p); ok {
		t.Fatal("zero equity should not size")
	}
	degenerate := p
	degenerate.ATRMult = 0
	degenerate.MinStopDistance = 0
	if _, ok := Size(strategy.DirectionLong, 100, 0, 1000, degenerate); ok {
		t.Fatal("zero stop distance should not size")
	}
}
