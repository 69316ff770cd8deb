package strategy

import (
	"trend-relay/internal/indicators"
	"trend-relay/internal/market"
)

// Params configures the reversal detector.
type Params struct {
	FastEMA         int     `yaml:"fast_ema"`
	SlowEMA         int     `yaml:"slow_ema"`
	ATRPeriod       int     `yaml:"atr_period"`
	ATRMinWindow    int     `yaml:"atr_min_window"`
	VolatilityRatio float64 `yaml:"volatility_ratio"`
}

// DefaultParams mirrors the chart-strategy defaults: EMA 9/21, ATR(14) with a
// 14-bar minimum window and a 1.1x volatility gate.
func DefaultParams() Params {
	return Params{
		FastEMA:         9,
		SlowEMA:         21,
		ATRPeriod:       14,
		ATRMinWindow:    14,
		VolatilityRatio: 1.1,
	}
}

// Detector evaluates confirmed candles for trend-reversal entries. A long
// fires when the fast EMA crosses above the slow EMA on a bullish candle with
// ATR above the gate; a short mirrors it. The detector owns its indicator
// state and updates it in O(1) per candle.
type Detector struct {
	params Params

	fast   *indicators.EMA
	slow   *indicators.EMA
	atr    *indicators.ATR
	atrMin *indicators.RollingMin

	prevFast float64
	prevSlow float64
	primed   bool
}

// NewDetector builds a detector with fresh indicator state.
func NewDetector(p Params) *Detector {
	return &Detector{
		params: p,
		fast:   indicators.NewEMA(p.FastEMA),
		slow:   indicators.NewEMA(p.SlowEMA),
		atr:    indicators.NewATR(p.ATRPeriod),
		atrMin: indicators.NewRollingMin(p.ATRMinWindow),
	}
}

// ATR returns the current ATR value, used by sizing.
func (d *Detector) ATR() float64 {
	return d.atr.Value()
}

// OnCandle updates indicator state with a confirmed candle and returns a
// signal, or nil when no entry condition holds. Unconfirmed candles are
// ignored entirely: their values can still change.
func (d *Detector) OnCandle(c market.Candle) *Signal {
	if !c.Confirmed {
		return nil
	}

	fast := d.fast.Update(c.Close)
	slow := d.slow.Update(c.Close)
	atr := d.atr.Update(c.High, c.Low, c.Close)
	atrFloor := d.atrMin.Update(atr)

	defer func() {
		d.prevFast = fast
		d.prevSlow = slow
		d.primed = true
	}()

	if !d.primed || !d.slow.Ready() || !d.atr.Ready() {
		return nil
	}

	crossedOver := d.prevFast <= d.prevSlow && fast > slow
	crossedUnder := d.prevFast >= d.prevSlow && fast < slow
	volatilityOK := atr > atrFloor*d.params.VolatilityRatio

	if crossedOver && c.Bullish() && volatilityOK {
		return &Signal{Direction: DirectionLong, Price: c.Close, Time: c.CloseTime}
	}
	if crossedUnder && c.Bearish() && volatilityOK {
		return &Signal{Direction: DirectionShort, Price: c.Close, Time: c.CloseTime}
	}
	return nil
}
