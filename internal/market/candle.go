package market

import "time"

// Candle is one OHLC bar. Confirmed candles are immutable; an unconfirmed
// candle is still being built by the feed and must not drive decisions.
type Candle struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	OpenTime  time.Time
	CloseTime time.Time
	Confirmed bool
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool {
	return c.Close > c.Open
}

// Bearish reports whether the candle closed below its open.
func (c Candle) Bearish() bool {
	return c.Close < c.Open
}
