package indicators

import "math"

// ATR computes Wilder's Average True Range incrementally. The first `period`
// true ranges seed it with their simple mean, then Wilder smoothing applies:
// atr = (prev*(n-1) + tr) / n.
type ATR struct {
	period    int
	value     float64
	seen      int
	seed      float64
	prevClose float64
	hasPrev   bool
}

// NewATR builds an ATR over the given lookback.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Update ingests the next bar and returns the current ATR value.
func (a *ATR) Update(high, low, close float64) float64 {
	tr := high - low
	if a.hasPrev {
		tr = math.Max(tr, math.Max(math.Abs(high-a.prevClose), math.Abs(low-a.prevClose)))
	}
	a.prevClose = close
	a.hasPrev = true

	a.seen++
	if a.seen <= a.period {
		a.seed += tr
		a.value = a.seed / float64(a.seen)
		return a.value
	}
	a.value = (a.value*float64(a.period-1) + tr) / float64(a.period)
	return a.value
}

// Ready reports whether the full seed window has been consumed.
func (a *ATR) Ready() bool {
	return a.seen >= a.period
}

// Value returns the current ATR without updating it.
func (a *ATR) Value() float64 {
	return a.value
}
