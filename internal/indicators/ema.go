package indicators

// EMA computes an exponential moving average incrementally, one close per
// call. The first `period` values seed it with their simple average, matching
// the common charting convention.
type EMA struct {
	period int
	k      float64
	value  float64
	seen   int
	seed   float64
}

// NewEMA builds an EMA with smoothing factor 2/(period+1).
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		k:      2.0 / (float64(period) + 1.0),
	}
}

// Update ingests the next close and returns the current EMA value.
func (e *EMA) Update(close float64) float64 {
	e.seen++
	if e.seen <= e.period {
		e.seed += close
		e.value = e.seed / float64(e.seen)
		return e.value
	}
	e.value += e.k * (close - e.value)
	return e.value
}

// Ready reports whether the full seed window has been consumed.
func (e *EMA) Ready() bool {
	return e.seen >= e.period
}

// Value returns the current EMA without updating it.
func (e *EMA) Value() float64 {
	return e.value
}
