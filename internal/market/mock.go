package market

import (
	"context"
	"math/rand"
	"time"
)

// MockFeed generates synthetic confirmed candles for local development.
type MockFeed struct {
	StartPrice float64
	Step       float64
	Interval   time.Duration
}

// Start emits one confirmed candle per interval on the returned channel until
// ctx is cancelled.
func (m *MockFeed) Start(ctx context.Context) <-chan Candle {
	price := m.StartPrice
	if price == 0 {
		price = 100.0
	}
	step := m.Step
	if step == 0 {
		step = 0.5
	}
	interval := m.Interval
	if interval == 0 {
		interval = time.Second
	}

	out := make(chan Candle, 16)
	go func() {
		defer close(out)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				// simple random walk
				open := price
				high := open
				low := open
				for i := 0; i < 4; i++ {
					price += (rand.Float64()*2 - 1) * step
					if price > high {
						high = price
					}
					if price < low {
						low = price
					}
				}
				out <- Candle{
					Open:      open,
					High:      high,
					Low:       low,
					Close:     price,
					OpenTime:  now.Add(-interval),
					CloseTime: now,
					Confirmed: true,
				}
			}
		}
	}()
	return out
}
