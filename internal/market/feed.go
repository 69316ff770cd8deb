package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Feed streams OHLC candles from the Kraken public websocket.
type Feed struct {
	URL    string
	dialer *websocket.Dialer
}

// NewFeed builds a websocket candle feed against the public endpoint.
func NewFeed() *Feed {
	return &Feed{
		URL:    "wss://ws.kraken.com",
		dialer: websocket.DefaultDialer,
	}
}

type subscribeMsg struct {
	Event        string   `json:"event"`
	Pair         []string `json:"pair"`
	Subscription struct {
		Name     string `json:"name"`
		Interval int    `json:"interval"`
	} `json:"subscription"`
}

// Subscribe listens to the ohlc stream for pair (e.g. "XBT/USD") and pushes
// candles into the returned channel. Kraken re-sends the in-progress bar on
// every trade; a bar is emitted as confirmed once a later bar begins, and the
// live bar is forwarded unconfirmed in between. It returns the channel and a
// stop function.
func (f *Feed) Subscribe(ctx context.Context, pair string, intervalMin int) (<-chan Candle, func(), error) {
	conn, _, err := f.dialer.DialContext(ctx, f.URL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial kraken ws: %w", err)
	}

	sub := subscribeMsg{Event: "subscribe", Pair: []string{pair}}
	sub.Subscription.Name = "ohlc"
	sub.Subscription.Interval = intervalMin
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("subscribe ohlc: %w", err)
	}

	out := make(chan Candle, 100)
	var once sync.Once
	// stop only tears down the connection; the reader goroutine owns out and
	// closes it on its way out, so stop can never race a send on out.
	stop := func() {
		once.Do(func() {
			// Ignore errors; connection may already be closed.
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		})
	}

	go func() {
		defer close(out)
		defer stop()
		var pending *Candle
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
					strings.Contains(err.Error(), "use of closed network connection") {
					return
				}
				log.Printf("kraken ws read error: %v", err)
				return
			}

			candle, ok, err := parseOHLCMessage(msg)
			if err != nil {
				log.Printf("kraken ws parse error: %v", err)
				continue
			}
			if !ok {
				continue // heartbeat / subscription status
			}

			// A new bar window means the pending bar is final.
			if pending != nil && candle.CloseTime.After(pending.CloseTime) {
				done := *pending
				done.Confirmed = true
				select {
				case out <- done:
				case <-ctx.Done():
					return
				}
				pending = nil
			}
			c := candle
			pending = &c
			select {
			case out <- candle:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, stop, nil
}

// parseOHLCMessage decodes a kraken ohlc payload:
// [channelID, [time, etime, open, high, low, close, vwap, volume, count], "ohlc-N", "PAIR"]
// Non-data messages (heartbeats, subscription acks) return ok=false.
func parseOHLCMessage(msg []byte) (Candle, bool, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		// Event objects (heartbeat, systemStatus, subscriptionStatus) are not arrays.
		return Candle{}, false, nil
	}
	if len(raw) < 4 {
		return Candle{}, false, nil
	}

	var fields []any
	if err := json.Unmarshal(raw[1], &fields); err != nil {
		return Candle{}, false, err
	}
	if len(fields) < 9 {
		return Candle{}, false, fmt.Errorf("ohlc payload has %d fields", len(fields))
	}

	start := toFloat(fields[0])
	end := toFloat(fields[1])
	return Candle{
		Open:      toFloat(fields[2]),
		High:      toFloat(fields[3]),
		Low:       toFloat(fields[4]),
		Close:     toFloat(fields[5]),
		OpenTime:  time.Unix(int64(start), 0),
		CloseTime: time.Unix(int64(end), 0),
	}, true, nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}
