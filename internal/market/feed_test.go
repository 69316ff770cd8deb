package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// ohlcServer upgrades the connection, swallows the subscribe message, floods
// n one-minute bars, then holds the connection open until the client closes.
func ohlcServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		for i := 0; i < n; i++ {
			msg := fmt.Sprintf(`[42,["%d","%d","100","101","99","100.5","100","1","5"],"ohlc-1","XBT/USD"]`,
				i*60, (i+1)*60)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestFeedConfirmsBarWhenNextBarBegins(t *testing.T) {
	srv := ohlcServer(t, 3)
	defer srv.Close()

	f := NewFeed()
	f.URL = "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, stop, err := f.Subscribe(ctx, "XBT/USD", 1)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stop()

	// First message is the live bar, unconfirmed; the second bar's arrival
	// confirms it.
	first, ok := <-out
	if !ok {
		t.Fatal("channel closed before the first bar")
	}
	if first.Confirmed {
		t.Fatal("live bar arrived confirmed")
	}
	for c := range out {
		if c.Confirmed {
			if !c.CloseTime.Equal(first.CloseTime) {
				t.Fatalf("confirmed bar closes at %v, expected %v", c.CloseTime, first.CloseTime)
			}
			return
		}
	}
	t.Fatal("no bar was ever confirmed")
}

func TestFeedStopAfterConsumerGone(t *testing.T) {
	// Enough bars to fill the channel buffer and park the reader in a send.
	srv := ohlcServer(t, 300)
	defer srv.Close()

	f := NewFeed()
	f.URL = "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, stop, err := f.Subscribe(ctx, "XBT/USD", 1)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Take one candle, then stop while the reader is still producing, like a
	// consumer that exited before the shutdown hook ran.
	<-out
	time.Sleep(50 * time.Millisecond)
	stop()

	// Draining unblocks the reader; it exits on the closed connection and
	// closes the channel itself, never panicking on a send.
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("candle channel never closed after stop")
		}
	}
}
