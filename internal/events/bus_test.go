package events

import (
	"testing"
	"time"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe(EventTradeClosed, 1)
	defer cancel()

	b.Publish(EventTradeClosed, TradeClosedPayload{Symbol: "BTC/USD", PnL: 12})

	select {
	case got := <-ch:
		p, ok := got.(TradeClosedPayload)
		if !ok || p.Symbol != "BTC/USD" {
			t.Fatalf("payload=%v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("payload not delivered")
	}
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe(EventSignal, 1)
	defer cancel()

	b.Publish(EventSignal, 1)
	b.Publish(EventSignal, 2) // buffer full: dropped, not blocked

	if got := <-ch; got != 1 {
		t.Fatalf("first payload=%v, expected 1", got)
	}
	select {
	case got := <-ch:
		t.Fatalf("unexpected second payload %v", got)
	default:
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe(EventSignal, 1)
	cancel()

	if _, open := <-ch; open {
		t.Fatal("channel should be closed after cancel")
	}
	// Publishing after cancel must not panic on the closed channel.
	b.Publish(EventSignal, 1)
}
