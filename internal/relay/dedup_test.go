package relay

import (
	"testing"
	"time"
)

func TestDeduperCatchesRepeatDelivery(t *testing.T) {
	d := NewDeduper(time.Minute)
	// Minute-aligned so the +70s retry lands exactly one bucket later.
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	body := []byte("symbol: BTC-USD; action: buy; amount: 25")

	if d.Seen(body, now) {
		t.Fatal("unmarked delivery flagged as duplicate")
	}
	d.Mark(body, now)
	if !d.Seen(body, now.Add(10*time.Second)) {
		t.Fatal("repeat within the window not flagged")
	}
	// A boundary-straddling retry still dedupes.
	if !d.Seen(body, now.Add(70*time.Second)) {
		t.Fatal("retry in the adjacent bucket not flagged")
	}
}

func TestDeduperSeenDoesNotRecord(t *testing.T) {
	d := NewDeduper(time.Minute)
	now := time.Now()
	body := []byte("symbol: BTC-USD; action: buy; amount: 25")

	// A failed delivery is checked but never marked; the retry must pass.
	if d.Seen(body, now) {
		t.Fatal("first check flagged as duplicate")
	}
	if d.Seen(body, now.Add(time.Second)) {
		t.Fatal("check alone must not record the body")
	}
}

func TestDeduperDistinguishesBodies(t *testing.T) {
	d := NewDeduper(time.Minute)
	now := time.Now()

	d.Mark([]byte("symbol: BTC-USD; amount: 25"), now)
	if d.Seen([]byte("symbol: BTC-USD; amount: 30"), now) {
		t.Fatal("different body flagged as duplicate")
	}
}

func TestDeduperExpires(t *testing.T) {
	d := NewDeduper(time.Minute)
	now := time.Now()
	body := []byte("symbol: BTC-USD; amount: 25")

	d.Mark(body, now)
	if d.Seen(body, now.Add(3*time.Minute)) {
		t.Fatal("stale entry should have expired")
	}
}
