package relay

import (
	"testing"
	"time"
)

func TestIPLimitersSharePerIPBuckets(t *testing.T) {
	l := newIPLimiters(1, 1)

	if a, b := l.get("1.2.3.4"), l.get("1.2.3.4"); a != b {
		t.Fatal("same IP handed two different limiters")
	}
	if a, b := l.get("1.2.3.4"), l.get("5.6.7.8"); a == b {
		t.Fatal("distinct IPs share a limiter")
	}
}

func TestIPLimitersExpireLazilyOnAccess(t *testing.T) {
	l := newIPLimiters(1, 1)
	l.get("1.2.3.4")

	// Pretend the reset interval has elapsed; the next access wipes the map
	// without any background goroutine involved.
	l.lastReset = time.Now().Add(-2 * limiterResetInterval)
	l.get("5.6.7.8")

	if len(l.limiters) != 1 {
		t.Fatalf("map holds %d limiters after reset, expected 1", len(l.limiters))
	}
	if _, ok := l.limiters["1.2.3.4"]; ok {
		t.Fatal("idle IP survived the reset")
	}
}
