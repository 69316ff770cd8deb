package relay

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Deduper guards against at-least-once delivery of the same alert producing
// duplicate orders. An alert is keyed by the hash of its body plus a coarse
// time bucket; a repeat inside the window is acknowledged without acting.
type Deduper struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]int64 // key -> bucket it was first seen in
}

// NewDeduper creates a deduper with the given bucket window. Zero or negative
// windows default to one minute.
func NewDeduper(window time.Duration) *Deduper {
	if window <= 0 {
		window = time.Minute
	}
	return &Deduper{
		window: window,
		seen:   make(map[string]int64),
	}
}

// Seen reports whether the body was already delivered in the current or
// previous bucket. The previous bucket is included so a retry straddling a
// boundary still dedupes. It does not record the body; a delivery is entered
// with Mark only once it has been acted on, so a failed attempt never blocks
// the sender's retry.
func (d *Deduper) Seen(body []byte, now time.Time) bool {
	digest := bodyDigest(body)
	bucket := now.UnixNano() / int64(d.window)

	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.seen[digest]
	return ok && bucket-b <= 1
}

// Mark records the body for the bucket containing now.
func (d *Deduper) Mark(body []byte, now time.Time) {
	digest := bodyDigest(body)
	bucket := now.UnixNano() / int64(d.window)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[digest] = bucket

	// Drop stale entries so the map stays bounded.
	for k, b := range d.seen {
		if bucket-b > 1 {
			delete(d.seen, k)
		}
	}
}

func bodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:16])
}
