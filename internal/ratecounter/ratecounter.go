// Package ratecounter implements the mixer's sliding-window insert-rate
// tracker backing GetMixerStats. The bucketing scheme below is built with
// the same mutex-protected-struct idiom used elsewhere in this tree for
// small pieces of shared mutable state.
package ratecounter

import (
	"sync"
	"time"
)

// bucketWidth is the resolution of the underlying ring buffer; windows
// are reported as a sum over however many buckets they span.
const bucketWidth = time.Second

// numBuckets covers the longest reported window (1 hour) with headroom.
const numBuckets = int(time.Hour/bucketWidth) + 1

// Counter tracks insert counts in a ring of per-second buckets, letting
// callers ask "how many inserts in the last N" for arbitrary N up to the
// ring's span without keeping a raw event log.
type Counter struct {
	mu        sync.Mutex
	buckets   [numBuckets]int64
	bucketEnd [numBuckets]int64 // unix-second end time each bucket was last attributed to
	now       func() time.Time
}

// New builds an empty Counter. nowFn overrides the clock for tests; pass
// nil in production to use time.Now.
func New(nowFn func() time.Time) *Counter {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Counter{now: nowFn}
}

func (c *Counter) slot(t int64) int {
	idx := int(t % int64(numBuckets))
	if idx < 0 {
		idx += numBuckets
	}
	return idx
}

// Add records n inserts at the current time.
func (c *Counter) Add(n int64) {
	t := c.now().Unix()
	idx := c.slot(t)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bucketEnd[idx] != t {
		c.buckets[idx] = 0
		c.bucketEnd[idx] = t
	}
	c.buckets[idx] += n
}

// Rate returns the total insert count observed in the trailing window
// ending now. Despite the name, this is a raw window total rather than a
// per-second average; callers wanting an average can divide by the window.
func (c *Counter) Rate(window time.Duration) float64 {
	now := c.now().Unix()
	span := int64(window / bucketWidth)
	if span <= 0 {
		span = 1
	}
	if span > int64(numBuckets) {
		span = int64(numBuckets)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for i := int64(0); i < span; i++ {
		t := now - i
		idx := c.slot(t)
		if c.bucketEnd[idx] == t {
			total += c.buckets[idx]
		}
	}
	return float64(total)
}

// Snapshot is the trio of windows GetMixerStats reports.
type Snapshot struct {
	InsertRate60s float64
	InsertRate10m float64
	InsertRate1h  float64
}

// Stats reports the standard three-window snapshot.
func (c *Counter) Stats() Snapshot {
	return Snapshot{
		InsertRate60s: c.Rate(60 * time.Second),
		InsertRate10m: c.Rate(10 * time.Minute),
		InsertRate1h:  c.Rate(time.Hour),
	}
}
