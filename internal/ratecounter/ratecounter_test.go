package ratecounter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestRateSumsWithinWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000_000, 0)}
	c := New(clock.now)

	for i := 0; i < 60; i++ {
		clock.advance(time.Second)
		c.Add(10)
	}

	require.InDelta(t, 600, c.Rate(60*time.Second), 1)
}

func TestRateExcludesEventsOutsideWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000_000, 0)}
	c := New(clock.now)

	c.Add(100)
	clock.advance(2 * time.Minute)
	c.Add(5)

	require.InDelta(t, 5, c.Rate(60*time.Second), 1)
	require.InDelta(t, 105, c.Rate(time.Hour), 1)
}

func TestStatsReportsAllThreeWindows(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000_000, 0)}
	c := New(clock.now)
	c.Add(42)

	snap := c.Stats()
	require.InDelta(t, 42, snap.InsertRate60s, 0.001)
	require.InDelta(t, 42, snap.InsertRate10m, 0.001)
	require.InDelta(t, 42, snap.InsertRate1h, 0.001)
}
