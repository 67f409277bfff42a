// Package store owns the two on-disk tables — the byte-ordering
// comparators that give them their shape, and the Pebble handles that hold
// them open for the lifetime of a worker process.
package store

import (
	"github.com/cockroachdb/pebble"

	"github.com/mfkiwl/geo-backtracer/internal/keycodec"
)

// FloatEpsilon is the float-equality tolerance the comparators use when
// deciding whether two zone values are "the same", mirroring the reference
// schema's comparator epsilon (1e-7).
const FloatEpsilon float32 = 0.0000001

// TimelineComparatorName is the frozen identity of the timeline table's
// byte order. Changing the comparison logic below without bumping this
// name corrupts every existing database silently.
const TimelineComparatorName = "timeline-comparator-0.1"

// ReverseComparatorName is the frozen identity of the by-user table's byte
// order. Same corruption hazard as TimelineComparatorName.
const ReverseComparatorName = "reverse-comparator-0.1"

// compareDescendingWithEps implements the reference schema's somewhat
// unusual convention for ordering zone floats: equal within FloatEpsilon,
// and otherwise DESCENDING by magnitude (the larger value sorts first).
// This is preserved exactly because it is now part of a frozen, persisted
// byte order — see the Open Question note in DESIGN.md.
func compareDescendingWithEps(a, b float32) int {
	diff := a - b
	if diff > FloatEpsilon {
		return -1
	}
	if diff < -FloatEpsilon {
		return 1
	}
	return 0
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareTimelineKeys orders by (timestamp_lo asc, long_zone desc-eps,
// lat_zone desc-eps, user_id asc, timestamp_hi asc). It is the single
// source of truth backing TimelineComparer, and is exported so any
// in-memory sorting of timeline rows can agree with on-disk order.
func CompareTimelineKeys(a, b keycodec.TimelineKey) int {
	if c := compareUint64(a.TimestampLo, b.TimestampLo); c != 0 {
		return c
	}
	if c := compareDescendingWithEps(a.LongZone, b.LongZone); c != 0 {
		return c
	}
	if c := compareDescendingWithEps(a.LatZone, b.LatZone); c != 0 {
		return c
	}
	if c := compareUint64(a.UserID, b.UserID); c != 0 {
		return c
	}
	return compareUint64(a.TimestampHi, b.TimestampHi)
}

// CompareReverseKeys orders by (user_id asc, timestamp_zone asc,
// long_zone desc-eps, lat_zone desc-eps).
func CompareReverseKeys(a, b keycodec.ReverseKey) int {
	if c := compareUint64(a.UserID, b.UserID); c != 0 {
		return c
	}
	if c := compareUint64(a.TimestampZone, b.TimestampZone); c != 0 {
		return c
	}
	if c := compareDescendingWithEps(a.LongZone, b.LongZone); c != 0 {
		return c
	}
	return compareDescendingWithEps(a.LatZone, b.LatZone)
}

func mustDecodeTimelineKey(raw []byte) keycodec.TimelineKey {
	k, err := keycodec.DecodeTimelineKey(raw)
	if err != nil {
		// A Pebble comparator has no error return; a corrupt key here means
		// the database itself is corrupt, which we can't recover from
		// mid-comparison. A corrupt key is compared as the zero key, so
		// all corrupt keys compare equal to each other and to the zero
		// key, and comparison never panics.
		return keycodec.TimelineKey{}
	}
	return k
}

func mustDecodeReverseKey(raw []byte) keycodec.ReverseKey {
	k, err := keycodec.DecodeReverseKey(raw)
	if err != nil {
		return keycodec.ReverseKey{}
	}
	return k
}

// newComparer builds a pebble.Comparer for the given ordering, reusing
// Pebble's default implementations for every concern orthogonal to key
// ordering (abbreviation, key formatting, successor/separator generation
// used by compaction). Only Compare, Equal and Name encode this schema's
// semantics.
func newComparer(name string, compare func(a, b []byte) int) *pebble.Comparer {
	c := *pebble.DefaultComparer
	c.Compare = compare
	c.Equal = func(a, b []byte) bool { return compare(a, b) == 0 }
	c.Name = name
	return &c
}

// TimelineComparer is registered on the by-timeline Pebble handle.
var TimelineComparer = newComparer(TimelineComparatorName, func(a, b []byte) int {
	return CompareTimelineKeys(mustDecodeTimelineKey(a), mustDecodeTimelineKey(b))
})

// ReverseComparer is registered on the by-user Pebble handle.
var ReverseComparer = newComparer(ReverseComparatorName, func(a, b []byte) int {
	return CompareReverseKeys(mustDecodeReverseKey(a), mustDecodeReverseKey(b))
})
