package store

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfkiwl/geo-backtracer/internal/keycodec"
)

func TestCompareTimelineKeysOrdersByTimestampFirst(t *testing.T) {
	early := keycodec.TimelineKey{TimestampLo: 100, UserID: 5}
	late := keycodec.TimelineKey{TimestampLo: 200, UserID: 1}
	require.Negative(t, CompareTimelineKeys(early, late))
	require.Positive(t, CompareTimelineKeys(late, early))
}

func TestCompareTimelineKeysZonesAreDescending(t *testing.T) {
	bigZone := keycodec.TimelineKey{TimestampLo: 100, LongZone: 50}
	smallZone := keycodec.TimelineKey{TimestampLo: 100, LongZone: 10}
	require.Negative(t, CompareTimelineKeys(bigZone, smallZone), "larger long_zone must sort first")
}

func TestCompareTimelineKeysWithinEpsilonIsEqualOnThatField(t *testing.T) {
	a := keycodec.TimelineKey{TimestampLo: 100, LongZone: 10, UserID: 1}
	b := keycodec.TimelineKey{TimestampLo: 100, LongZone: 10 + FloatEpsilon/2, UserID: 2}
	require.Negative(t, CompareTimelineKeys(a, b), "tie-break must fall through to user_id")
}

func TestTimelineComparerMatchesEncodedBytes(t *testing.T) {
	keys := []keycodec.TimelineKey{
		{TimestampLo: 5, LongZone: 1, LatZone: 1, UserID: 9},
		{TimestampLo: 1, LongZone: 9, LatZone: 1, UserID: 1},
		{TimestampLo: 1, LongZone: 1, LatZone: 9, UserID: 1},
		{TimestampLo: 1, LongZone: 1, LatZone: 1, UserID: 1},
		{TimestampLo: 1, LongZone: 1, LatZone: 1, UserID: 2},
	}
	encoded := make([][]byte, len(keys))
	for i, k := range keys {
		encoded[i] = k.Encode()
	}

	expected := make([]int, len(keys))
	for i := range expected {
		expected[i] = i
	}
	sort.Slice(expected, func(i, j int) bool {
		return CompareTimelineKeys(keys[expected[i]], keys[expected[j]]) < 0
	})

	actual := make([]int, len(keys))
	for i := range actual {
		actual[i] = i
	}
	sort.Slice(actual, func(i, j int) bool {
		return TimelineComparer.Compare(encoded[actual[i]], encoded[actual[j]]) < 0
	})

	require.Equal(t, expected, actual)
}

func TestReverseComparerOrdersByUserThenTime(t *testing.T) {
	a := keycodec.ReverseKey{UserID: 1, TimestampZone: 100}
	b := keycodec.ReverseKey{UserID: 1, TimestampZone: 200}
	c := keycodec.ReverseKey{UserID: 2, TimestampZone: 50}
	require.Negative(t, ReverseComparer.Compare(a.Encode(), b.Encode()))
	require.Negative(t, ReverseComparer.Compare(b.Encode(), c.Encode()))
}

func TestComparerNamesAreFrozen(t *testing.T) {
	require.Equal(t, "timeline-comparator-0.1", TimelineComparer.Name)
	require.Equal(t, "reverse-comparator-0.1", ReverseComparer.Name)
}
