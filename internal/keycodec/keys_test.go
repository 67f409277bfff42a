package keycodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimelineKeyRoundTrip(t *testing.T) {
	k := TimelineKey{
		TimestampLo: 1000,
		LongZone:    12.345,
		LatZone:     48.765,
		UserID:      42,
		TimestampHi: 500,
	}
	encoded := k.Encode()
	decoded, err := DecodeTimelineKey(encoded)
	require.NoError(t, err)
	require.Equal(t, k, decoded)

	again := k.Encode()
	require.Equal(t, encoded, again, "encoding must be stable across runs")
}

func TestTimelineKeyTimestamp(t *testing.T) {
	k := TimelineKey{TimestampLo: 1000, TimestampHi: 500}
	require.Equal(t, int64(1_000_500), k.Timestamp())
}

func TestTimelineValueRoundTrip(t *testing.T) {
	v := TimelineValue{Longitude: 12.345678, Latitude: 48.765432, Altitude: 100.5}
	decoded, err := DecodeTimelineValue(v.Encode())
	require.NoError(t, err)
	require.Equal(t, v, decoded)
}

func TestReverseKeyRoundTrip(t *testing.T) {
	k := ReverseKey{UserID: 7, TimestampZone: 1000, LongZone: 12.345, LatZone: 48.765}
	decoded, err := DecodeReverseKey(k.Encode())
	require.NoError(t, err)
	require.Equal(t, k, decoded)
}

func TestReverseValueRoundTrip(t *testing.T) {
	v := ReverseValue{LongZone: 12.345, LatZone: 48.765}
	decoded, err := DecodeReverseValue(v.Encode())
	require.NoError(t, err)
	require.Equal(t, v, decoded)
}

func TestUnknownTagIsSkipped(t *testing.T) {
	w := NewWriter(16)
	w.PutUint64(200, 999) // a tag no current struct uses
	w.PutUint64(tagRevUserID, 7)
	w.PutUint64(tagRevTsZone, 1000)
	w.PutFloat32(tagRevLongZone, 12.345)
	w.PutFloat32(tagRevLatZone, 48.765)

	decoded, err := DecodeReverseKey(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, ReverseKey{UserID: 7, TimestampZone: 1000, LongZone: 12.345, LatZone: 48.765}, decoded)
}

func TestTruncatedRecordIsSerializationError(t *testing.T) {
	_, err := DecodeTimelineKey([]byte{0x02}) // tag byte claiming a bytes field (tag 0), no length prefix
	require.Error(t, err)
}
