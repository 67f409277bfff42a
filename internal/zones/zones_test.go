package zones

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTsToZone(t *testing.T) {
	require.Equal(t, int64(1000), TsToZone(1_000_500))
	require.Equal(t, int64(1001), TsNextZone(1_000_500))
	require.Equal(t, int64(999), TsPrevZone(1_000_500))
	require.Equal(t, int64(0), TsPrevZone(500))
}

func TestTsIsNearZone(t *testing.T) {
	require.Equal(t, Next, TsIsNearZone(1_000_990))
	require.Equal(t, Previous, TsIsNearZone(1_001_005))
	require.Equal(t, None, TsIsNearZone(1_000_500))
}

func TestGPSToZone(t *testing.T) {
	require.InDelta(t, 12.345, GPSToZone(12.345678), 1e-6)
	require.InDelta(t, 12.346, GPSNextZone(12.345678), 1e-6)
	require.InDelta(t, 12.344, GPSPrevZone(12.345678), 1e-6)
}

func TestGPSIsNearZone(t *testing.T) {
	require.Equal(t, None, GPSIsNearZone(12.345500))
	require.NotEqual(t, None, GPSIsNearZone(12.345000))
	require.NotEqual(t, None, GPSIsNearZone(12.345999))
}
