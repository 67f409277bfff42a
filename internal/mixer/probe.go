package mixer

import "github.com/mfkiwl/geo-backtracer/internal/zones"

// probeTimeZones and probeGPSZones build the same near-border probe set
// internal/seeker's GetUserNearbyFolks uses, so the mixer can ask each
// shard about exactly the cells a single-shard seeker would have walked
// itself.
func probeTimeZones(t int64) []int64 {
	zs := []int64{zones.TsToZone(t)}
	switch zones.TsIsNearZone(t) {
	case zones.Previous:
		zs = append(zs, zones.TsPrevZone(t))
	case zones.Next:
		zs = append(zs, zones.TsNextZone(t))
	}
	return zs
}

func probeGPSZones(x float32) []float32 {
	zs := []float32{zones.GPSToZone(x)}
	switch zones.GPSIsNearZone(x) {
	case zones.Previous:
		zs = append(zs, zones.GPSPrevZone(x))
	case zones.Next:
		zs = append(zs, zones.GPSNextZone(x))
	}
	return zs
}
