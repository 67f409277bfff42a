// Package seeker implements the read path: per-user timeline
// reconstruction and the nearby-folk correlation scan.
package seeker

import (
	"context"
	"sort"
	"time"

	"github.com/mfkiwl/geo-backtracer/internal/keycodec"
	"github.com/mfkiwl/geo-backtracer/internal/metrics"
	"github.com/mfkiwl/geo-backtracer/internal/store"
	"github.com/mfkiwl/geo-backtracer/internal/zones"
)

// TimelinePoint is one reconstructed sample on a user's timeline.
type TimelinePoint struct {
	Timestamp int64
	Longitude float32
	Latitude  float32
	Altitude  float32
}

// FolkScore is one correlation result: another user and how many
// co-present (user entry, folk entry) pairs were counted.
type FolkScore struct {
	UserID uint64
	Score  int
}

// Entry is a materialized timeline row, carrying both its owner and its
// exact coordinates. It is the unit a block is built from during the
// nearby-folk scan, and the unit exchanged across the mixer/worker
// InternalBuildBlockForUser boundary.
type Entry struct {
	UserID    uint64
	Timestamp int64
	Longitude float32
	Latitude  float32
	Altitude  float32
}

// Seeker answers read queries against a worker's tables.
type Seeker struct {
	db           *store.Db
	matchMinutes int
}

// New builds a Seeker reading from db. matchMinutes is the minimum
// co-presence score required for a folk to be reported; zero falls back
// to zones.MatchMinutesDefault.
func New(db *store.Db, matchMinutes int) *Seeker {
	if matchMinutes <= 0 {
		matchMinutes = zones.MatchMinutesDefault
	}
	return &Seeker{db: db, matchMinutes: matchMinutes}
}

// timelineKeyCell is one of BuildTimelineKeysForUser's results: a
// timeline key whose cell needs walking, decoded enough to drive the
// end-of-cell conditions in GetUserTimeline.
type timelineKeyCell struct {
	key     keycodec.TimelineKey
	encoded []byte
}

// BuildTimelineKeysForUser scans the reverse table for userID's rows and
// emits one timeline key per reverse row.
func (s *Seeker) BuildTimelineKeysForUser(userID uint64) ([]timelineKeyCell, error) {
	prefix := keycodec.ReverseKey{UserID: userID}.Encode()

	it, err := s.db.ReverseIter()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var cells []timelineKeyCell
	for it.SeekGE(prefix); it.Valid(); it.Next() {
		rKey, err := keycodec.DecodeReverseKey(it.Key())
		if err != nil {
			return nil, err
		}
		if rKey.UserID != userID {
			break
		}
		tKey := keycodec.TimelineKey{
			TimestampLo: rKey.TimestampZone,
			LongZone:    rKey.LongZone,
			LatZone:     rKey.LatZone,
			UserID:      userID,
		}
		cells = append(cells, timelineKeyCell{key: tKey, encoded: tKey.Encode()})
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return cells, nil
}

// GetUserTimeline reconstructs every sample belonging to userID, ordered
// by timestamp.
func (s *Seeker) GetUserTimeline(ctx context.Context, userID uint64) ([]TimelinePoint, error) {
	start := time.Now()
	defer func() { metrics.SeekerQueryLatency.WithLabelValues("GetUserTimeline").Observe(time.Since(start).Seconds()) }()

	cells, err := s.BuildTimelineKeysForUser(userID)
	if err != nil {
		return nil, err
	}

	var points []TimelinePoint
	for _, cell := range cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cellPoints, err := s.walkCell(cell.key, cell.encoded, userID)
		if err != nil {
			return nil, err
		}
		points = append(points, cellPoints...)
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Timestamp != points[j].Timestamp {
			return points[i].Timestamp < points[j].Timestamp
		}
		if points[i].Longitude != points[j].Longitude {
			return points[i].Longitude < points[j].Longitude
		}
		if points[i].Latitude != points[j].Latitude {
			return points[i].Latitude < points[j].Latitude
		}
		return points[i].Altitude < points[j].Altitude
	})
	return points, nil
}

// walkCell seeks the timeline table to key and walks forward collecting
// rows belonging to userID, stopping at the first end-of-cell condition.
func (s *Seeker) walkCell(key keycodec.TimelineKey, encoded []byte, userID uint64) ([]TimelinePoint, error) {
	it, err := s.db.TimelineIter()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	cellEnd := key.Timestamp() + zones.TimePrecision

	var points []TimelinePoint
	for it.SeekGE(encoded); it.Valid(); it.Next() {
		rowKey, err := keycodec.DecodeTimelineKey(it.Key())
		if err != nil {
			return nil, err
		}
		if rowKey.Timestamp() > cellEnd || !zonesEqual(rowKey.LongZone, key.LongZone) ||
			!zonesEqual(rowKey.LatZone, key.LatZone) || rowKey.UserID != userID {
			break
		}
		raw, err := s.db.GetTimelineValue(it.Key())
		if err != nil {
			return nil, err
		}
		val, err := keycodec.DecodeTimelineValue(raw)
		if err != nil {
			return nil, err
		}
		points = append(points, TimelinePoint{
			Timestamp: rowKey.Timestamp(),
			Longitude: val.Longitude,
			Latitude:  val.Latitude,
			Altitude:  val.Altitude,
		})
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return points, nil
}

func zonesEqual(a, b float32) bool {
	d := a - b
	return d < store.FloatEpsilon && d > -store.FloatEpsilon
}

// probeTimeZones and probeGPSZones return the zone (or zones, if near a
// border) to search for a raw coordinate; the cross product of their
// results is the full probe set for one point.
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

// Block is the materialized content of one probed cell: the target
// user's own entries, and every other user's entries observed in the
// same cell. It is also the unit exchanged across the mixer/worker RPC
// boundary for InternalBuildBlockForUser.
type Block struct {
	UserEntries []Entry
	FolkEntries []Entry
	Found       bool
}

// BuildLogicalBlock materializes the block for the cell identified by
// (tsZone, longZone, latZone) (zone coordinates, not raw coordinates),
// splitting rows into the
// target user's own entries and every other user's entries observed in
// the same cell.
func (s *Seeker) BuildLogicalBlock(tsZone int64, longZone, latZone float32, targetUser uint64) (Block, error) {
	lo := keycodec.TimelineKey{TimestampLo: uint64(tsZone), LongZone: longZone, LatZone: latZone}.Encode()

	it, err := s.db.TimelineIter()
	if err != nil {
		return Block{}, err
	}
	defer it.Close()

	seen := make(map[string]struct{})
	var block Block
	for it.SeekGE(lo); it.Valid(); it.Next() {
		rowKey, err := keycodec.DecodeTimelineKey(it.Key())
		if err != nil {
			return Block{}, err
		}
		if rowKey.TimestampLo != uint64(tsZone) || !zonesEqual(rowKey.LongZone, longZone) || !zonesEqual(rowKey.LatZone, latZone) {
			break
		}
		dedupeKey := string(it.Key())
		if _, ok := seen[dedupeKey]; ok {
			continue
		}
		seen[dedupeKey] = struct{}{}

		raw, err := s.db.GetTimelineValue(it.Key())
		if err != nil {
			return Block{}, err
		}
		val, err := keycodec.DecodeTimelineValue(raw)
		if err != nil {
			return Block{}, err
		}
		e := Entry{
			UserID:    rowKey.UserID,
			Timestamp: rowKey.Timestamp(),
			Longitude: val.Longitude,
			Latitude:  val.Latitude,
			Altitude:  val.Altitude,
		}
		block.Found = true
		if rowKey.UserID == targetUser {
			block.UserEntries = append(block.UserEntries, e)
		} else {
			block.FolkEntries = append(block.FolkEntries, e)
		}
	}
	if err := it.Error(); err != nil {
		return Block{}, err
	}
	return block, nil
}

// IsNearbyFolk is the co-presence predicate: two entries count as
// co-present iff every one of their (time, longitude, latitude, altitude)
// deltas falls within its configured near-threshold.
func IsNearbyFolk(u, f Entry) bool {
	dt := u.Timestamp - f.Timestamp
	if dt < 0 {
		dt = -dt
	}
	if dt > zones.TimeNearEps {
		return false
	}
	if absf32(u.Longitude-f.Longitude) > zones.GPSNearEps {
		return false
	}
	if absf32(u.Latitude-f.Latitude) > zones.GPSNearEps {
		return false
	}
	if absf32(u.Altitude-f.Altitude) > zones.AltitudeNearEps {
		return false
	}
	return true
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// GetUserNearbyFolks runs the correlation scan: for every point on the
// user's own timeline, probe up to eight surrounding cells, materialize
// each as a block, and score every (user entry, folk entry) pair that
// satisfies IsNearbyFolk. Folks whose total score reaches the configured
// match-minutes threshold are returned.
func (s *Seeker) GetUserNearbyFolks(ctx context.Context, userID uint64) ([]FolkScore, error) {
	start := time.Now()
	defer func() {
		metrics.SeekerQueryLatency.WithLabelValues("GetUserNearbyFolks").Observe(time.Since(start).Seconds())
	}()

	points, err := s.GetUserTimeline(ctx, userID)
	if err != nil {
		return nil, err
	}

	scores := make(map[uint64]int)
	probed := make(map[[3]int64]struct{})

	for _, p := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, tz := range probeTimeZones(p.Timestamp) {
			for _, lz := range probeGPSZones(p.Longitude) {
				for _, az := range probeGPSZones(p.Latitude) {
					cellID := [3]int64{tz, int64(lz * zones.GPSZonePrecision), int64(az * zones.GPSZonePrecision)}
					if _, done := probed[cellID]; done {
						continue
					}
					probed[cellID] = struct{}{}

					block, err := s.BuildLogicalBlock(tz, lz, az, userID)
					if err != nil {
						return nil, err
					}
					if !block.Found {
						continue
					}
					for _, u := range block.UserEntries {
						for _, f := range block.FolkEntries {
							if IsNearbyFolk(u, f) {
								scores[f.UserID]++
							}
						}
					}
				}
			}
		}
	}

	var out []FolkScore
	for folk, score := range scores {
		if score >= s.matchMinutes {
			out = append(out, FolkScore{UserID: folk, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
