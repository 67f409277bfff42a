// Package gc implements the retention-horizon sweep: periodic deletion of
// rows whose event timestamp has aged out.
package gc

import (
	"bytes"
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfkiwl/geo-backtracer/internal/keycodec"
	"github.com/mfkiwl/geo-backtracer/internal/metrics"
	"github.com/mfkiwl/geo-backtracer/internal/store"
	"github.com/mfkiwl/geo-backtracer/internal/zones"
)

// DefaultRetention is the default retention horizon.
const DefaultRetention = 14 * 24 * time.Hour

// DefaultInterval is the default sweep period.
const DefaultInterval = time.Hour

// Sweeper periodically deletes rows older than a retention horizon. It
// holds no state beyond its configuration and the Db it sweeps; GC is
// not on the critical path, so failures are logged and left for the next
// tick rather than retried inline.
type Sweeper struct {
	db        *store.Db
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger
}

// New builds a Sweeper with the given retention horizon and sweep
// interval. Zero values fall back to the spec defaults.
func New(db *store.Db, retention, interval time.Duration, log zerolog.Logger) *Sweeper {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{db: db, retention: retention, interval: interval, log: log.With().Str("component", "gc").Logger()}
}

// Run blocks, sweeping on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := s.Sweep(ctx, now); err != nil {
				s.log.Error().Err(err).Msg("gc sweep failed, will retry next tick")
			}
		}
	}
}

// Sweep deletes every row whose event timestamp is older than now minus
// the retention horizon. The timeline table's key prefix is timestamp_lo,
// so every row in a time zone before the horizon's zone is stale; inside
// the horizon's own zone rows are ordered by zones and user before
// timestamp_hi, so stale and fresh rows interleave there. The sweep walks
// forward from the beginning, skips fresh rows in the horizon's zone, and
// stops at the first row of a later zone.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer func() { metrics.GCSweepLatency.Observe(time.Since(start).Seconds()) }()

	horizon := now.Add(-s.retention).Unix()
	horizonZone := zones.TsToZone(horizon)

	it, err := s.db.TimelineIter()
	if err != nil {
		return err
	}
	defer it.Close()

	var stale []struct {
		timelineKey []byte
		userID      uint64
		tsZone      uint64
		longZone    float32
		latZone     float32
	}

	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		tKey, err := keycodec.DecodeTimelineKey(it.Key())
		if err != nil {
			return err
		}
		if int64(tKey.TimestampLo) > horizonZone {
			break
		}
		if tKey.Timestamp() >= horizon {
			continue
		}
		stale = append(stale, struct {
			timelineKey []byte
			userID      uint64
			tsZone      uint64
			longZone    float32
			latZone     float32
		}{
			timelineKey: bytes.Clone(it.Key()),
			userID:      tKey.UserID,
			tsZone:      tKey.TimestampLo,
			longZone:    tKey.LongZone,
			latZone:     tKey.LatZone,
		})
	}
	if err := it.Error(); err != nil {
		return err
	}

	deleted := 0
	for _, row := range stale {
		if err := s.db.DeleteTimeline(row.timelineKey); err != nil {
			return err
		}
		rKey := keycodec.ReverseKey{
			UserID:        row.userID,
			TimestampZone: row.tsZone,
			LongZone:      row.longZone,
			LatZone:       row.latZone,
		}
		if err := s.db.DeleteReverse(rKey.Encode()); err != nil {
			return err
		}
		deleted++
	}
	metrics.GCRowsDeleted.Add(float64(deleted))
	s.log.Debug().Int("rows_deleted", deleted).Msg("gc sweep complete")
	return nil
}
