// Package ingest implements the write path: accepting batches of GPS
// samples and turning each into a paired timeline/reverse row.
package ingest

import (
	"bytes"
	"context"
	"time"

	"github.com/mfkiwl/geo-backtracer/internal/btstatus"
	"github.com/mfkiwl/geo-backtracer/internal/keycodec"
	"github.com/mfkiwl/geo-backtracer/internal/metrics"
	"github.com/mfkiwl/geo-backtracer/internal/store"
	"github.com/mfkiwl/geo-backtracer/internal/zones"
)

// Sample is one GPS reading to be ingested.
type Sample struct {
	UserID    uint64
	Timestamp int64
	Longitude float32
	Latitude  float32
	Altitude  float32
}

// Pusher writes location samples to a worker's tables.
type Pusher struct {
	db *store.Db
}

// New builds a Pusher writing into db.
func New(db *store.Db) *Pusher {
	return &Pusher{db: db}
}

// PutLocation writes every sample in batch. Distinct samples need not be
// atomic with respect to each other; within one sample, the timeline row
// is written before the reverse row, and a reverse-write failure triggers
// a compensating delete of the timeline row just written, since the two
// tables live in separate Pebble handles and can't share one batch.
func (p *Pusher) PutLocation(ctx context.Context, batch []Sample) error {
	start := time.Now()
	defer func() { metrics.IngestBatchLatency.Observe(time.Since(start).Seconds()) }()

	for _, s := range batch {
		if err := p.putOne(s); err != nil {
			return err
		}
	}
	metrics.PointsIngested.Add(float64(len(batch)))
	return nil
}

func (p *Pusher) putOne(s Sample) error {
	tsLo := zones.TsToZone(s.Timestamp)
	tsHi := uint64(s.Timestamp - tsLo*zones.TimePrecision)
	longZone := zones.GPSToZone(s.Longitude)
	latZone := zones.GPSToZone(s.Latitude)

	tKey := keycodec.TimelineKey{
		TimestampLo: uint64(tsLo),
		LongZone:    longZone,
		LatZone:     latZone,
		UserID:      s.UserID,
		TimestampHi: tsHi,
	}
	tValue := keycodec.TimelineValue{Longitude: s.Longitude, Latitude: s.Latitude, Altitude: s.Altitude}

	rKey := keycodec.ReverseKey{
		UserID:        s.UserID,
		TimestampZone: uint64(tsLo),
		LongZone:      longZone,
		LatZone:       latZone,
	}
	rValue := keycodec.ReverseValue{LongZone: longZone, LatZone: latZone}

	encodedTKey := tKey.Encode()
	if err := p.db.PutTimeline(encodedTKey, tValue.Encode()); err != nil {
		return err
	}
	if err := p.db.PutReverse(rKey.Encode(), rValue.Encode()); err != nil {
		if delErr := p.db.DeleteTimeline(encodedTKey); delErr != nil {
			return btstatus.Wrap(btstatus.Internal, delErr, "compensating delete after reverse write failure")
		}
		return err
	}
	return nil
}

// DeleteUser removes every row belonging to userID from both tables: scan
// the reverse table for the user's rows, reconstruct each corresponding
// timeline key, and delete both sides.
func (p *Pusher) DeleteUser(ctx context.Context, userID uint64) error {
	prefix := keycodec.ReverseKey{UserID: userID}.Encode()

	it, err := p.db.ReverseIter()
	if err != nil {
		return err
	}
	defer it.Close()

	var toDelete []keycodec.ReverseKey
	for it.SeekGE(prefix); it.Valid(); it.Next() {
		rKey, err := keycodec.DecodeReverseKey(it.Key())
		if err != nil {
			return btstatus.Wrap(btstatus.Serialization, err, "decode reverse key during delete scan")
		}
		if rKey.UserID != userID {
			break
		}
		toDelete = append(toDelete, rKey)
	}
	if err := it.Error(); err != nil {
		return btstatus.Wrap(btstatus.Internal, err, "reverse scan during delete")
	}

	for _, rKey := range toDelete {
		tKey := keycodec.TimelineKey{
			TimestampLo: rKey.TimestampZone,
			LongZone:    rKey.LongZone,
			LatZone:     rKey.LatZone,
			UserID:      rKey.UserID,
		}
		if err := p.deletePair(tKey, rKey); err != nil {
			return err
		}
	}
	return nil
}

// deletePair removes the reverse row exactly, and every timeline row
// sharing its (timestamp_zone, user_id, long_zone, lat_zone) prefix — the
// timeline key additionally carries timestamp_hi, which the reverse row
// doesn't retain, so a short prefix scan finds the matching timeline rows
// rather than a single exact-match delete.
func (p *Pusher) deletePair(prefix keycodec.TimelineKey, rKey keycodec.ReverseKey) error {
	it, err := p.db.TimelineIter()
	if err != nil {
		return err
	}
	defer it.Close()

	lo := prefix.Encode()
	var matched [][]byte
	for it.SeekGE(lo); it.Valid(); it.Next() {
		tKey, err := keycodec.DecodeTimelineKey(it.Key())
		if err != nil {
			return btstatus.Wrap(btstatus.Serialization, err, "decode timeline key during delete scan")
		}
		if tKey.TimestampLo != prefix.TimestampLo || tKey.UserID != prefix.UserID {
			break
		}
		if !zonesEqual(tKey.LongZone, prefix.LongZone) || !zonesEqual(tKey.LatZone, prefix.LatZone) {
			continue
		}
		matched = append(matched, bytes.Clone(it.Key()))
	}
	if err := it.Error(); err != nil {
		return btstatus.Wrap(btstatus.Internal, err, "timeline scan during delete")
	}

	for _, key := range matched {
		if err := p.db.DeleteTimeline(key); err != nil {
			return err
		}
	}
	return p.db.DeleteReverse(rKey.Encode())
}

func zonesEqual(a, b float32) bool {
	d := a - b
	return d < store.FloatEpsilon && d > -store.FloatEpsilon
}
