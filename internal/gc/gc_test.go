package gc

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mfkiwl/geo-backtracer/internal/ingest"
	"github.com/mfkiwl/geo-backtracer/internal/keycodec"
	"github.com/mfkiwl/geo-backtracer/internal/store"
)

func openTestDb(t *testing.T) *store.Db {
	t.Helper()
	db, err := store.Open("", store.Tuning{})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func countForUser(t *testing.T, db *store.Db, userID uint64) int {
	t.Helper()
	it, err := db.TimelineIter()
	require.NoError(t, err)
	defer it.Close()
	n := 0
	for it.First(); it.Valid(); it.Next() {
		k, err := keycodec.DecodeTimelineKey(it.Key())
		require.NoError(t, err)
		if k.UserID == userID {
			n++
		}
	}
	return n
}

func TestSweepDeletesOnlyRowsOlderThanRetention(t *testing.T) {
	db := openTestDb(t)
	p := ingest.New(db)

	now := time.Unix(10_000_000, 0)
	old := now.Add(-15 * 24 * time.Hour).Unix()
	recent := now.Add(-1 * time.Hour).Unix()

	require.NoError(t, p.PutLocation(context.Background(), []ingest.Sample{
		{UserID: 1, Timestamp: old, Longitude: 1, Latitude: 1},
		{UserID: 2, Timestamp: recent, Longitude: 2, Latitude: 2},
	}))

	sweeper := New(db, DefaultRetention, time.Hour, zerolog.Nop())
	require.NoError(t, sweeper.Sweep(context.Background(), now))

	require.Equal(t, 0, countForUser(t, db, 1))
	require.Equal(t, 1, countForUser(t, db, 2))
}

func TestSweepIsNoOpWhenNothingIsStale(t *testing.T) {
	db := openTestDb(t)
	p := ingest.New(db)
	now := time.Unix(10_000_000, 0)

	require.NoError(t, p.PutLocation(context.Background(), []ingest.Sample{
		{UserID: 1, Timestamp: now.Unix(), Longitude: 1, Latitude: 1},
	}))

	sweeper := New(db, DefaultRetention, time.Hour, zerolog.Nop())
	require.NoError(t, sweeper.Sweep(context.Background(), now))

	require.Equal(t, 1, countForUser(t, db, 1))
}
