package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

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

func countRows(t *testing.T, db *store.Db, userID uint64) (timelineCount, reverseCount int) {
	t.Helper()

	rit, err := db.ReverseIter()
	require.NoError(t, err)
	defer rit.Close()
	prefix := keycodec.ReverseKey{UserID: userID}.Encode()
	for rit.SeekGE(prefix); rit.Valid(); rit.Next() {
		k, err := keycodec.DecodeReverseKey(rit.Key())
		require.NoError(t, err)
		if k.UserID != userID {
			break
		}
		reverseCount++
	}

	tit, err := db.TimelineIter()
	require.NoError(t, err)
	defer tit.Close()
	for tit.First(); tit.Valid(); tit.Next() {
		k, err := keycodec.DecodeTimelineKey(tit.Key())
		require.NoError(t, err)
		if k.UserID == userID {
			timelineCount++
		}
	}
	return
}

func TestPutLocationWritesPairedRows(t *testing.T) {
	db := openTestDb(t)
	p := New(db)

	err := p.PutLocation(context.Background(), []Sample{
		{UserID: 1, Timestamp: 1_000_500, Longitude: 12.345678, Latitude: 48.765432, Altitude: 100},
	})
	require.NoError(t, err)

	timelineCount, reverseCount := countRows(t, db, 1)
	require.Equal(t, 1, timelineCount)
	require.Equal(t, 1, reverseCount)
}

func TestDeleteUserRemovesAllRows(t *testing.T) {
	db := openTestDb(t)
	p := New(db)

	require.NoError(t, p.PutLocation(context.Background(), []Sample{
		{UserID: 1, Timestamp: 1_000_500, Longitude: 12.345678, Latitude: 48.765432},
		{UserID: 1, Timestamp: 2_000_500, Longitude: 13.1, Latitude: 49.1},
		{UserID: 2, Timestamp: 1_000_500, Longitude: 12.345678, Latitude: 48.765432},
	}))

	require.NoError(t, p.DeleteUser(context.Background(), 1))

	timelineCount, reverseCount := countRows(t, db, 1)
	require.Equal(t, 0, timelineCount)
	require.Equal(t, 0, reverseCount)

	otherTimeline, otherReverse := countRows(t, db, 2)
	require.Equal(t, 1, otherTimeline)
	require.Equal(t, 1, otherReverse)
}

func TestPutLocationDistinctSamplesAreIndependent(t *testing.T) {
	db := openTestDb(t)
	p := New(db)

	batch := []Sample{
		{UserID: 1, Timestamp: 1_000_000, Longitude: 1, Latitude: 1},
		{UserID: 2, Timestamp: 1_000_000, Longitude: 2, Latitude: 2},
		{UserID: 3, Timestamp: 1_000_000, Longitude: 3, Latitude: 3},
	}
	require.NoError(t, p.PutLocation(context.Background(), batch))

	for _, s := range batch {
		tc, rc := countRows(t, db, s.UserID)
		require.Equal(t, 1, tc)
		require.Equal(t, 1, rc)
	}
}
