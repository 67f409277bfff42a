package seeker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfkiwl/geo-backtracer/internal/ingest"
	"github.com/mfkiwl/geo-backtracer/internal/store"
)

func openTestDb(t *testing.T) *store.Db {
	t.Helper()
	db, err := store.Open("", store.Tuning{})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func TestGetUserTimelineReturnsOrderedPoints(t *testing.T) {
	db := openTestDb(t)
	p := ingest.New(db)

	require.NoError(t, p.PutLocation(context.Background(), []ingest.Sample{
		{UserID: 1, Timestamp: 2_000_000, Longitude: 12.1, Latitude: 48.1, Altitude: 10},
		{UserID: 1, Timestamp: 1_000_000, Longitude: 12.2, Latitude: 48.2, Altitude: 20},
	}))

	seek := New(db, 1)
	points, err := seek.GetUserTimeline(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, int64(1_000_000), points[0].Timestamp)
	require.Equal(t, int64(2_000_000), points[1].Timestamp)
}

func TestGetUserTimelineEmptyForUnknownUser(t *testing.T) {
	db := openTestDb(t)
	seek := New(db, 1)
	points, err := seek.GetUserTimeline(context.Background(), 99)
	require.NoError(t, err)
	require.Empty(t, points)
}

func TestGetUserNearbyFolksFindsCoPresentUser(t *testing.T) {
	db := openTestDb(t)
	p := ingest.New(db)

	require.NoError(t, p.PutLocation(context.Background(), []ingest.Sample{
		{UserID: 1, Timestamp: 1_000_000, Longitude: 12.345, Latitude: 48.765, Altitude: 100},
		{UserID: 2, Timestamp: 1_000_005, Longitude: 12.345001, Latitude: 48.765001, Altitude: 100.5},
		{UserID: 3, Timestamp: 1_000_000, Longitude: 50.0, Latitude: 10.0, Altitude: 0},
	}))

	seek := New(db, 1)
	folks, err := seek.GetUserNearbyFolks(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, folks, 1)
	require.Equal(t, uint64(2), folks[0].UserID)
	require.GreaterOrEqual(t, folks[0].Score, 1)
}

func TestGetUserNearbyFolksExcludesDistantUser(t *testing.T) {
	db := openTestDb(t)
	p := ingest.New(db)

	require.NoError(t, p.PutLocation(context.Background(), []ingest.Sample{
		{UserID: 1, Timestamp: 1_000_000, Longitude: 12.345, Latitude: 48.765},
		{UserID: 2, Timestamp: 1_000_000, Longitude: 50.0, Latitude: 10.0},
	}))

	seek := New(db, 1)
	folks, err := seek.GetUserNearbyFolks(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, folks)
}

func TestIsNearbyFolkThresholds(t *testing.T) {
	base := Entry{Timestamp: 1000, Longitude: 10, Latitude: 10, Altitude: 10}
	require.True(t, IsNearbyFolk(base, Entry{Timestamp: 1010, Longitude: 10, Latitude: 10, Altitude: 10}))
	require.False(t, IsNearbyFolk(base, Entry{Timestamp: 1100, Longitude: 10, Latitude: 10, Altitude: 10}))
	require.False(t, IsNearbyFolk(base, Entry{Timestamp: 1000, Longitude: 20, Latitude: 10, Altitude: 10}))
}
