package mixer

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/mfkiwl/geo-backtracer/internal/config"
	"github.com/mfkiwl/geo-backtracer/internal/ingest"
	"github.com/mfkiwl/geo-backtracer/internal/rpcwire"
	"github.com/mfkiwl/geo-backtracer/internal/seeker"
	"github.com/mfkiwl/geo-backtracer/internal/store"
	"github.com/mfkiwl/geo-backtracer/internal/workersvc"
)

// testWorker stands up one worker's Pusher+Seeker services on a bufconn
// listener.
type testWorker struct {
	addr string
	db   *store.Db
}

func startTestWorker(t *testing.T, addr string, dialers map[string]*bufconn.Listener) *testWorker {
	t.Helper()
	db, err := store.Open("", store.Tuning{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	lis := bufconn.Listen(1024 * 1024)
	dialers[addr] = lis

	srv := grpc.NewServer(rpcwire.ServerOption())
	rpcwire.RegisterPusherServer(srv, workersvc.Pusher{P: ingest.New(db)})
	rpcwire.RegisterSeekerServer(srv, workersvc.Seeker{S: seeker.New(db, 0)})
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	return &testWorker{addr: addr, db: db}
}

func dialOptsFor(dialers map[string]*bufconn.Listener) []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		rpcwire.DialOption(),
		grpc.WithContextDialer(func(_ context.Context, target string) (net.Conn, error) {
			lis, ok := dialers[target]
			if !ok {
				return nil, fmt.Errorf("mixer test: no bufconn listener for target %q", target)
			}
			return lis.DialContext(context.Background())
		}),
	}
}

// twoShardConfig builds a config with one area shard covering longitude
// [0,1) and a default shard catching everything else.
func twoShardConfig(areaAddr, defaultAddr string) config.Config {
	return config.Config{
		Shards: []config.Shard{
			{Name: "area", Addresses: []string{areaAddr}},
			{Name: "default", Addresses: []string{defaultAddr}},
		},
		Partitions: []config.Partition{
			{Shard: "area", Area: "zone-a", TSBegin: 0, TSEnd: 1 << 40, LongitudeBegin: 0, LongitudeEnd: 1, LatitudeBegin: -90, LatitudeEnd: 90},
			{Shard: "default", Area: config.DefaultShardArea, TSBegin: 0, TSEnd: 1 << 40, LongitudeBegin: -180, LongitudeEnd: 180, LatitudeBegin: -90, LatitudeEnd: 90},
		},
		WorkerCallTimeout: 5 * time.Second,
		MatchMinutes:      1,
	}
}

func TestPutLocationRoutesByPartitionAndGetUserTimelineMerges(t *testing.T) {
	dialers := make(map[string]*bufconn.Listener)
	areaWorker := startTestWorker(t, "area.local", dialers)
	defaultWorker := startTestWorker(t, "default.local", dialers)

	cfg := twoShardConfig("area.local", "default.local")
	m, err := New(cfg, dialOptsFor(dialers)...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	_, err = m.PutLocation(context.Background(), &rpcwire.PutLocationRequest{
		Locations: []rpcwire.LocationSample{
			{UserID: 1, Timestamp: 1000, Longitude: 0.5, Latitude: 10, Altitude: 1}, // claimed by area
			{UserID: 1, Timestamp: 2000, Longitude: 50, Latitude: 10, Altitude: 1},  // falls to default
		},
	})
	require.NoError(t, err)

	resp, err := m.GetUserTimeline(context.Background(), &rpcwire.GetUserTimelineRequest{UserID: 1})
	require.NoError(t, err)
	require.Len(t, resp.Points, 2)

	areaCount, err := countTimelineRows(areaWorker.db)
	require.NoError(t, err)
	require.Equal(t, 1, areaCount)

	defaultCount, err := countTimelineRows(defaultWorker.db)
	require.NoError(t, err)
	require.Equal(t, 1, defaultCount)
}

func TestGetUserNearbyFolksFindsCoPresentUserAcrossShards(t *testing.T) {
	dialers := make(map[string]*bufconn.Listener)
	startTestWorker(t, "area.local", dialers)
	startTestWorker(t, "default.local", dialers)

	cfg := twoShardConfig("area.local", "default.local")
	m, err := New(cfg, dialOptsFor(dialers)...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	ctx := context.Background()
	_, err = m.PutLocation(ctx, &rpcwire.PutLocationRequest{
		Locations: []rpcwire.LocationSample{
			{UserID: 1, Timestamp: 5000, Longitude: 0.5, Latitude: 10, Altitude: 1},
			{UserID: 2, Timestamp: 5000, Longitude: 0.5, Latitude: 10, Altitude: 1},
		},
	})
	require.NoError(t, err)

	resp, err := m.GetUserNearbyFolks(ctx, &rpcwire.GetUserNearbyFolksRequest{UserID: 1})
	require.NoError(t, err)
	require.Len(t, resp.Folks, 1)
	require.Equal(t, uint64(2), resp.Folks[0].UserID)
}

func TestDeleteUserFansOutToEveryShard(t *testing.T) {
	dialers := make(map[string]*bufconn.Listener)
	areaWorker := startTestWorker(t, "area.local", dialers)
	defaultWorker := startTestWorker(t, "default.local", dialers)

	cfg := twoShardConfig("area.local", "default.local")
	m, err := New(cfg, dialOptsFor(dialers)...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	ctx := context.Background()
	_, err = m.PutLocation(ctx, &rpcwire.PutLocationRequest{
		Locations: []rpcwire.LocationSample{
			{UserID: 1, Timestamp: 1000, Longitude: 0.5, Latitude: 10, Altitude: 1},
			{UserID: 1, Timestamp: 2000, Longitude: 50, Latitude: 10, Altitude: 1},
		},
	})
	require.NoError(t, err)

	_, err = m.DeleteUser(ctx, &rpcwire.DeleteUserRequest{UserID: 1})
	require.NoError(t, err)

	areaCount, err := countTimelineRows(areaWorker.db)
	require.NoError(t, err)
	require.Equal(t, 0, areaCount)

	defaultCount, err := countTimelineRows(defaultWorker.db)
	require.NoError(t, err)
	require.Equal(t, 0, defaultCount)
}

func TestGetMixerStatsReportsInsertedSampleCount(t *testing.T) {
	dialers := make(map[string]*bufconn.Listener)
	startTestWorker(t, "area.local", dialers)
	startTestWorker(t, "default.local", dialers)

	cfg := twoShardConfig("area.local", "default.local")
	m, err := New(cfg, dialOptsFor(dialers)...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	ctx := context.Background()
	_, err = m.PutLocation(ctx, &rpcwire.PutLocationRequest{
		Locations: []rpcwire.LocationSample{
			{UserID: 1, Timestamp: 1000, Longitude: 0.5, Latitude: 10, Altitude: 1},
		},
	})
	require.NoError(t, err)

	stats, err := m.GetMixerStats(ctx, &rpcwire.GetMixerStatsRequest{})
	require.NoError(t, err)
	require.Equal(t, 1.0, stats.InsertRate60s)
}

func countTimelineRows(db *store.Db) (int, error) {
	it, err := db.TimelineIter()
	if err != nil {
		return 0, err
	}
	defer it.Close()
	n := 0
	for it.First(); it.Valid(); it.Next() {
		n++
	}
	return n, it.Error()
}
