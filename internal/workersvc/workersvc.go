// Package workersvc adapts internal/ingest and internal/seeker to the
// rpcwire.PusherServer and rpcwire.SeekerServer contracts, so a worker
// process (or a test harness standing one up) can register both services
// on a single grpc.Server backed by one store.Db.
package workersvc

import (
	"context"

	"github.com/mfkiwl/geo-backtracer/internal/ingest"
	"github.com/mfkiwl/geo-backtracer/internal/rpcwire"
	"github.com/mfkiwl/geo-backtracer/internal/seeker"
)

// Pusher adapts *ingest.Pusher to rpcwire.PusherServer.
type Pusher struct {
	P *ingest.Pusher
}

var _ rpcwire.PusherServer = Pusher{}

func (p Pusher) PutLocation(ctx context.Context, req *rpcwire.PutLocationRequest) (*rpcwire.PutLocationResponse, error) {
	batch := make([]ingest.Sample, len(req.Locations))
	for i, s := range req.Locations {
		batch[i] = ingest.Sample{
			UserID:    s.UserID,
			Timestamp: s.Timestamp,
			Longitude: s.Longitude,
			Latitude:  s.Latitude,
			Altitude:  s.Altitude,
		}
	}
	if err := p.P.PutLocation(ctx, batch); err != nil {
		return nil, err
	}
	return &rpcwire.PutLocationResponse{}, nil
}

func (p Pusher) DeleteUser(ctx context.Context, req *rpcwire.DeleteUserRequest) (*rpcwire.DeleteUserResponse, error) {
	if err := p.P.DeleteUser(ctx, req.UserID); err != nil {
		return nil, err
	}
	return &rpcwire.DeleteUserResponse{}, nil
}

// Seeker adapts *seeker.Seeker to rpcwire.SeekerServer.
type Seeker struct {
	S *seeker.Seeker
}

var _ rpcwire.SeekerServer = Seeker{}

func (s Seeker) GetUserTimeline(ctx context.Context, req *rpcwire.GetUserTimelineRequest) (*rpcwire.GetUserTimelineResponse, error) {
	points, err := s.S.GetUserTimeline(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]rpcwire.TimelinePointWire, len(points))
	for i, p := range points {
		out[i] = rpcwire.TimelinePointWire{
			Timestamp: p.Timestamp,
			Longitude: p.Longitude,
			Latitude:  p.Latitude,
			Altitude:  p.Altitude,
		}
	}
	return &rpcwire.GetUserTimelineResponse{Points: out}, nil
}

func (s Seeker) GetUserNearbyFolks(ctx context.Context, req *rpcwire.GetUserNearbyFolksRequest) (*rpcwire.GetUserNearbyFolksResponse, error) {
	folks, err := s.S.GetUserNearbyFolks(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]rpcwire.FolkWire, len(folks))
	for i, f := range folks {
		out[i] = rpcwire.FolkWire{UserID: f.UserID, Score: int64(f.Score)}
	}
	return &rpcwire.GetUserNearbyFolksResponse{Folks: out}, nil
}

func (s Seeker) InternalBuildBlockForUser(ctx context.Context, req *rpcwire.InternalBuildBlockRequest) (*rpcwire.InternalBuildBlockResponse, error) {
	block, err := s.S.BuildLogicalBlock(req.TimestampZone, req.LongZone, req.LatZone, req.UserID)
	if err != nil {
		return nil, err
	}
	return &rpcwire.InternalBuildBlockResponse{
		UserEntries: entriesToWire(block.UserEntries),
		FolkEntries: entriesToWire(block.FolkEntries),
		Found:       block.Found,
	}, nil
}

func entriesToWire(entries []seeker.Entry) []rpcwire.EntryWire {
	out := make([]rpcwire.EntryWire, len(entries))
	for i, e := range entries {
		out[i] = rpcwire.EntryWire{
			UserID:    e.UserID,
			Timestamp: e.Timestamp,
			Longitude: e.Longitude,
			Latitude:  e.Latitude,
			Altitude:  e.Altitude,
		}
	}
	return out
}
