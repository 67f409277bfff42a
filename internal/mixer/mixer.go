// Package mixer implements sharded routing and fan-out: write routing by
// spatio-temporal partition, concurrent read fan-out across shards, and
// the sliding-window insert-rate stats surfaced by GetMixerStats.
package mixer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mfkiwl/geo-backtracer/internal/blog"
	"github.com/mfkiwl/geo-backtracer/internal/btstatus"
	"github.com/mfkiwl/geo-backtracer/internal/config"
	"github.com/mfkiwl/geo-backtracer/internal/metrics"
	"github.com/mfkiwl/geo-backtracer/internal/ratecounter"
	"github.com/mfkiwl/geo-backtracer/internal/rpcwire"
	"github.com/mfkiwl/geo-backtracer/internal/seeker"
	"github.com/mfkiwl/geo-backtracer/internal/zones"
)

// Mixer fans PutLocation out to the area handler each sample's partition
// claims (falling back to the default handler) and fans read queries out
// across every handler. It implements rpcwire.MixerServer so it can be
// registered directly on a grpc.Server.
type Mixer struct {
	areaHandlers   []*ShardHandler
	defaultHandler *ShardHandler
	allHandlers    []*ShardHandler
	matchMinutes   int
	callTimeout    time.Duration
	counter        *ratecounter.Counter
	log            zerolog.Logger
}

var _ rpcwire.MixerServer = (*Mixer)(nil)

// New dials every shard's worker addresses and groups cfg's partitions
// under the resulting handlers. dialOpts defaults to an insecure
// transport paired with this package's btwire codec (internal/rpcwire).
func New(cfg config.Config, dialOpts ...grpc.DialOption) (*Mixer, error) {
	if len(dialOpts) == 0 {
		dialOpts = []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			rpcwire.DialOption(),
		}
	}

	partitionsByShard := make(map[string][]config.Partition)
	for _, p := range cfg.Partitions {
		partitionsByShard[p.Shard] = append(partitionsByShard[p.Shard], p)
	}

	m := &Mixer{
		matchMinutes: cfg.MatchMinutes,
		callTimeout:  cfg.WorkerCallTimeout,
		counter:      ratecounter.New(nil),
		log:          blog.Logger,
	}
	if m.matchMinutes <= 0 {
		m.matchMinutes = zones.MatchMinutesDefault
	}
	if m.callTimeout <= 0 {
		m.callTimeout = 60 * time.Second
	}

	for _, s := range cfg.Shards {
		h, err := newShardHandler(s.Name, partitionsByShard[s.Name], s.Addresses, dialOpts)
		if err != nil {
			return nil, btstatus.Wrap(btstatus.Internal, err, "dial shard "+s.Name)
		}
		m.allHandlers = append(m.allHandlers, h)
		if h.IsDefault() {
			m.defaultHandler = h
		} else {
			m.areaHandlers = append(m.areaHandlers, h)
		}
	}
	return m, nil
}

// Close tears down every shard handler's connections.
func (m *Mixer) Close() error {
	var first error
	for _, h := range m.allHandlers {
		if err := h.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// route picks the handler that claims (ts, longitude, latitude): the first
// area handler whose partitions contain it, or the default handler if none
// do.
func (m *Mixer) route(ts int64, longitude, latitude float32) *ShardHandler {
	for _, h := range m.areaHandlers {
		if h.Contains(ts, longitude, latitude) {
			return h
		}
	}
	return m.defaultHandler
}

// readOrder is the fixed order GetUserNearbyFolks probes handlers in: area
// handlers first, the default handler last.
func (m *Mixer) readOrder() []*ShardHandler {
	order := make([]*ShardHandler, 0, len(m.allHandlers))
	order = append(order, m.areaHandlers...)
	if m.defaultHandler != nil {
		order = append(order, m.defaultHandler)
	}
	return order
}

func (m *Mixer) callTimeoutCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.callTimeout)
}

// PutLocation assigns every sample to exactly one handler, then flushes
// every touched handler in parallel. Success requires every flush to
// succeed; on failure the last failing status is returned and successful
// shards are not rolled back.
func (m *Mixer) PutLocation(ctx context.Context, req *rpcwire.PutLocationRequest) (*rpcwire.PutLocationResponse, error) {
	buckets := make(map[*ShardHandler][]rpcwire.LocationSample)
	for _, s := range req.Locations {
		h := m.route(s.Timestamp, s.Longitude, s.Latitude)
		if h == nil {
			return nil, btstatus.New(btstatus.Internal, "no shard claims sample for user %d", s.UserID)
		}
		buckets[h] = append(buckets[h], s)
	}

	var g errgroup.Group
	var mu sync.Mutex
	var lastErr error
	for h, samples := range buckets {
		h, samples := h, samples
		g.Go(func() error {
			start := time.Now()
			cctx, cancel := m.callTimeoutCtx(ctx)
			defer cancel()
			conn := h.pick()
			_, err := conn.pusher.PutLocation(cctx, &rpcwire.PutLocationRequest{Locations: samples})
			metrics.MixerFanoutLatency.WithLabelValues(h.Name, "PutLocation").Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.MixerFanoutFailures.WithLabelValues(h.Name, "PutLocation").Inc()
				m.log.Warn().Str("shard", h.Name).Err(err).Msg("put_location flush failed")
				mu.Lock()
				lastErr = err
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if lastErr != nil {
		return nil, btstatus.Wrap(btstatus.Unavailable, lastErr, "put_location fan-out")
	}

	m.counter.Add(int64(len(req.Locations)))
	return &rpcwire.PutLocationResponse{}, nil
}

// DeleteUser fans out to every handler and returns the worst (last
// observed) failing status.
func (m *Mixer) DeleteUser(ctx context.Context, req *rpcwire.DeleteUserRequest) (*rpcwire.DeleteUserResponse, error) {
	var g errgroup.Group
	var mu sync.Mutex
	var worst error
	for _, h := range m.allHandlers {
		h := h
		g.Go(func() error {
			start := time.Now()
			cctx, cancel := m.callTimeoutCtx(ctx)
			defer cancel()
			conn := h.pick()
			_, err := conn.pusher.DeleteUser(cctx, &rpcwire.DeleteUserRequest{UserID: req.UserID})
			metrics.MixerFanoutLatency.WithLabelValues(h.Name, "DeleteUser").Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.MixerFanoutFailures.WithLabelValues(h.Name, "DeleteUser").Inc()
				mu.Lock()
				worst = err
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if worst != nil {
		return nil, btstatus.Wrap(btstatus.Unavailable, worst, "delete_user fan-out")
	}
	return &rpcwire.DeleteUserResponse{}, nil
}

// GetUserTimeline fans out to every handler, merges the results into a set
// ordered by (timestamp, longitude, latitude, altitude), and fails the
// whole request if any shard fails.
func (m *Mixer) GetUserTimeline(ctx context.Context, req *rpcwire.GetUserTimelineRequest) (*rpcwire.GetUserTimelineResponse, error) {
	type shardResult struct {
		points []rpcwire.TimelinePointWire
		err    error
	}
	results := make([]shardResult, len(m.allHandlers))

	var g errgroup.Group
	for i, h := range m.allHandlers {
		i, h := i, h
		g.Go(func() error {
			start := time.Now()
			cctx, cancel := m.callTimeoutCtx(ctx)
			defer cancel()
			conn := h.pick()
			resp, err := conn.seeker.GetUserTimeline(cctx, &rpcwire.GetUserTimelineRequest{UserID: req.UserID})
			metrics.MixerFanoutLatency.WithLabelValues(h.Name, "GetUserTimeline").Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.MixerFanoutFailures.WithLabelValues(h.Name, "GetUserTimeline").Inc()
				results[i] = shardResult{err: err}
				return nil
			}
			results[i] = shardResult{points: resp.Points}
			return nil
		})
	}
	g.Wait()

	seen := make(map[rpcwire.TimelinePointWire]struct{})
	var merged []rpcwire.TimelinePointWire
	for _, r := range results {
		if r.err != nil {
			return nil, btstatus.Wrap(btstatus.Unavailable, r.err, "get_user_timeline fan-out")
		}
		for _, p := range r.points {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			merged = append(merged, p)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if a.Longitude != b.Longitude {
			return a.Longitude < b.Longitude
		}
		if a.Latitude != b.Latitude {
			return a.Latitude < b.Latitude
		}
		return a.Altitude < b.Altitude
	})
	return &rpcwire.GetUserTimelineResponse{Points: merged}, nil
}

// GetUserNearbyFolks gathers the user's own merged timeline, then for
// every point probes up to eight surrounding cells against each handler
// in read order, stopping per cell at the first handler that reports it
// found.
func (m *Mixer) GetUserNearbyFolks(ctx context.Context, req *rpcwire.GetUserNearbyFolksRequest) (*rpcwire.GetUserNearbyFolksResponse, error) {
	timeline, err := m.GetUserTimeline(ctx, &rpcwire.GetUserTimelineRequest{UserID: req.UserID})
	if err != nil {
		return nil, err
	}

	order := m.readOrder()
	scores := make(map[uint64]int)
	probed := make(map[[3]int64]struct{})

	for _, p := range timeline.Points {
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

					block, err := m.buildBlock(ctx, order, tz, lz, az, req.UserID)
					if err != nil {
						return nil, err
					}
					if block == nil {
						continue
					}
					for _, u := range block.UserEntries {
						for _, f := range block.FolkEntries {
							if seeker.IsNearbyFolk(entryFromWire(u), entryFromWire(f)) {
								scores[f.UserID]++
							}
						}
					}
				}
			}
		}
	}

	var out []rpcwire.FolkWire
	for userID, score := range scores {
		if score >= m.matchMinutes {
			out = append(out, rpcwire.FolkWire{UserID: userID, Score: int64(score)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return &rpcwire.GetUserNearbyFolksResponse{Folks: out}, nil
}

// buildBlock queries order's handlers in sequence for the cell
// (tsZone, longZone, latZone), returning the first one that reports the
// cell found, or nil if none do.
func (m *Mixer) buildBlock(ctx context.Context, order []*ShardHandler, tsZone int64, longZone, latZone float32, userID uint64) (*rpcwire.InternalBuildBlockResponse, error) {
	for _, h := range order {
		start := time.Now()
		cctx, cancel := m.callTimeoutCtx(ctx)
		conn := h.pick()
		resp, err := conn.seeker.InternalBuildBlockForUser(cctx, &rpcwire.InternalBuildBlockRequest{
			TimestampZone: tsZone,
			LongZone:      longZone,
			LatZone:       latZone,
			UserID:        userID,
		})
		cancel()
		metrics.MixerFanoutLatency.WithLabelValues(h.Name, "InternalBuildBlockForUser").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.MixerFanoutFailures.WithLabelValues(h.Name, "InternalBuildBlockForUser").Inc()
			return nil, btstatus.Wrap(btstatus.Unavailable, err, "internal_build_block fan-out on shard "+h.Name)
		}
		if resp.Found {
			return resp, nil
		}
	}
	return nil, nil
}

func entryFromWire(e rpcwire.EntryWire) seeker.Entry {
	return seeker.Entry{
		UserID:    e.UserID,
		Timestamp: e.Timestamp,
		Longitude: e.Longitude,
		Latitude:  e.Latitude,
		Altitude:  e.Altitude,
	}
}

// GetMixerStats reports the sliding 60s/10m/1h insert-rate snapshot.
func (m *Mixer) GetMixerStats(ctx context.Context, req *rpcwire.GetMixerStatsRequest) (*rpcwire.GetMixerStatsResponse, error) {
	snap := m.counter.Stats()
	return &rpcwire.GetMixerStatsResponse{
		InsertRate60s: snap.InsertRate60s,
		InsertRate10m: snap.InsertRate10m,
		InsertRate1h:  snap.InsertRate1h,
	}, nil
}
