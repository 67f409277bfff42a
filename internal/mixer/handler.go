package mixer

import (
	"sync/atomic"

	"google.golang.org/grpc"

	"github.com/mfkiwl/geo-backtracer/internal/config"
	"github.com/mfkiwl/geo-backtracer/internal/rpcwire"
)

// workerConn bundles one dialed connection to a worker with the two
// client stubs the mixer calls against it.
type workerConn struct {
	cc     *grpc.ClientConn
	pusher rpcwire.PusherClient
	seeker rpcwire.SeekerClient
}

// ShardHandler is the mixer's client to one shard: a name, the partitions
// that route to it, and a pool of worker connections multiplexed by
// simple round-robin.
type ShardHandler struct {
	Name       string
	Partitions []config.Partition
	conns      []*workerConn
	next       atomic.Uint64
}

// IsDefault reports whether any of the handler's partitions bears the
// default area tag.
func (h *ShardHandler) IsDefault() bool {
	for _, p := range h.Partitions {
		if p.IsDefault() {
			return true
		}
	}
	return false
}

// Contains reports whether any of the handler's partitions claims the
// given spatio-temporal point.
func (h *ShardHandler) Contains(ts int64, longitude, latitude float32) bool {
	for _, p := range h.Partitions {
		if p.IsDefault() {
			continue
		}
		if p.Contains(ts, longitude, latitude) {
			return true
		}
	}
	return false
}

func (h *ShardHandler) pick() *workerConn {
	n := h.next.Add(1)
	return h.conns[n%uint64(len(h.conns))]
}

func newShardHandler(name string, partitions []config.Partition, addresses []string, dialOpts []grpc.DialOption) (*ShardHandler, error) {
	h := &ShardHandler{Name: name, Partitions: partitions}
	for _, addr := range addresses {
		cc, err := grpc.Dial(addr, dialOpts...)
		if err != nil {
			return nil, err
		}
		h.conns = append(h.conns, &workerConn{
			cc:     cc,
			pusher: rpcwire.NewPusherClient(cc),
			seeker: rpcwire.NewSeekerClient(cc),
		})
	}
	return h, nil
}

// Close tears down every worker connection the handler holds.
func (h *ShardHandler) Close() error {
	var first error
	for _, c := range h.conns {
		if err := c.cc.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
