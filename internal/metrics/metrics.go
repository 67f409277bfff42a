// Package metrics registers the Prometheus collectors shared by the
// worker and mixer processes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var buckets = []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10}

var (
	// PointsIngested counts location samples accepted by a worker's Pusher.
	PointsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backtracer",
		Subsystem: "ingest",
		Name:      "points_total",
		Help:      "Location samples written to a worker's tables.",
	})

	// IngestBatchLatency observes PutLocation call duration, in seconds.
	IngestBatchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "backtracer",
		Subsystem: "ingest",
		Name:      "batch_seconds",
		Help:      "Latency of a single PutLocation batch call.",
		Buckets:   buckets,
	})

	// GCRowsDeleted counts rows removed by retention-horizon sweeps.
	GCRowsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backtracer",
		Subsystem: "gc",
		Name:      "rows_deleted_total",
		Help:      "Rows removed because they aged past the retention horizon.",
	})

	// GCSweepLatency observes one full GC sweep's duration, in seconds.
	GCSweepLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "backtracer",
		Subsystem: "gc",
		Name:      "sweep_seconds",
		Help:      "Latency of one garbage-collection sweep.",
		Buckets:   buckets,
	})

	// SeekerQueryLatency observes GetUserTimeline/GetUserNearbyFolks calls,
	// labeled by method name.
	SeekerQueryLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "backtracer",
		Subsystem: "seeker",
		Name:      "query_seconds",
		Help:      "Latency of a seeker query, by method.",
		Buckets:   buckets,
	}, []string{"method"})

	// MixerFanoutLatency observes a mixer's per-shard fan-out call, labeled
	// by shard name and method.
	MixerFanoutLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "backtracer",
		Subsystem: "mixer",
		Name:      "fanout_seconds",
		Help:      "Latency of one shard call within a mixer fan-out.",
		Buckets:   buckets,
	}, []string{"shard", "method"})

	// MixerFanoutFailures counts failed per-shard fan-out calls, labeled by
	// shard name and method.
	MixerFanoutFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backtracer",
		Subsystem: "mixer",
		Name:      "fanout_failures_total",
		Help:      "Failed shard calls within a mixer fan-out, by shard and method.",
	}, []string{"shard", "method"})
)

func init() {
	prometheus.DefaultRegisterer.MustRegister(
		PointsIngested,
		IngestBatchLatency,
		GCRowsDeleted,
		GCSweepLatency,
		SeekerQueryLatency,
		MixerFanoutLatency,
		MixerFanoutFailures,
	)
}
