// Package metrics holds the Prometheus collectors for search, cache and writes.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespace = "inventory"

// Metrics is registered on an injected registry so tests can use a fresh one.
type Metrics struct {
	SnapshotHits     prometheus.Counter
	SnapshotMisses   prometheus.Counter
	SnapshotRebuilds prometheus.Counter
	SnapshotCorrupt  prometheus.Counter
	SnapshotDiscards prometheus.Counter
	RebuildDuration  prometheus.Histogram

	EmbeddingFailures prometheus.Counter
	QueryCacheHits    prometheus.Counter
	QueryCacheMisses  prometheus.Counter

	ProductWrites *prometheus.CounterVec
	ChangeEvents  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SnapshotHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshot_hits_total",
			Help: "Embedding snapshot reads served from the cache slot.",
		}),
		SnapshotMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshot_misses_total",
			Help: "Embedding snapshot reads that found the slot empty or unusable.",
		}),
		SnapshotRebuilds: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshot_rebuilds_total",
			Help: "Embedding snapshots computed from the product set.",
		}),
		SnapshotCorrupt: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshot_corrupt_total",
			Help: "Stored snapshots that could not be decoded.",
		}),
		SnapshotDiscards: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshot_discards_total",
			Help: "Rebuilt snapshots not stored because a product write happened meanwhile.",
		}),
		RebuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "snapshot_rebuild_duration_seconds",
			Help:    "Time spent embedding the product set.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		}),
		EmbeddingFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "embedding_failures_total",
			Help: "Embedding provider calls that failed.",
		}),
		QueryCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "query_cache_hits_total",
			Help: "Search queries whose vector was already cached.",
		}),
		QueryCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "query_cache_misses_total",
			Help: "Search queries that needed a provider call.",
		}),
		ProductWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "product_writes_total",
			Help: "Committed product writes by operation.",
		}, []string{"op"}),
		ChangeEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "change_events_total",
			Help: "Recorded product change events by kind.",
		}, []string{"kind"}),
	}
}

// NewNop returns metrics registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// WriteText dumps every metric family in g in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
