package refsync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "layerfilter"
	metricsSubsystem = "refsync"
)

// Fetch results recorded in the fetches counter.
const (
	resultSuccess = "success"
	resultError   = "error"
	resultStale   = "stale"
)

// Metrics holds the Prometheus collectors of a Synchronizer.
type Metrics struct {
	// FetchesTotal counts completed fetches by result (success, error, stale).
	FetchesTotal *prometheus.CounterVec

	// InflightFetches is the number of fetches currently running.
	InflightFetches prometheus.Gauge

	// CacheEntries is the number of cached signatures.
	CacheEntries prometheus.Gauge

	// GCEvictionsTotal counts cache and in-flight entries dropped by GC.
	GCEvictionsTotal prometheus.Counter
}

// NewMetrics creates the synchronizer collectors and registers them on reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "fetches_total",
			Help:      "Reference layer fetches by result.",
		}, []string{"result"}),
		InflightFetches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "inflight_fetches",
			Help:      "Reference layer fetches currently running.",
		}),
		CacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "cache_entries",
			Help:      "Cached reference layer signatures.",
		}),
		GCEvictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "gc_evictions_total",
			Help:      "Signature cache and in-flight entries dropped for removed groups or units.",
		}),
	}
}
