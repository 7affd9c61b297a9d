package metrics

import (
	"time"

	"commerce-sync-layer/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Sync outcome label values.
const (
	OutcomeCompleted = "completed"
	OutcomePartial   = "partial"
	OutcomeFailed    = "failed"
)

// Metrics records sync observability counters and is registered on the
// registry served at /metrics.
type Metrics struct {
	syncsTotal      *prometheus.CounterVec
	syncDuration    prometheus.Histogram
	resourcesSynced *prometheus.CounterVec
}

// New creates and registers the sync metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		syncsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_syncs_total",
			Help: "Store synchronizations by outcome.",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "store_sync_duration_seconds",
			Help:    "Duration of store synchronizations.",
			Buckets: prometheus.DefBuckets,
		}),
		resourcesSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_sync_resources_total",
			Help: "Canonical resources written during syncs, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.syncsTotal, m.syncDuration, m.resourcesSynced)
	return m
}

// ObserveSync records one finished sync.
func (m *Metrics) ObserveSync(outcome string, d time.Duration) {
	m.syncsTotal.WithLabelValues(outcome).Inc()
	m.syncDuration.Observe(d.Seconds())
}

// AddSynced records resources written for one kind.
func (m *Metrics) AddSynced(kind domain.ResourceKind, count int) {
	m.resourcesSynced.WithLabelValues(string(kind)).Add(float64(count))
}
