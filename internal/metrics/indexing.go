package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing Prometheus metrics.
var (
	IndexWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docketdex",
			Name:      "index_writes_total",
			Help:      "Total number of index write operations",
		},
		[]string{"operation", "doc_kind"}, // upsert/patch/delete x docket/filing
	)

	IndexWriteErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docketdex",
			Name:      "index_write_errors_total",
			Help:      "Total number of failed index write operations",
		},
		[]string{"operation", "doc_kind"},
	)

	PropagationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docketdex",
			Name:      "propagation_duration_seconds",
			Help:      "Parent-to-children field propagation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"trigger"}, // docket_update / judge_rename / bankruptcy
	)

	SyncEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docketdex",
			Name:      "sync_events_total",
			Help:      "Total number of change-feed events processed",
		},
		[]string{"kind", "result"}, // result: applied / noop / error
	)
)

var indexMetricsRegistered bool

// RegisterIndexingMetrics registers Prometheus indexing metrics. Must be called once from main.
func RegisterIndexingMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexWritesTotal)
	prometheus.MustRegister(IndexWriteErrorsTotal)
	prometheus.MustRegister(PropagationDuration)
	prometheus.MustRegister(SyncEventsTotal)
	indexMetricsRegistered = true
}
