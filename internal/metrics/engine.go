package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchgw",
			Name:      "engine_requests_total",
			Help:      "Total number of search engine requests",
		},
		[]string{"driver", "op", "status"},
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchgw",
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"driver", "op"},
	)

	EngineDocumentsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchgw",
			Name:      "engine_documents_ingested_total",
			Help:      "Total documents sent to the search engine by bulk ingestion",
		},
		[]string{"driver"},
	)

	// DegradedResponsesTotal counts engine failures answered with an empty or not-found result.
	DegradedResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchgw",
			Name:      "degraded_responses_total",
			Help:      "Requests answered with an empty result because the engine failed",
		},
		[]string{"operation"},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers Prometheus engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(EngineRequestsTotal)
	prometheus.MustRegister(EngineRequestDuration)
	prometheus.MustRegister(EngineDocumentsIngestedTotal)
	prometheus.MustRegister(DegradedResponsesTotal)
	engineMetricsRegistered = true
}
