package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search orchestration Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "search_requests_total",
			Help:      "Total number of dispatched search requests",
		},
		[]string{"index", "status"}, // status: "ok" / "error"
	)

	SearchCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "searchkit",
			Name:      "search_cycle_duration_seconds",
			Help:      "Duration of a full search cycle (all requests settled)",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	SearchCycleRequests = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "searchkit",
			Name:      "search_cycle_requests",
			Help:      "Number of requests dispatched per search cycle",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		},
	)

	StaleResponsesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "stale_responses_total",
			Help:      "Responses dropped because their cycle was torn down",
		},
	)

	FacetValueRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "facet_value_requests_total",
			Help:      "Total number of facet-value search requests",
		},
		[]string{"facet", "status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search orchestration metrics. Must be
// called once from main; library consumers that skip it still get working
// (unregistered) collectors.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchCycleDuration)
	prometheus.MustRegister(SearchCycleRequests)
	prometheus.MustRegister(StaleResponsesTotal)
	prometheus.MustRegister(FacetValueRequestsTotal)
	searchMetricsRegistered = true
}
