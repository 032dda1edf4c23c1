package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry-call Prometheus metrics.
var (
	RegistryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clearmark",
			Name:      "registry_requests_total",
			Help:      "Total number of registry search calls",
		},
		[]string{"status"}, // "success" / "error"
	)

	RegistryRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clearmark",
			Name:      "registry_request_duration_seconds",
			Help:      "Registry search call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"status"}, // "success" / "error"
	)

	RegistryItemsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clearmark",
			Name:      "registry_items_total",
			Help:      "Total registry result items fetched",
		},
	)

	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clearmark",
			Name:      "pipeline_runs_total",
			Help:      "Total search pipeline runs",
		},
		[]string{"status"}, // "success" / "error"
	)
)

var registryMetricsRegistered bool

// RegisterRegistryMetrics registers Prometheus registry metrics. Must be called once from main.
func RegisterRegistryMetrics() {
	if registryMetricsRegistered {
		return
	}
	prometheus.MustRegister(RegistryRequestsTotal)
	prometheus.MustRegister(RegistryRequestDuration)
	prometheus.MustRegister(RegistryItemsTotal)
	prometheus.MustRegister(PipelineRunsTotal)
	registryMetricsRegistered = true
}
