package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the flowscope collectors.
	Registry = prometheus.NewRegistry()

	fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowscope",
			Subsystem: "feed",
			Name:      "fetches_total",
			Help:      "Total number of source reads, including retries.",
		},
		[]string{"source", "status"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flowscope",
			Subsystem: "feed",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of source reads, including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"source"},
	)

	depletion = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "flowscope",
			Subsystem: "projection",
			Name:      "depletion_timestamp_seconds",
			Help:      "Projected depletion time per scenario; 0 when the balance does not deplete.",
		},
		[]string{"scenario"},
	)

	projections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowscope",
			Subsystem: "projection",
			Name:      "computed_total",
			Help:      "Total number of projections emitted.",
		},
		[]string{"held"},
	)
)

func init() {
	Registry.MustRegister(fetches, fetchDuration, depletion, projections)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one source read.
func ObserveFetch(source string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	fetches.WithLabelValues(source, status).Inc()
	fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// SetDepletion publishes a scenario's depletion estimate.
func SetDepletion(scenario string, ts *int64) {
	if ts == nil {
		depletion.WithLabelValues(scenario).Set(0)
		return
	}
	depletion.WithLabelValues(scenario).Set(float64(*ts))
}

// ObserveProjection counts an emitted projection.
func ObserveProjection(held bool) {
	label := "false"
	if held {
		label = "true"
	}
	projections.WithLabelValues(label).Inc()
}
