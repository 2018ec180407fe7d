package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	couplingSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdcouple",
			Subsystem: "coupling",
			Name:      "steps_total",
			Help:      "Total step exchanges served.",
		},
		[]string{"node", "phase", "status"},
	)
	couplingStepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mdcouple",
			Subsystem: "coupling",
			Name:      "step_duration_seconds",
			Help:      "End-to-end step duration including the external evaluation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"node", "phase", "status"},
	)
	couplingSessionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdcouple",
			Subsystem: "coupling",
			Name:      "session_failures_total",
			Help:      "Session-fatal failures by kind.",
		},
		[]string{"node", "kind"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdcouple",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total status endpoint requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mdcouple",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Status endpoint request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			couplingSteps, couplingStepDuration, couplingSessionFailures,
			httpRequests, httpDuration,
		)
	})
}

func RecordStep(node, phase, status string, duration time.Duration) {
	RegisterMetrics()
	couplingSteps.WithLabelValues(node, phase, status).Inc()
	couplingStepDuration.WithLabelValues(node, phase, status).Observe(duration.Seconds())
}

func RecordSessionFailure(node, kind string) {
	RegisterMetrics()
	couplingSessionFailures.WithLabelValues(node, kind).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
