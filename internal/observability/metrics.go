package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transmittal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "transmittal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	lifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "transmittal",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Successful transmittal lifecycle events.",
		},
		[]string{"event"},
	)
	websocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "transmittal",
			Subsystem: "websocket",
			Name:      "clients",
			Help:      "Connected websocket listeners.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, lifecycleTransitions, websocketClients)
	})
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

func RecordTransition(event string) {
	RegisterMetrics()
	lifecycleTransitions.WithLabelValues(event).Inc()
}

func SetWebsocketClients(n int) {
	RegisterMetrics()
	websocketClients.Set(float64(n))
}
