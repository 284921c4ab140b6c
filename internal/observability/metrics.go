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
			Namespace: "bottler",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bottler",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bottler",
			Subsystem: "delivery",
			Name:      "total",
			Help:      "Reconciled deliveries by result.",
		},
		[]string{"result"},
	)
	bottlesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bottler",
			Subsystem: "delivery",
			Name:      "bottles_total",
			Help:      "Bottles committed to the catalog.",
		},
	)
	planEntries = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bottler",
			Subsystem: "plan",
			Name:      "entries",
			Help:      "Entries per computed bottle plan.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, deliveries, bottlesDelivered, planEntries)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDelivery counts one reconciliation; bottles is only added on success.
func RecordDelivery(result string, bottles int) {
	RegisterMetrics()
	deliveries.WithLabelValues(result).Inc()
	if result == DeliveryResultSuccess {
		bottlesDelivered.Add(float64(bottles))
	}
}

func RecordPlan(entries int) {
	RegisterMetrics()
	planEntries.Observe(float64(entries))
}

const (
	DeliveryResultSuccess      = "success"
	DeliveryResultInsufficient = "insufficient_stock"
	DeliveryResultDuplicate    = "duplicate"
	DeliveryResultReplay       = "replay"
	DeliveryResultError        = "error"
)
