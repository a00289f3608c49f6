// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "averix",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "averix",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "averix",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "averix",
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Total number of registered accounts.",
		},
	)

	stakesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "averix",
			Subsystem: "staking",
			Name:      "stakes_created_total",
			Help:      "Total number of stakes opened, by duration.",
		},
		[]string{"duration_days"},
	)

	ordersExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "averix",
			Subsystem: "trading",
			Name:      "orders_executed_total",
			Help:      "Total number of mock-executed orders, by side.",
		},
		[]string{"side"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		registrations,
		stakesCreated,
		ordersExecuted,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted increments the in-flight gauge and returns the func that
// records the finished request.
func RequestStarted() func(method, route string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, route string, status int) {
		httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordRegistration() {
	registrations.Inc()
}

func RecordStake(durationDays int) {
	stakesCreated.WithLabelValues(strconv.Itoa(durationDays)).Inc()
}

func RecordOrder(side string) {
	ordersExecuted.WithLabelValues(side).Inc()
}
