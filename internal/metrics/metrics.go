// Package metrics holds the prometheus collectors of the node registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nodereg"

// Metrics groups the collectors registered on one registry
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight  prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	serviceStart  *prometheus.HistogramVec
	publishes     *prometheus.CounterVec
	pushClients   prometheus.Gauge
	authFailures  prometheus.Counter
	loginAttempts *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),
		serviceStart: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "boot",
			Name:      "service_start_seconds",
			Help:      "Time for a backing service to become ready.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"service", "result"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "publishes_total",
			Help:      "Node list publish attempts.",
		}, []string{"result"}),
		pushClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "clients",
			Help:      "Connected push channel clients.",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "rejected_total",
			Help:      "Requests rejected by token verification.",
		}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.serviceStart,
		m.publishes,
		m.pushClients,
		m.authFailures,
		m.loginAttempts,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

// Handler returns an HTTP handler exposing the registered metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementInFlight marks a request as started
func (m *Metrics) IncrementInFlight() { m.httpInFlight.Inc() }

// DecrementInFlight marks a request as finished
func (m *Metrics) DecrementInFlight() { m.httpInFlight.Dec() }

// RecordHTTPRequest records one handled request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveServiceStart records how long a backing service took to become ready or fail
func (m *Metrics) ObserveServiceStart(service string, duration time.Duration, err error) {
	result := "ready"
	if err != nil {
		result = "failed"
	}
	m.serviceStart.WithLabelValues(service, result).Observe(duration.Seconds())
}

// RecordPublish counts a publish attempt
func (m *Metrics) RecordPublish(success bool) {
	result := "published"
	if !success {
		result = "unavailable"
	}
	m.publishes.WithLabelValues(result).Inc()
}

// SetPushClients reports the connected push channel clients
func (m *Metrics) SetPushClients(n int) { m.pushClients.Set(float64(n)) }

// RecordAuthFailure counts a rejected token
func (m *Metrics) RecordAuthFailure() { m.authFailures.Inc() }

// RecordLogin counts a login attempt
func (m *Metrics) RecordLogin(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}
