// Package observability holds the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "achivo"

// Metrics groups the service collectors
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	goalSaves      *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	recordRetries  *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		goalSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goal_saves_total",
			Help:      "Goal hierarchy saves by outcome.",
		}, []string{"outcome"}),
		upstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversation_upstream_errors_total",
			Help:      "Failed calls to the conversation service by operation.",
		}, []string{"operation"}),
		recordRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_retries_total",
			Help:      "Replayed record operations by error class.",
		}, []string{"class"}),
	}
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveGoalSave records a save outcome: success, failure, timeout or compensated
func (m *Metrics) ObserveGoalSave(outcome string) {
	if m == nil {
		return
	}
	m.goalSaves.WithLabelValues(outcome).Inc()
}

// ObserveUpstreamError records a failed conversation call
func (m *Metrics) ObserveUpstreamError(operation string) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

// ObserveRecordRetry records a replayed record operation
func (m *Metrics) ObserveRecordRetry(class string) {
	if m == nil {
		return
	}
	m.recordRetries.WithLabelValues(class).Inc()
}
