package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/prismstudio/certverify/internal/domain/service"
	"github.com/prismstudio/certverify/pkg/constants"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	VerificationRequests *prometheus.CounterVec
	VerificationLatency  prometheus.Histogram
	RateLimitDecisions   *prometheus.CounterVec
	LogWriteFailures     prometheus.Counter
	HTTPRequests         *prometheus.CounterVec
	HTTPLatency          *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VerificationRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_verify_verifications_total",
				Help: "Total number of certificate verification attempts by outcome.",
			},
			[]string{"reason"},
		),
		VerificationLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prism_verify_verification_duration_seconds",
				Help:    "Latency of certificate verifications.",
				Buckets: prometheus.DefBuckets,
			},
		),
		RateLimitDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_verify_rate_limit_decisions_total",
				Help: "Rate limit decisions: allowed, denied or failed_open.",
			},
			[]string{"decision"},
		),
		LogWriteFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "prism_verify_log_write_failures_total",
				Help: "Verification log entries that could not be written.",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_verify_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prism_verify_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RecordVerification records the outcome and duration of one verification.
func (m *Metrics) RecordVerification(reason constants.VerificationReason, duration time.Duration) {
	m.VerificationRequests.WithLabelValues(string(reason)).Inc()
	m.VerificationLatency.Observe(duration.Seconds())
}

// RecordRateLimitDecision records one limiter outcome.
func (m *Metrics) RecordRateLimitDecision(d service.RateLimitDecision) {
	switch {
	case d.FailedOpen:
		m.RateLimitDecisions.WithLabelValues("failed_open").Inc()
	case d.Allowed:
		m.RateLimitDecisions.WithLabelValues("allowed").Inc()
	default:
		m.RateLimitDecisions.WithLabelValues("denied").Inc()
	}
}

// RecordLogWriteFailure counts a verification log entry that was dropped.
func (m *Metrics) RecordLogWriteFailure() {
	m.LogWriteFailures.Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

//Personal.AI order the ending
