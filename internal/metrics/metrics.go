// Package metrics provides Prometheus instrumentation for the HTTP surface,
// the request gate and the registration flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all fidena metrics
	Namespace = "fidena"

	LabelMethod     = "method"
	LabelRoute      = "route"
	LabelStatusCode = "status_code"
	LabelOutcome    = "outcome"
	LabelType       = "type"

	// Gate outcomes
	GateForwarded   = "forwarded"
	GateRedirected  = "redirected"
	GatePassthrough = "passthrough"

	// Registration outcomes
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status code",
		},
		[]string{LabelMethod, LabelRoute, LabelStatusCode},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	GateDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "gate_decisions_total",
			Help:      "Request gate decisions by outcome",
		},
		[]string{LabelOutcome},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by type and outcome",
		},
		[]string{LabelType, LabelOutcome},
	)
)

// RecordHTTPRequest records a completed HTTP request
func RecordHTTPRequest(method, route, statusCode string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordGateDecision counts one gate outcome
func RecordGateDecision(outcome string) {
	GateDecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordRegistration counts one registration attempt
func RecordRegistration(registrationType, outcome string) {
	RegistrationsTotal.WithLabelValues(registrationType, outcome).Inc()
}
