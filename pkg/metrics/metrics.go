package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famboard_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ClassificationRequests counts note classification calls by outcome
	// (success|parse_failure|error).
	ClassificationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famboard_classification_requests_total",
			Help: "Total number of note classification requests",
		},
		[]string{"result"},
	)

	// SummaryRequests counts summary generation calls by outcome.
	SummaryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famboard_summary_requests_total",
			Help: "Total number of family summary generations",
		},
		[]string{"result"},
	)

	// InviteCodesIssued counts issued invite codes.
	InviteCodesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "famboard_invite_codes_issued_total",
			Help: "Total number of invite codes issued",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "famboard_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
