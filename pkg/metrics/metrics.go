package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackit_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// VotesCast counts vote casts by target kind and whether a new row was created (created|updated).
	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackit_votes_cast_total",
			Help: "Total number of vote casts",
		},
		[]string{"target", "outcome"},
	)

	// AcceptTransitions counts answer acceptance state changes (accept|unaccept).
	AcceptTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackit_accept_transitions_total",
			Help: "Total number of answer acceptance transitions",
		},
		[]string{"transition"},
	)

	// NotificationsFanout counts notifications produced by the fan-out component,
	// labelled by kind and delivery result (created|suppressed|failed).
	NotificationsFanout = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackit_notifications_fanout_total",
			Help: "Total number of notification fan-out attempts",
		},
		[]string{"kind", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stackit_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
