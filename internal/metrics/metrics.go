package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubtix_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubtix_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	DiscountEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubtix_discount_evaluations_total",
			Help: "Discount evaluations by outcome",
		},
		[]string{"outcome"},
	)

	OutboxEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubtix_outbox_emails_total",
			Help: "Outbox emails processed by result",
		},
		[]string{"result"},
	)
)
