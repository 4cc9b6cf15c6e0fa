package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperpharmacy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paperpharmacy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paperpharmacy_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Prescriptions
	Prescriptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperpharmacy_prescriptions_total",
			Help: "Prescription requests by outcome",
		},
		[]string{"outcome"}, // "success", "invalid", "failed"
	)

	// Upstream APIs
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paperpharmacy_upstream_request_duration_seconds",
			Help:    "Duration of calls to upstream APIs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paperpharmacy_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperpharmacy_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	SearchCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperpharmacy_search_cache_lookups_total",
			Help: "Bookseller search cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// Covers
	CoverProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperpharmacy_cover_probes_total",
			Help: "Cover image probes by outcome",
		},
		[]string{"outcome"},
	)

	CoverResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperpharmacy_cover_resolutions_total",
			Help: "Cover resolution cycles by terminal outcome",
		},
		[]string{"outcome"}, // "resolved", "fallback", "empty", "cancelled"
	)
)
