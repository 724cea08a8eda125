package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slidecast_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slidecast_http_inflight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Upstream API call metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_upstream_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"model", "status_class"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slidecast_upstream_request_duration_seconds",
			Help:    "Upstream API request latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	UpstreamRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_upstream_retries_total",
			Help: "Total number of upstream retry attempts",
		},
		[]string{"model", "reason"},
	)

	// Streaming metrics
	SSEEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_sse_events_total",
			Help: "Total number of SSE events written downstream",
		},
		[]string{"path"},
	)

	SSEStreamsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_sse_streams_closed_total",
			Help: "Stream terminations by reason (done/error/client_gone)",
		},
		[]string{"path", "reason"},
	)

	// Assembler metrics
	SlidesEmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slidecast_slides_emitted_total",
			Help: "Total number of completed slides emitted by the assembler",
		},
	)

	MalformedChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slidecast_malformed_chunks_total",
			Help: "Stream chunks skipped because their JSON payload did not parse",
		},
	)

	// Deck metrics
	DecksSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_decks_saved_total",
			Help: "Decks persisted, labeled by storage backend",
		},
		[]string{"backend"},
	)

	DeckExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slidecast_deck_exports_total",
			Help: "Deck exports, labeled by output format",
		},
		[]string{"format"},
	)

	// Rate limiter bookkeeping
	RateLimitKeysGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slidecast_ratelimit_keys",
			Help: "Number of per-client limiters currently tracked",
		},
	)

	RateLimitRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slidecast_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
