package middleware

import (
	"fmt"
	"time"

	"slidecast-go/internal/monitoring"

	"github.com/gin-gonic/gin"
)

func statusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", code/100)
}

// Metrics is an HTTP middleware to track per-route counters and latency histogram
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		monitoring.HTTPInFlight.Inc()
		c.Next()
		monitoring.HTTPInFlight.Dec()

		durSec := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		sc := statusClass(c.Writer.Status())

		monitoring.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, sc).Inc()
		monitoring.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, sc).Observe(durSec)
	}
}

// RecordSSEEvent counts one SSE event written on the given route.
func RecordSSEEvent(path string) {
	monitoring.SSEEventsTotal.WithLabelValues(path).Inc()
}

// RecordSSEClose records a stream termination with its reason.
func RecordSSEClose(path, reason string) {
	monitoring.SSEStreamsClosed.WithLabelValues(path, reason).Inc()
}

// RecordUpstream records one upstream call outcome.
func RecordUpstream(model string, status int, dur time.Duration) {
	monitoring.UpstreamRequestsTotal.WithLabelValues(model, statusClass(status)).Inc()
	monitoring.UpstreamRequestDuration.WithLabelValues(model).Observe(dur.Seconds())
}

// RecordUpstreamRetry records one retry attempt with its trigger.
func RecordUpstreamRetry(model, reason string) {
	monitoring.UpstreamRetriesTotal.WithLabelValues(model, reason).Inc()
}
