package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultFailure = "failure"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	// If NoopMetrics, return a lightweight middleware that does nothing
	if _, ok := m.(*NoopMetrics); ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	// Type assert to concrete Metrics for Prometheus access
	metrics, ok := m.(*Metrics)
	if !ok {
		// Fallback if unknown implementation
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		// Increment in-flight counter
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		// Process request
		c.Next()

		// Record metrics after request completes
		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		// Record request count
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()

		// Record request duration
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath converts the actual request path to route pattern
// Returns the route pattern (e.g., "/users/:id") or the path itself if no match
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// RecordLinkAttempt records the outcome of an OAuth callback
func (m *Metrics) RecordLinkAttempt(result string) {
	m.LinkAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordDisconnect records a mailbox disconnect and whether upstream revocation succeeded
func (m *Metrics) RecordDisconnect(revoked bool) {
	m.DisconnectsTotal.WithLabelValues(strconv.FormatBool(revoked)).Inc()
}

// RecordStateVerification records a state token verification result
func (m *Metrics) RecordStateVerification(result string) {
	// result: valid, invalid, expired, replayed
	m.StateVerificationsTotal.WithLabelValues(result).Inc()
}

// RecordTokenRefresh records token refresh attempt
func (m *Metrics) RecordTokenRefresh(success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.TokenRefreshesTotal.WithLabelValues(result).Inc()
}

// RecordSync records one sync invocation
func (m *Metrics) RecordSync(result string, duration time.Duration, stored int) {
	m.SyncRunsTotal.WithLabelValues(result).Inc()
	m.SyncDuration.WithLabelValues(result).Observe(duration.Seconds())
	if stored > 0 {
		m.MessagesStoredTotal.Add(float64(stored))
	}
}

// RecordMessageFetchFailure records a message detail fetch that was skipped
func (m *Metrics) RecordMessageFetchFailure() {
	m.MessageFetchFailuresTotal.Inc()
}

// RecordProviderCall records a call to the mail provider
func (m *Metrics) RecordProviderCall(operation string, success bool, duration time.Duration) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.ProviderCallsTotal.WithLabelValues(operation, result).Inc()
	m.ProviderCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDatabaseQueryError records a failed database query
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
