package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Linking
	RecordLinkAttempt(result string)
	RecordDisconnect(revoked bool)
	RecordStateVerification(result string)

	// Credentials
	RecordTokenRefresh(success bool)

	// Sync
	RecordSync(result string, duration time.Duration, stored int)
	RecordMessageFetchFailure()

	// Provider calls
	RecordProviderCall(operation string, success bool, duration time.Duration)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}
