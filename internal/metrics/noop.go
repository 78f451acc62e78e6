package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

// Linking - noop implementations
func (n *NoopMetrics) RecordLinkAttempt(result string)       {}
func (n *NoopMetrics) RecordDisconnect(revoked bool)         {}
func (n *NoopMetrics) RecordStateVerification(result string) {}

// Credentials - noop implementations
func (n *NoopMetrics) RecordTokenRefresh(success bool) {}

// Sync - noop implementations
func (n *NoopMetrics) RecordSync(result string, duration time.Duration, stored int) {}
func (n *NoopMetrics) RecordMessageFetchFailure()                                   {}

func (n *NoopMetrics) RecordProviderCall(
	operation string,
	success bool,
	duration time.Duration,
) {
}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
