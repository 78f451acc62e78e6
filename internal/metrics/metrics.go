package metrics

import (
	"sync"

	"github.com/go-authgate/mailbridge/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics surface consumed by services and handlers
type Recorder = core.Recorder

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Linking Metrics
	LinkAttemptsTotal       *prometheus.CounterVec
	DisconnectsTotal        *prometheus.CounterVec
	StateVerificationsTotal *prometheus.CounterVec

	// Credential Metrics
	TokenRefreshesTotal *prometheus.CounterVec

	// Sync Metrics
	SyncRunsTotal             *prometheus.CounterVec
	SyncDuration              *prometheus.HistogramVec
	MessagesStoredTotal       prometheus.Counter
	MessageFetchFailuresTotal prometheus.Counter
	ProviderCallsTotal        *prometheus.CounterVec
	ProviderCallDuration      *prometheus.HistogramVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	m := &Metrics{
		// Linking Metrics
		LinkAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbox_link_attempts_total",
				Help: "Total number of mailbox link callbacks by outcome",
			},
			[]string{"result"}, // connected, reconnected, already_connected, failed
		),
		DisconnectsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbox_disconnects_total",
				Help: "Total number of mailbox disconnects",
			},
			[]string{"revoked"}, // true, false
		),
		StateVerificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbox_state_verifications_total",
				Help: "Total number of OAuth state token verifications",
			},
			[]string{"result"}, // valid, invalid, expired, replayed
		),

		// Credential Metrics
		TokenRefreshesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbox_token_refreshes_total",
				Help: "Total number of provider access token refreshes",
			},
			[]string{"result"}, // success, error
		),

		// Sync Metrics
		SyncRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbox_sync_runs_total",
				Help: "Total number of sync invocations by outcome",
			},
			[]string{"result"}, // success, partial, truncated, in_progress, error
		),
		SyncDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailbox_sync_duration_seconds",
				Help:    "Duration of sync invocations",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"result"},
		),
		MessagesStoredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailbox_messages_stored_total",
				Help: "Total number of messages newly stored by sync",
			},
		),
		MessageFetchFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailbox_message_fetch_failures_total",
				Help: "Total number of message detail fetches skipped after failure",
			},
		),
		ProviderCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailbox_provider_calls_total",
				Help: "Total number of calls to the mail provider",
			},
			[]string{"operation", "result"},
		),
		ProviderCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "mailbox_provider_call_duration_seconds",
				Help: "Latency of calls to the mail provider",
				Buckets: []float64{
					0.010,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"operation"},
		),

		// HTTP Request Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		// Database Query Metrics
		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"},
		),
	}

	return m
}
