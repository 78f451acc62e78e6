package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	m := Init(true)
	assert.NotNil(t, m)

	// Type assert to concrete Metrics to access fields
	metrics, ok := m.(*Metrics)
	assert.True(t, ok, "Init(true) should return *Metrics")
	assert.NotNil(t, metrics.LinkAttemptsTotal)
	assert.NotNil(t, metrics.SyncRunsTotal)
	assert.NotNil(t, metrics.HTTPRequestsTotal)

	// Second call returns the same registered instance
	assert.Same(t, metrics, Init(true))
}

func TestInitNoop(t *testing.T) {
	m := Init(false)
	assert.NotNil(t, m)

	_, ok := m.(*NoopMetrics)
	assert.True(t, ok, "Init(false) should return *NoopMetrics")

	// Noop must accept every call
	m.RecordLinkAttempt("connected")
	m.RecordDisconnect(true)
	m.RecordStateVerification("valid")
	m.RecordTokenRefresh(false)
	m.RecordSync("success", time.Second, 3)
	m.RecordMessageFetchFailure()
	m.RecordProviderCall("list_messages", true, time.Millisecond)
	m.RecordDatabaseQueryError("insert_messages")
}

func TestRecordLinkAttempt(t *testing.T) {
	m := Init(true).(*Metrics)

	before := testutil.ToFloat64(m.LinkAttemptsTotal.WithLabelValues("already_connected"))
	m.RecordLinkAttempt("already_connected")
	after := testutil.ToFloat64(m.LinkAttemptsTotal.WithLabelValues("already_connected"))
	assert.InDelta(t, 1, after-before, 0.0001)
}

func TestRecordTokenRefresh(t *testing.T) {
	m := Init(true).(*Metrics)

	success := testutil.ToFloat64(m.TokenRefreshesTotal.WithLabelValues(resultSuccess))
	failed := testutil.ToFloat64(m.TokenRefreshesTotal.WithLabelValues(resultError))

	m.RecordTokenRefresh(true)
	m.RecordTokenRefresh(false)
	m.RecordTokenRefresh(false)

	assert.InDelta(t, success+1, testutil.ToFloat64(m.TokenRefreshesTotal.WithLabelValues(resultSuccess)), 0.0001)
	assert.InDelta(t, failed+2, testutil.ToFloat64(m.TokenRefreshesTotal.WithLabelValues(resultError)), 0.0001)
}

func TestRecordSync(t *testing.T) {
	m := Init(true).(*Metrics)

	stored := testutil.ToFloat64(m.MessagesStoredTotal)
	runs := testutil.ToFloat64(m.SyncRunsTotal.WithLabelValues("partial"))

	m.RecordSync("partial", 2*time.Second, 4)
	m.RecordSync("partial", time.Second, 0)

	assert.InDelta(t, stored+4, testutil.ToFloat64(m.MessagesStoredTotal), 0.0001)
	assert.InDelta(t, runs+2, testutil.ToFloat64(m.SyncRunsTotal.WithLabelValues("partial")), 0.0001)
}

func TestRecordMessageFetchFailure(t *testing.T) {
	m := Init(true).(*Metrics)

	before := testutil.ToFloat64(m.MessageFetchFailuresTotal)
	m.RecordMessageFetchFailure()
	assert.InDelta(t, before+1, testutil.ToFloat64(m.MessageFetchFailuresTotal), 0.0001)
}

func TestRecordProviderCall(t *testing.T) {
	m := Init(true).(*Metrics)

	before := testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("get_message", resultFailure))
	m.RecordProviderCall("get_message", false, 30*time.Millisecond)
	m.RecordProviderCall("get_message", true, 10*time.Millisecond)
	after := testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("get_message", resultFailure))
	assert.InDelta(t, 1, after-before, 0.0001)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := Init(true).(*Metrics)

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(m))
	r.GET("/api/mailbox/status", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/mailbox/status", "200"),
	)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/api/mailbox/status", nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)

	after := testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/mailbox/status", "200"),
	)
	assert.InDelta(t, 1, after-before, 0.0001)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		fullPath string
		expected string
	}{
		{"empty path", "", "unknown"},
		{"root path", "/", "/"},
		{"health check", "/health", "/health"},
		{"messages", "/api/mailbox/messages", "/api/mailbox/messages"},
		{"parameterized", "/api/mailbox/messages/:id", "/api/mailbox/messages/:id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizePath(tt.fullPath)
			assert.Equal(t, tt.expected, result)
		})
	}
}
