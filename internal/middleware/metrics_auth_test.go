package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const testMetricsToken = "test-secret-token-123"

func TestMetricsAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"open when no token configured", "", "", http.StatusOK, "metrics"},
		{"valid token", testMetricsToken, "Bearer " + testMetricsToken, http.StatusOK, "metrics"},
		{"invalid token", testMetricsToken, "Bearer wrong-token", http.StatusUnauthorized, "Invalid token"},
		{"missing header", testMetricsToken, "", http.StatusUnauthorized, "Bearer token required"},
		{"basic scheme", testMetricsToken, "Basic " + testMetricsToken, http.StatusUnauthorized, "Bearer token required"},
		{"token prefix only", testMetricsToken, "Bearer " + testMetricsToken[:4], http.StatusUnauthorized, "Invalid token"},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(MetricsAuthMiddleware(tt.token))
			r.GET("/metrics", func(c *gin.Context) {
				c.String(http.StatusOK, "metrics")
			})

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="Metrics"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
