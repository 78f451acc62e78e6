package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient()

	assert.Equal(t, defaultMaxRetries, client.maxRetries)
	assert.Equal(t, defaultInitialRetryDelay, client.initialRetryDelay)
	assert.Equal(t, defaultMaxRetryDelay, client.maxRetryDelay)
	assert.InDelta(t, defaultRetryDelayMultiple, client.retryDelayMultiple, 0.0001)
	assert.NotNil(t, client.httpClient)
	assert.Nil(t, client.onRetry)
}

func TestNewClient_InvalidOptionsIgnored(t *testing.T) {
	client := NewClient(
		WithMaxRetries(-1),
		WithInitialRetryDelay(0),
		WithMaxRetryDelay(-time.Second),
		WithRetryDelayMultiple(0.5),
		WithHTTPClient(nil),
		WithRetryableChecker(nil),
	)

	assert.Equal(t, defaultMaxRetries, client.maxRetries)
	assert.Equal(t, defaultInitialRetryDelay, client.initialRetryDelay)
	assert.Equal(t, defaultMaxRetryDelay, client.maxRetryDelay)
	assert.InDelta(t, defaultRetryDelayMultiple, client.retryDelayMultiple, 0.0001)
	assert.Equal(t, http.DefaultClient, client.httpClient)
	assert.NotNil(t, client.retryableChecker)
}

func TestDefaultRetryableChecker(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		expected bool
	}{
		{"network error", errors.New("connection reset"), 0, true},
		{"ok", nil, http.StatusOK, false},
		{"not found", nil, http.StatusNotFound, false},
		{"unauthorized", nil, http.StatusUnauthorized, false},
		{"too many requests", nil, http.StatusTooManyRequests, true},
		{"internal error", nil, http.StatusInternalServerError, true},
		{"bad gateway", nil, http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.status != 0 {
				resp = &http.Response{StatusCode: tt.status}
			}
			assert.Equal(t, tt.expected, DefaultRetryableChecker(tt.err, resp))
		})
	}
	assert.False(t, DefaultRetryableChecker(nil, nil))
}

func newFastClient(opts ...Option) *Client {
	base := []Option{
		WithInitialRetryDelay(time.Millisecond),
		WithMaxRetryDelay(5 * time.Millisecond),
	}
	return NewClient(append(base, opts...)...)
}

func TestClient_Do_Success(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newFastClient(WithMaxRetries(3))
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Do_RetryOn500ThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	var hooks []int
	client := newFastClient(
		WithMaxRetries(3),
		WithRetryHook(func(attempt int, err error, resp *http.Response) {
			hooks = append(hooks, attempt)
		}),
	)
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []int{1, 2}, hooks)
}

func TestClient_Do_ExhaustedReturnsLastResponse(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("still down"))
	}))
	defer server.Close()

	client := newFastClient(WithMaxRetries(2))
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "last response body stays readable")
	assert.Equal(t, "still down", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_NoRetryOn4xx(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newFastClient(WithMaxRetries(3))
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Do_ZeroRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newFastClient(WithMaxRetries(0))
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Do_ReplaysFormBody(t *testing.T) {
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		bodies = append(bodies, r.PostForm.Get("token"))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newFastClient(WithMaxRetries(1))
	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader("token=abc"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"abc", "abc"}, bodies)
}

func TestClient_Do_NetworkErrorExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newFastClient(WithMaxRetries(1))
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "request failed after 1 retries")
}

func TestClient_Do_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(
		WithMaxRetries(5),
		WithInitialRetryDelay(time.Second),
	)
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	resp, err := client.Do(ctx, req)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_Backoff_RetryAfter(t *testing.T) {
	client := NewClient(WithMaxRetryDelay(3 * time.Second))

	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, client.backoff(100*time.Millisecond, resp))

	resp.Header.Set("Retry-After", "60")
	assert.Equal(t, 3*time.Second, client.backoff(100*time.Millisecond, resp), "capped at max delay")

	resp.Header.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Equal(t, 100*time.Millisecond, client.backoff(100*time.Millisecond, resp))

	other := &http.Response{StatusCode: http.StatusInternalServerError, Header: http.Header{}}
	other.Header.Set("Retry-After", "2")
	assert.Equal(t, 100*time.Millisecond, client.backoff(100*time.Millisecond, other))
}

func TestClient_Do_CustomRetryableChecker(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newFastClient(
		WithMaxRetries(2),
		WithRetryableChecker(func(err error, resp *http.Response) bool {
			return resp != nil && resp.StatusCode == http.StatusConflict
		}),
	)
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
