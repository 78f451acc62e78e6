package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOptimizedTransport(t *testing.T) {
	transport := CreateOptimizedTransport(false)
	assert.Equal(t, maxIdleConns, transport.MaxIdleConns)
	assert.Equal(t, maxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	assert.Nil(t, transport.TLSClientConfig)

	insecure := CreateOptimizedTransport(true)
	require.NotNil(t, insecure.TLSClientConfig)
	assert.True(t, insecure.TLSClientConfig.InsecureSkipVerify)
}

func TestNewProviderHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewProviderHTTPClient(2*time.Second, false)
	require.NoError(t, err)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
