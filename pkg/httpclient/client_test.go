package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientType(t *testing.T) {
	ct, err := ParseClientType("browser")
	require.NoError(t, err)
	assert.Equal(t, BrowserClient, ct)

	ct, err = ParseClientType("")
	require.NoError(t, err)
	assert.Equal(t, CloudflareClient, ct)

	_, err = ParseClientType("firefox")
	assert.Error(t, err)
}

func TestClientHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer server.Close()

	resp, err := NewClient(CloudflareClient).Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "curl/8.7.1", got.Get("User-Agent"))

	resp, err = NewClient(BrowserClient).Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, got.Get("User-Agent"), "Mozilla/5.0")
	assert.Contains(t, got.Get("Accept-Language"), "ka-GE")
}

func TestNewClientWithTimeout_Default(t *testing.T) {
	c := NewClientWithTimeout(BrowserClient, 0)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
	assert.Equal(t, BrowserClient, c.Type())

	c = NewClientWithTimeout(CloudflareClient, time.Second)
	assert.Equal(t, time.Second, c.client.Timeout)
}
