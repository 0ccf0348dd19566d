package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"recipe-harvest/pkg/httpclient"
)

var (
	// ErrStatus is wrapped by fetch errors caused by a non-success HTTP status
	ErrStatus = errors.New("unexpected status code")
	// ErrEmptyBody is returned when a page responds with an empty document
	ErrEmptyBody = errors.New("empty response body")
)

// Getter performs a single GET and returns the response body as text
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// HTTPGetter implements Getter on top of the configured HTTP client
type HTTPGetter struct {
	client *httpclient.HTTPClient
}

// NewHTTPGetter creates a new HTTP getter
func NewHTTPGetter(client *httpclient.HTTPClient) *HTTPGetter {
	if client == nil {
		client = httpclient.NewClient(httpclient.CloudflareClient)
	}
	return &HTTPGetter{client: client}
}

// Get fetches the URL and returns the body of a 2xx response
func (g *HTTPGetter) Get(ctx context.Context, url string) (string, error) {
	resp, err := g.client.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if strings.TrimSpace(string(body)) == "" {
		return "", ErrEmptyBody
	}

	return string(body), nil
}
