package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyGetter implements Getter using a Colly collector.
// Each Get runs on a clone of the base collector so callbacks never leak between requests.
type CollyGetter struct {
	base *colly.Collector
}

// NewCollyGetter builds a CollyGetter with the given user agent and request timeout
func NewCollyGetter(userAgent string, timeout time.Duration) *CollyGetter {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	if userAgent != "" {
		c.UserAgent = userAgent
	}
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	c.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 15 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	})
	return &CollyGetter{base: c}
}

// Get visits the URL and returns the body of a 2xx response.
// The request carries ctx, so cancelling it aborts the transfer.
func (g *CollyGetter) Get(ctx context.Context, url string) (string, error) {
	collector := g.base.Clone()
	collector.Context = ctx

	var (
		body     string
		status   int
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = string(r.Body)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	err := collector.Visit(url)
	switch {
	case ctx.Err() != nil:
		return "", fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case status != 0 && (status < 200 || status > 299):
		return "", fmt.Errorf("%w: %d", ErrStatus, status)
	case err != nil:
		return "", fmt.Errorf("colly visit failed: %w", err)
	case fetchErr != nil:
		return "", fmt.Errorf("colly response failed: %w", fetchErr)
	case strings.TrimSpace(body) == "":
		return "", ErrEmptyBody
	}
	return body, nil
}
