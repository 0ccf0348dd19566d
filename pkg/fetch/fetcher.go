// Package fetch issues page requests for the harvester under a fixed concurrency ceiling.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"recipe-harvest/pkg/metrics"
)

// DefaultConcurrency is the number of requests allowed in flight when no limit is given
const DefaultConcurrency = 5

// Result is the outcome of fetching one URL.
// Err == nil means Body holds the document; otherwise the fetch failed with Err.
type Result struct {
	URL  string
	Body string
	Err  error
}

// OK reports whether the fetch succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Fetcher fetches pages through a Getter
type Fetcher struct {
	getter Getter
	logger *zap.Logger
}

// New creates a new fetcher
func New(getter Getter, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		getter: getter,
		logger: logger,
	}
}

// Fetch fetches a single page synchronously
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := f.getter.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return body, nil
}

// FetchAll fetches every URL with at most limit requests in flight.
// The returned slice has the same length and order as urls; a failed request
// only affects its own slot. limit <= 0 uses DefaultConcurrency.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, limit int) []Result {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]Result, len(urls))
	sem := semaphore.NewWeighted(int64(limit))
	var wg sync.WaitGroup

	f.logger.Info("Fetching pages", zap.Int("count", len(urls)), zap.Int("limit", limit))

	for i, url := range urls {
		results[i].URL = url

		if err := sem.Acquire(ctx, 1); err != nil {
			// Context is done: this and every remaining slot fail without a request
			for j := i; j < len(urls); j++ {
				results[j] = Result{URL: urls[j], Err: fmt.Errorf("fetch %s: %w", urls[j], err)}
			}
			break
		}

		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = f.fetchOne(ctx, url)
		}(i, url)
	}

	wg.Wait()
	return results
}

// fetchOne performs one request and converts its error into the slot result
func (f *Fetcher) fetchOne(ctx context.Context, url string) Result {
	metrics.FetchStarted()
	start := time.Now()

	body, err := f.getter.Get(ctx, url)
	elapsed := time.Since(start)

	if err != nil {
		metrics.FetchFinished(metrics.OutcomeFailure, elapsed)
		f.logger.Warn("Fetch failed", zap.String("url", url), zap.Duration("elapsed", elapsed), zap.Error(err))
		return Result{URL: url, Err: fmt.Errorf("fetch %s: %w", url, err)}
	}

	metrics.FetchFinished(metrics.OutcomeSuccess, elapsed)
	f.logger.Debug("Fetched page", zap.String("url", url), zap.Int("bytes", len(body)), zap.Duration("elapsed", elapsed))
	return Result{URL: url, Body: body}
}
