// Package harvest runs a catalog through the fetcher and the extractor.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipe-harvest/pkg/catalog"
	"recipe-harvest/pkg/domain"
	"recipe-harvest/pkg/extractor"
	"recipe-harvest/pkg/fetch"
	"recipe-harvest/pkg/metrics"
)

// Result is the outcome of one harvest run.
// Records and Failures partition the discovered URLs, both in catalog order.
type Result struct {
	RunID    string
	URLs     []string
	Records  []domain.Recipe
	Failures []domain.Failure
}

// Coordinator ties a catalog parser, a fetcher and an extractor together
type Coordinator struct {
	parser    catalog.Parser
	fetcher   *fetch.Fetcher
	extractor extractor.Extractor
	baseURL   string
	limit     int
	logger    *zap.Logger

	now   func() time.Time
	runID func() string
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger used for run progress
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithExtractor replaces the default page extractor
func WithExtractor(e extractor.Extractor) Option {
	return func(c *Coordinator) {
		if e != nil {
			c.extractor = e
		}
	}
}

// WithClock sets the clock used to stamp records
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRunID sets the run identifier generator
func WithRunID(runID func() string) Option {
	return func(c *Coordinator) {
		if runID != nil {
			c.runID = runID
		}
	}
}

// New creates a new coordinator. limit <= 0 uses fetch.DefaultConcurrency.
func New(parser catalog.Parser, fetcher *fetch.Fetcher, baseURL string, limit int, opts ...Option) *Coordinator {
	if limit <= 0 {
		limit = fetch.DefaultConcurrency
	}
	c := &Coordinator{
		parser:    parser,
		fetcher:   fetcher,
		extractor: extractor.NewDefault(),
		baseURL:   baseURL,
		limit:     limit,
		logger:    zap.NewNop(),
		now:       time.Now,
		runID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HarvestURL fetches the catalog page and harvests it
func (c *Coordinator) HarvestURL(ctx context.Context, catalogURL string) (Result, error) {
	c.logger.Info("Fetching catalog", zap.String("url", catalogURL))

	document, err := c.fetcher.Fetch(ctx, catalogURL)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	return c.Harvest(ctx, document)
}

// Harvest discovers the entry URLs in catalogDocument, fetches them under the
// concurrency limit and extracts one recipe per successful page.
// A failed URL never aborts the run; it is reported in Result.Failures.
// The only returned error is a catalog that cannot be parsed.
func (c *Coordinator) Harvest(ctx context.Context, catalogDocument string) (Result, error) {
	urls, err := c.parser.Entries(catalogDocument)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse catalog: %w", err)
	}

	result := Result{
		RunID:    c.runID(),
		URLs:     urls,
		Records:  make([]domain.Recipe, 0, len(urls)),
		Failures: make([]domain.Failure, 0),
	}
	logger := c.logger.With(zap.String("run_id", result.RunID))
	logger.Info("Harvest started", zap.Int("urls", len(urls)), zap.Int("limit", c.limit))

	pages := c.fetcher.FetchAll(ctx, urls, c.limit)
	harvestedAt := c.now().UTC()

	for _, page := range pages {
		if !page.OK() {
			result.Failures = append(result.Failures, c.fail(logger, page.URL, domain.StageFetch, page.Err))
			continue
		}

		recipe, err := c.extractor.Extract(page.Body, page.URL, c.baseURL)
		if err != nil {
			result.Failures = append(result.Failures, c.fail(logger, page.URL, domain.StageExtract, err))
			continue
		}

		recipe.RunID = result.RunID
		recipe.HarvestedAt = harvestedAt
		result.Records = append(result.Records, recipe)
	}

	metrics.RecordsExtracted(len(result.Records))
	logger.Info("Harvest finished",
		zap.Int("records", len(result.Records)),
		zap.Int("failures", len(result.Failures)))

	return result, nil
}

func (c *Coordinator) fail(logger *zap.Logger, url string, stage domain.Stage, cause error) domain.Failure {
	metrics.FailureRecorded(string(stage))
	logger.Warn("Entry failed", zap.String("url", url), zap.String("stage", string(stage)), zap.Error(cause))
	return domain.Failure{URL: url, Stage: stage, Cause: cause}
}

// Err joins every failure of the run, nil when there are none
func (r Result) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}
