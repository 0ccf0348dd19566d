// Package replication copies harvested recipes from MongoDB into Postgres.
package replication

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"recipe-harvest/pkg/db"
	"recipe-harvest/pkg/domain"
)

const (
	batchSize  = 100
	numWorkers = 5
)

// Target is the Postgres side of a replication
type Target interface {
	db.RecipeStore
	db.LinkIndex
	EnsureSchema(ctx context.Context) error
}

// Config wires the replication dependencies.
type Config struct {
	Source db.RecipeSource
	Target Target
	Logger *zap.Logger
}

// Replicator replicates recipes from MongoDB to Postgres.
//
// This is a one-shot, "copy everything" flow: links already present in Postgres are skipped.
type Replicator struct {
	source db.RecipeSource
	target Target
	logger *zap.Logger
}

// Stats summarizes a replication run
type Stats struct {
	Processed int
	Inserted  int
}

// NewReplicator creates a new replicator
func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("mongo source is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("postgres target is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replicator{
		source: cfg.Source,
		target: cfg.Target,
		logger: logger,
	}, nil
}

// ReplicateRecipes reads all recipes from Mongo and inserts the ones whose
// link is not yet in Postgres. Batches are processed in parallel.
func (r *Replicator) ReplicateRecipes(ctx context.Context) (Stats, error) {
	if err := r.target.EnsureSchema(ctx); err != nil {
		return Stats{}, err
	}

	recipes, err := r.source.FindAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read recipes from mongo: %w", err)
	}

	r.logger.Info("Loaded recipes from Mongo", zap.Int("count", len(recipes)))

	stats, err := r.processBatches(ctx, recipes)
	if err != nil {
		return stats, err
	}

	r.logger.Info("Replication complete", zap.Int("processed", stats.Processed), zap.Int("inserted", stats.Inserted))
	return stats, nil
}

type batchJob struct {
	batch      []domain.Recipe
	start, end int
}

type batchResult struct {
	processed int
	inserted  int
	err       error
}

// processBatches fans batches out to a fixed worker pool and fails fast on the first error
func (r *Replicator) processBatches(ctx context.Context, recipes []domain.Recipe) (Stats, error) {
	numBatches := (len(recipes) + batchSize - 1) / batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(recipes); start += batchSize {
		end := min(start+batchSize, len(recipes))
		jobs <- batchJob{batch: recipes[start:end], start: start, end: end}
	}
	close(jobs)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, err := r.processBatch(ctx, job)
				results <- batchResult{processed: len(job.batch), inserted: inserted, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var stats Stats
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
				cancel()
			}
			continue
		}
		stats.Processed += result.processed
		stats.Inserted += result.inserted
	}

	return stats, firstErr
}

// processBatch checks existing links, filters new recipes and inserts them
func (r *Replicator) processBatch(ctx context.Context, job batchJob) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	existing, err := r.target.ExistingLinks(ctx, linksOf(job.batch))
	if err != nil {
		return 0, fmt.Errorf("check existing links for batch [%d:%d]: %w", job.start, job.end, err)
	}

	toInsert := filterNew(job.batch, existing)
	if len(toInsert) == 0 {
		r.logger.Debug("No new recipes in batch", zap.Int("start", job.start), zap.Int("end", job.end))
		return 0, nil
	}

	if _, err := r.target.InsertMany(ctx, "", toInsert); err != nil {
		return 0, fmt.Errorf("insert batch [%d:%d]: %w", job.start, job.end, err)
	}
	r.logger.Debug("Inserted batch", zap.Int("start", job.start), zap.Int("end", job.end), zap.Int("inserted", len(toInsert)))

	return len(toInsert), nil
}

func linksOf(batch []domain.Recipe) []string {
	links := make([]string, 0, len(batch))
	for _, recipe := range batch {
		if recipe.Link != "" {
			links = append(links, recipe.Link)
		}
	}
	return links
}

// filterNew drops recipes without a link, already stored links and repeats within the batch
func filterNew(batch []domain.Recipe, existing map[string]bool) []domain.Recipe {
	seen := make(map[string]bool, len(existing))
	for link := range existing {
		seen[link] = true
	}

	out := make([]domain.Recipe, 0, len(batch))
	for _, recipe := range batch {
		if recipe.Link == "" || seen[recipe.Link] {
			continue
		}
		seen[recipe.Link] = true
		out = append(out, recipe)
	}
	return out
}
