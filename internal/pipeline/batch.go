package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/tuivet/tuivet/internal/types"
)

// Validation sessions share no mutable state, so independent files can
// run concurrently. The batch runner bounds parallelism with a weighted
// semaphore and throttles sandbox spawns so a large batch at full depth
// does not fork-bomb the host.

// DefaultBatchConcurrency bounds simultaneous validation sessions.
const DefaultBatchConcurrency = 4

// FileResult pairs an input path with its validation outcome.
type FileResult struct {
	Path   string
	Result *types.ValidationResult
}

// BatchConfig configures a batch run.
type BatchConfig struct {
	// Concurrency bounds simultaneous sessions (default 4)
	Concurrency int64

	// SpawnsPerSecond throttles full-depth sandbox launches;
	// zero means no throttle
	SpawnsPerSecond float64
}

// ValidateFiles validates every path at the given depth, preserving
// input order in the returned slice. A file that cannot be read gets a
// status=error result; it does not abort the rest of the batch.
func (o *Orchestrator) ValidateFiles(ctx context.Context, paths []string, depth types.Depth, cfg BatchConfig) []FileResult {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	var limiter *rate.Limiter
	if cfg.SpawnsPerSecond > 0 && depth == types.DepthFull {
		limiter = rate.NewLimiter(rate.Limit(cfg.SpawnsPerSecond), 1)
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]FileResult, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context canceled: report the remainder as infrastructure
			// failures rather than returning partial nils.
			for j := i; j < len(paths); j++ {
				results[j] = FileResult{Path: paths[j], Result: readFailure(paths[j], err)}
			}
			break
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)

			source, err := os.ReadFile(path)
			if err != nil {
				results[i] = FileResult{Path: path, Result: readFailure(path, err)}
				return
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					results[i] = FileResult{Path: path, Result: readFailure(path, err)}
					return
				}
			}
			results[i] = FileResult{Path: path, Result: o.Validate(ctx, string(source), depth)}
		}(i, path)
	}
	wg.Wait()

	return results
}

func readFailure(path string, err error) *types.ValidationResult {
	r := types.NewResult([]types.ValidationError{{
		Code:     "S403",
		Level:    types.LevelSandbox,
		Message:  fmt.Sprintf("Cannot validate %s: %v", path, err),
		Severity: types.SeverityError,
	}}, types.Metadata{})
	r.Status = types.StatusError
	return r
}
