package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/studyx/internal/models"
	"golang.org/x/time/rate"
)

// BulkDeleteOpts contains configuration for bulk checklist deletes.
type BulkDeleteOpts struct {
	NumWorkers int     // Concurrent workers (default: 3, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
}

// DeleteResult is the outcome for one checklist item.
type DeleteResult struct {
	ID    models.ID
	Error error
}

// BulkDeleteResult summarizes a bulk delete. Results are in completion order.
type BulkDeleteResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []DeleteResult
}

// Failures returns the results that did not succeed.
func (r *BulkDeleteResult) Failures() []DeleteResult {
	var out []DeleteResult
	for _, res := range r.Results {
		if res.Error != nil {
			out = append(out, res)
		}
	}
	return out
}

// DeleteMany deletes several items with a rate-limited worker pool. A failure on one item does not stop the
// others; ids not attempted because ctx ended are reported with the context error.
func (m *ChecklistManager) DeleteMany(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []models.ID,
	opts BulkDeleteOpts,
) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return &BulkDeleteResult{}, nil
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan models.ID, len(ids))
	results := make(chan DeleteResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go m.deleteWorker(ctx, &wg, limiter, jobs, results)
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &BulkDeleteResult{Total: len(ids), Results: make([]DeleteResult, 0, len(ids))}
	for res := range results {
		result.Results = append(result.Results, res)
		step := len(result.Results)
		if res.Error == nil {
			result.Succeeded++
			sendProgress(prog, deleteCompletedUpdate(step, len(ids), res.ID))
		} else {
			result.Failed++
			m.logger.Warn("checklist delete failed", "id", res.ID, "error", res.Error)
			sendProgress(prog, deleteFailedUpdate(step, len(ids), res.ID, res.Error))
		}
	}

	if result.Failed > 0 {
		return result, fmt.Errorf("%d of %d deletes failed", result.Failed, result.Total)
	}
	return result, nil
}

// deleteWorker deletes ids from the jobs channel until it is drained.
func (m *ChecklistManager) deleteWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan models.ID,
	results chan<- DeleteResult,
) {
	defer wg.Done()

	for id := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- DeleteResult{ID: id, Error: err}
			continue
		}
		results <- DeleteResult{ID: id, Error: m.svc.Delete(ctx, id)}
	}
}
