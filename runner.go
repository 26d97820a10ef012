package strata

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tsawler/strata/model"
)

// Job is one document for batch processing.
type Job struct {
	Name  string
	Pages []*model.Page
}

// Result is the outcome of one job. Document is nil when Err is set.
type Result struct {
	ID       uuid.UUID
	Name     string
	Document *model.Document
	Err      error
}

// Failed reports whether the job produced no document.
func (r Result) Failed() bool { return r.Err != nil }

// Runner processes documents concurrently over a bounded worker pool.
// Documents are independent: one failing document is logged and skipped
// while the rest of the batch proceeds.
type Runner struct {
	pipeline *Pipeline
	workers  int
	logger   *slog.Logger
}

// NewRunner creates a runner dispatching jobs to the given number of
// workers. A nil logger discards all run logging.
func NewRunner(pipeline *Pipeline, workers int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{pipeline: pipeline, workers: workers, logger: logger}
}

// Run processes the jobs and returns one result per job, in job order.
// Each job gets a fresh ID for log correlation. Cancelling the context
// stops dispatching new jobs; already-dispatched jobs finish their
// current stage and report the cancellation.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = r.process(ctx, jobs[i])
			}
		}()
	}

	cancelled := -1
	for i := range jobs {
		select {
		case <-ctx.Done():
			cancelled = i
		case indices <- i:
			continue
		}
		break
	}
	close(indices)
	wg.Wait()

	if cancelled >= 0 {
		for i := cancelled; i < len(jobs); i++ {
			results[i] = Result{ID: uuid.New(), Name: jobs[i].Name, Err: ctx.Err()}
		}
	}
	return results
}

func (r *Runner) process(ctx context.Context, job Job) Result {
	id := uuid.New()
	log := r.logger.With("job", id.String(), "document", job.Name)
	log.Info("processing document", "pages", len(job.Pages))

	doc, err := r.pipeline.Dig(ctx, job.Name, job.Pages)
	if err != nil {
		log.Error("document failed", "error", err)
		return Result{ID: id, Name: job.Name, Err: err}
	}

	log.Info("document reconstructed", "nodes", len(doc.Content))
	return Result{ID: id, Name: job.Name, Document: doc}
}
