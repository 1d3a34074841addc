package tasks

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/services"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/wsctl/internal/shared"
	"golang.org/x/time/rate"
)

// BatchOp is an operation that can be applied to many tasks.
type BatchOp string

const (
	BatchStatus        BatchOp = "status"
	BatchTest          BatchOp = "test"
	BatchDeleteResults BatchOp = "delete-results"
)

// ParseBatchOp validates a batch operation name.
func ParseBatchOp(s string) (BatchOp, error) {
	switch op := BatchOp(strings.ToLower(strings.TrimSpace(s))); op {
	case BatchStatus, BatchTest, BatchDeleteResults:
		return op, nil
	default:
		return "", fmt.Errorf("%w: unknown batch operation %q", shared.ErrInvalidArgument, s)
	}
}

func (op BatchOp) action() models.Action {
	switch op {
	case BatchTest:
		return models.ActionTest
	case BatchDeleteResults:
		return models.ActionDeleteResults
	default:
		return models.ActionStatus
	}
}

// BatchOpts contains configuration for a batch run.
type BatchOpts struct {
	NumWorkers int                   // Concurrent workers (default: 4, max: 10)
	RateLimit  float64               // Requests per second (default: 5)
	Recorder   Recorder              // Optional activity recorder
	Progress   chan<- ProgressUpdate // Optional progress stream
	Logger     *log.Logger           // Optional logger (default: discard)
}

// BatchItemResult is the outcome of the operation on one task.
type BatchItemResult struct {
	Index  int
	Task   string
	Op     BatchOp
	Status models.Status // set for status runs
	Output string        // result text of test runs
	Err    error
}

// BatchResult summarizes a batch run. Results keep the order of the input names.
type BatchResult struct {
	Op        BatchOp
	Total     int
	Succeeded int
	Failed    int
	Results   []BatchItemResult
}

type batchJob struct {
	index int
	name  string
}

// RunBatch applies op to every name with a bounded worker pool and a shared request rate limit.
//
// Failures are collected per task; the returned error is non-nil only when the run itself could not start.
func RunBatch(ctx context.Context, api services.TaskAPI, op BatchOp, names []string, opts BatchOpts) (*BatchResult, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: task API not initialized", shared.ErrServiceUnavailable)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one task name", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan batchJob, len(names))
	results := make(chan BatchItemResult, len(names))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go batchWorker(ctx, &wg, api, op, limiter, jobs, results)
	}

	send(opts.Progress, startedUpdate(0, len(names), op))
	for i, name := range names {
		jobs <- batchJob{index: i, name: name}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &BatchResult{Op: op, Total: len(names), Results: make([]BatchItemResult, 0, len(names))}
	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}

		if opts.Recorder != nil {
			msg := res.Output
			if op == BatchStatus && res.Err == nil {
				msg = res.Status.Kind.String()
			}
			if err := opts.Recorder.Record(ctx, models.NewActivity(res.Task, op.action(), preview(msg), res.Err)); err != nil {
				opts.Logger.Warn("failed to record activity", "task", res.Task, "action", op.action(), "err", err)
			}
		}
		send(opts.Progress, completedUpdate(completed, len(names), res))
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].Index < result.Results[j].Index })
	return result, nil
}

func batchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	api services.TaskAPI,
	op BatchOp,
	limiter *rate.Limiter,
	jobs <-chan batchJob,
	results chan<- BatchItemResult,
) {
	defer wg.Done()

	for job := range jobs {
		res := BatchItemResult{Index: job.index, Task: job.name, Op: op}

		if err := limiter.Wait(ctx); err != nil {
			res.Err = fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			results <- res
			continue
		}

		switch op {
		case BatchTest:
			res.Output, res.Err = api.TestTask(ctx, job.name)
		case BatchDeleteResults:
			res.Err = api.DeleteResults(ctx, job.name)
		default:
			res.Status, res.Err = api.TaskStatus(ctx, job.name)
		}
		results <- res
	}
}
