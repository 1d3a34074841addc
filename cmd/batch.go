package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wsctl/internal/shared"
	"github.com/desertthunder/wsctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

type batchItemJSON struct {
	Task   string `json:"task"`
	OK     bool   `json:"ok"`
	Status string `json:"status,omitempty"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Batch applies status, test or delete-results to every named task.
func (r *Runner) Batch(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("%w: an operation and at least one task name", shared.ErrMissingArgument)
	}

	op, err := tasks.ParseBatchOp(args[0])
	if err != nil {
		return err
	}
	names := args[1:]

	r.logger.Info("starting batch", "op", op, "tasks", len(names))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if update.Err != nil {
				r.logger.Warn(update.Message, "step", update.Step, "total", update.Total)
			} else {
				r.logger.Info(update.Message, "step", update.Step, "total", update.Total)
			}
		}
	}()

	result, err := tasks.RunBatch(ctx, r.api, op, names, tasks.BatchOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		Recorder:   r.recorder(),
		Progress:   progressCh,
		Logger:     r.logger,
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		items := make([]batchItemJSON, len(result.Results))
		for i, res := range result.Results {
			items[i] = batchItemJSON{Task: res.Task, OK: res.Err == nil, Output: res.Output}
			if res.Err != nil {
				items[i].Error = res.Err.Error()
			} else if op == tasks.BatchStatus {
				items[i].Status = describeStatus(res)
			}
		}
		return r.writeJSON(items, true)
	}

	r.writePlainHeader(fmt.Sprintf("Batch %s", op))
	for _, res := range result.Results {
		switch {
		case res.Err != nil:
			r.writePlain("✗ %s: %v\n", res.Task, res.Err)
		case op == tasks.BatchStatus:
			r.writePlain("✓ %s: %s\n", res.Task, describeStatus(res))
		case op == tasks.BatchTest:
			r.writePlain("✓ %s\n%s\n", res.Task, res.Output)
		default:
			r.writePlain("✓ %s\n", res.Task)
		}
	}
	r.writePlain("\nSucceeded: %d/%d\n", result.Succeeded, result.Total)

	if result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d tasks failed", shared.ErrAPIRequest, result.Failed, result.Total)
	}
	return nil
}

func describeStatus(res tasks.BatchItemResult) string {
	if res.Status.Done() {
		return "idle"
	}
	return res.Status.Message
}
