package tasks

import (
	"fmt"

	"github.com/desertthunder/wsctl/internal/models"
)

// ProgressUpdate represents a progress event during a batch run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Op      BatchOp // Operation being applied
	Step    int     // Tasks completed so far
	Total   int     // Total tasks in the batch
	Task    string  // Task the update refers to
	Message string  // Human-readable message for display
	Err     error   // Set when the task failed
}

// PollState is the state of a [Poller].
type PollState int

const (
	PollIdle PollState = iota
	Polling
)

func (s PollState) String() string {
	if s == Polling {
		return "polling"
	}
	return "idle"
}

// PollUpdate is emitted on every poller transition and every observed status.
type PollUpdate struct {
	Session  string        // Poll session id
	Task     string        // Polled task
	State    PollState     // State after the event
	Status   models.Status // Last observed status
	Failures int           // Consecutive failed observations
	Err      error         // Reason the poll ended, if it was aborted
}

// send delivers u without blocking; a full or nil channel drops it.
func send[T any](ch chan<- T, u T) {
	if ch == nil {
		return
	}
	select {
	case ch <- u:
	default:
	}
}

func startedUpdate(step, total int, op BatchOp) ProgressUpdate {
	return ProgressUpdate{
		Op:      op,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Running %s on %d tasks...", op, total),
	}
}

func completedUpdate(step, total int, res BatchItemResult) ProgressUpdate {
	u := ProgressUpdate{Op: res.Op, Step: step, Total: total, Task: res.Task, Err: res.Err}
	if res.Err != nil {
		u.Message = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Task, res.Err)
	} else {
		u.Message = fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Task)
	}
	return u
}
