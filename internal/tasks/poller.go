package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/shared"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxFailures  = 3
)

// StatusSource fetches the execution status of a task.
type StatusSource interface {
	TaskStatus(ctx context.Context, name string) (models.Status, error)
}

// PollerOpts contains configuration for a [Poller].
type PollerOpts struct {
	Source      StatusSource
	Notifier    Notifier
	Logger      *log.Logger
	Interval    time.Duration     // default 2s
	MaxFailures int               // consecutive failed observations before giving up, default 3
	Updates     chan<- PollUpdate // optional
}

// Poller is the periodic status poll of one task page.
//
// It has two states, [PollIdle] and [Polling]. At most one session is active: Start cancels the
// previous session before beginning a new one, and events of a superseded session are dropped.
type Poller struct {
	source      StatusSource
	notifier    Notifier
	logger      *log.Logger
	interval    time.Duration
	maxFailures int
	updates     chan<- PollUpdate

	mu       sync.Mutex
	state    PollState
	session  string
	task     string
	failures int
	last     models.Status
	err      error
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPoller creates an idle poller.
func NewPoller(opts PollerOpts) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = DefaultMaxFailures
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	done := make(chan struct{})
	close(done)

	return &Poller{
		source:      opts.Source,
		notifier:    opts.Notifier,
		logger:      opts.Logger,
		interval:    opts.Interval,
		maxFailures: opts.MaxFailures,
		updates:     opts.Updates,
		done:        done,
	}
}

// Start begins polling name, replacing any active session, and returns the new session id.
//
// The first status request fires one interval after Start.
func (p *Poller) Start(ctx context.Context, name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Polling {
		p.cancel()
		p.logger.Debug("poll superseded", "session", p.session, "task", p.task)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	p.state = Polling
	p.session = shared.GenerateID()
	p.task = name
	p.failures = 0
	p.last = models.Status{}
	p.err = nil
	p.cancel = cancel
	p.done = make(chan struct{})

	p.logger.Info("poll started", "session", p.session, "task", name, "interval", p.interval)
	send(p.updates, p.snapshot())

	go p.run(sessionCtx, p.session, name, p.done)
	return p.session
}

// Stop cancels the active session, if any.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Polling {
		return
	}
	p.cancel()
	p.state = PollIdle
	p.logger.Info("poll stopped", "session", p.session, "task", p.task)
	send(p.updates, p.snapshot())
}

// State returns the current state.
func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Session returns the id of the latest session, or "" if none was started.
func (p *Poller) Session() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Last returns the last observed status of the latest session.
func (p *Poller) Last() models.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Err returns why the latest session was aborted, or nil if it finished or was stopped.
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Done returns a channel closed when the goroutine of the latest session has exited.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Wait blocks until the latest session ends or ctx is done, and returns [Poller.Err].
func (p *Poller) Wait(ctx context.Context) error {
	select {
	case <-p.Done():
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) snapshot() PollUpdate {
	return PollUpdate{
		Session:  p.session,
		Task:     p.task,
		State:    p.state,
		Status:   p.last,
		Failures: p.failures,
		Err:      p.err,
	}
}

func (p *Poller) run(ctx context.Context, session, name string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.finish(session, fmt.Errorf("%w: %v", shared.ErrPollAborted, ctx.Err()))
			return
		case <-ticker.C:
		}

		status, err := p.source.TaskStatus(ctx, name)
		if ctx.Err() != nil {
			continue
		}
		if err != nil {
			status = models.UnknownStatus(err)
		}

		if p.observe(session, status, err) {
			return
		}
	}
}

// observe applies one tick's status to session and reports whether the session has ended.
func (p *Poller) observe(session string, status models.Status, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != session || p.state != Polling {
		return true
	}
	p.last = status

	switch {
	case status.Done():
		p.failures = 0
		p.state = PollIdle
		p.cancel()
		p.notifier.Hide()
		p.logger.Info("poll finished", "session", session, "task", p.task)
	case status.Kind == models.StatusRunning:
		p.failures = 0
		p.notifier.Flash(models.FlashInfo, status.Message)
	default:
		p.failures++
		p.notifier.Flash(models.FlashWarn, fmt.Sprintf("Status unavailable (%d/%d): %s", p.failures, p.maxFailures, status.Message))
		p.logger.Warn("status request failed", "session", session, "task", p.task, "failures", p.failures, "err", err)

		if p.failures >= p.maxFailures {
			p.state = PollIdle
			p.err = fmt.Errorf("%w: %d consecutive status failures: %v", shared.ErrPollAborted, p.failures, err)
			p.cancel()
			p.logger.Error("poll aborted", "session", session, "task", p.task, "err", p.err)
		}
	}

	send(p.updates, p.snapshot())
	return p.state == PollIdle
}

// finish ends session when its context was cancelled by something other than Start or Stop.
func (p *Poller) finish(session string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != session || p.state != Polling {
		return
	}
	p.state = PollIdle
	p.err = err
	p.logger.Warn("poll cancelled", "session", session, "task", p.task, "err", err)
	send(p.updates, p.snapshot())
}
