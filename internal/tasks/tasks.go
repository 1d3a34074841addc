package tasks

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/services"
	"github.com/desertthunder/wsctl/internal/shared"
)

// Flash messages shown by the controller.
const (
	SavedMessage     = "Successfully Saved"
	NewTaskPrompt    = "Please enter the task name"
	HomeLocation     = "/"
	defaultTaskPage  = "/webscraper/task"
	maxResultPreview = 2000
)

// Notifier displays transient messages to the user.
type Notifier interface {
	Flash(kind models.FlashKind, message string)
	Hide()
}

// Navigator changes the page location.
type Navigator interface {
	// Reload re-renders the current page.
	Reload(ctx context.Context) error
	// Navigate leaves the page for location.
	Navigate(ctx context.Context, location string) error
}

// Prompter asks the user for a line of text. ok is false when the prompt was cancelled.
type Prompter interface {
	Prompt(ctx context.Context, message string) (answer string, ok bool)
}

// Recorder persists the outcome of an operation.
type Recorder interface {
	Record(ctx context.Context, a *models.Activity) error
}

type nopNotifier struct{}

func (nopNotifier) Flash(models.FlashKind, string) {}
func (nopNotifier) Hide()                          {}

type nopNavigator struct{}

func (nopNavigator) Reload(context.Context) error           { return nil }
func (nopNavigator) Navigate(context.Context, string) error { return nil }

// ControllerOpts contains the collaborators of a [Controller].
type ControllerOpts struct {
	API          services.TaskAPI
	Notifier     Notifier
	Navigator    Navigator
	Prompter     Prompter          // optional; PromptNewTask is a no-op without one
	Recorder     Recorder          // optional
	Logger       *log.Logger       // optional
	Form         *models.TaskForm  // default: empty form; nil selector groups get one row
	Location     *url.URL          // default: the task page without fragment
	PollInterval time.Duration     // default 2s
	MaxFailures  int               // default 3
	Updates      chan<- PollUpdate // optional poll event stream
}

// Controller binds user actions to the remote task operations of one task page.
//
// It owns the task form, the page location, the result-property options and the poller.
// Remote operations run in the caller's goroutine; dependent requests are issued only after
// the request they depend on has been answered.
type Controller struct {
	api       services.TaskAPI
	notifier  Notifier
	navigator Navigator
	prompter  Prompter
	recorder  Recorder
	logger    *log.Logger
	poller    *Poller

	mu         sync.Mutex
	form       *models.TaskForm
	location   url.URL
	properties []string
}

// NewController creates a controller. API is required.
func NewController(opts ControllerOpts) (*Controller, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("%w: task API not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Navigator == nil {
		opts.Navigator = nopNavigator{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Form == nil {
		opts.Form = models.NewTaskForm("")
	}
	opts.Form.Normalize()

	loc := url.URL{Path: defaultTaskPage}
	if opts.Location != nil {
		loc = *opts.Location
	} else if opts.Form.Name != "" {
		loc.RawQuery = url.Values{"name": {opts.Form.Name}}.Encode()
	}

	c := &Controller{
		api:       opts.API,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		prompter:  opts.Prompter,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		form:      opts.Form,
		location:  loc,
	}
	c.poller = NewPoller(PollerOpts{
		Source:      opts.API,
		Notifier:    opts.Notifier,
		Logger:      opts.Logger.With("component", "poller"),
		Interval:    opts.PollInterval,
		MaxFailures: opts.MaxFailures,
		Updates:     opts.Updates,
	})
	return c, nil
}

// Form returns the form being edited.
func (c *Controller) Form() *models.TaskForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Location returns a copy of the current page location.
func (c *Controller) Location() url.URL {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// View returns the view mode persisted in the location fragment.
func (c *Controller) View() models.ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.ViewFromFragment(c.location.Fragment)
}

// ResultProperties returns the current result-property options.
func (c *Controller) ResultProperties() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.properties...)
}

// snapshotForm copies the form so a request can serialize it while rows are being edited.
func (c *Controller) snapshotForm() *models.TaskForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.FormFromDefinition(c.form.Definition())
}

// Poller returns the status poller of the page.
func (c *Controller) Poller() *Poller { return c.poller }

func (c *Controller) record(ctx context.Context, task string, action models.Action, message string, err error) {
	if c.recorder == nil {
		return
	}
	if rerr := c.recorder.Record(ctx, models.NewActivity(task, action, message, err)); rerr != nil {
		c.logger.Warn("failed to record activity", "task", task, "action", action, "err", rerr)
	}
}

// fail flashes err, records it and returns it wrapped with the operation name.
func (c *Controller) fail(ctx context.Context, task string, action models.Action, err error) error {
	err = fmt.Errorf("%s %q: %w", action, task, err)
	c.notifier.Flash(models.FlashError, err.Error())
	c.logger.Error("operation failed", "task", task, "action", action, "err", err)
	c.record(ctx, task, action, "", err)
	return err
}

// Save serializes the form and posts it, returning once the server has answered.
func (c *Controller) Save(ctx context.Context) error {
	form := c.snapshotForm()
	if err := c.api.SaveTask(ctx, form); err != nil {
		return c.fail(ctx, form.Name, models.ActionSave, err)
	}

	c.notifier.Flash(models.FlashInfo, SavedMessage)
	c.logger.Info("task saved", "task", form.Name)
	c.record(ctx, form.Name, models.ActionSave, SavedMessage, nil)
	return nil
}

// Schedule saves the form, enqueues name, reloads the page and starts polling name.
//
// A failed save aborts before the schedule request is issued.
func (c *Controller) Schedule(ctx context.Context, name string) error {
	if err := c.Save(ctx); err != nil {
		return err
	}

	if err := c.api.Schedule(ctx, name); err != nil {
		return c.fail(ctx, name, models.ActionSchedule, err)
	}

	c.logger.Info("task scheduled", "task", name)
	c.record(ctx, name, models.ActionSchedule, "scheduled", nil)
	c.reload(ctx)
	c.StartPoll(ctx, name)
	return nil
}

// Test saves the form, runs name once and flashes the result text.
func (c *Controller) Test(ctx context.Context, name string) (string, error) {
	if err := c.Save(ctx); err != nil {
		return "", err
	}

	results, err := c.api.TestTask(ctx, name)
	if err != nil {
		return "", c.fail(ctx, name, models.ActionTest, err)
	}

	c.notifier.Flash(models.FlashInfo, results)
	c.record(ctx, name, models.ActionTest, preview(results), nil)
	return results, nil
}

// DeleteResults removes the stored results of name and reloads the page.
func (c *Controller) DeleteResults(ctx context.Context, name string) error {
	if err := c.api.DeleteResults(ctx, name); err != nil {
		return c.fail(ctx, name, models.ActionDeleteResults, err)
	}

	c.logger.Info("results deleted", "task", name)
	c.record(ctx, name, models.ActionDeleteResults, "results deleted", nil)
	c.reload(ctx)
	return nil
}

// DeleteTask removes name and navigates to the application root.
func (c *Controller) DeleteTask(ctx context.Context, name string) error {
	if err := c.api.DeleteTask(ctx, name); err != nil {
		return c.fail(ctx, name, models.ActionDeleteTask, err)
	}

	c.logger.Info("task deleted", "task", name)
	c.record(ctx, name, models.ActionDeleteTask, "task deleted", nil)
	c.navigate(ctx, HomeLocation)
	return nil
}

// Status fetches the status of name once.
func (c *Controller) Status(ctx context.Context, name string) (models.Status, error) {
	status, err := c.api.TaskStatus(ctx, name)
	if err != nil {
		return status, c.fail(ctx, name, models.ActionStatus, err)
	}

	msg := status.Message
	if status.Done() {
		msg = "idle"
	}
	c.record(ctx, name, models.ActionStatus, msg, nil)
	return status, nil
}

// StartPoll starts polling the status of name, replacing any active poll.
func (c *Controller) StartPoll(ctx context.Context, name string) string {
	return c.poller.Start(ctx, name)
}

// StopPoll cancels the active poll.
func (c *Controller) StopPoll() { c.poller.Stop() }

// ToggleAdvancedView flips the view mode stored in the location fragment and returns the new mode.
//
// A foreign fragment is cleared and the view stays simple.
func (c *Controller) ToggleAdvancedView() models.ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	mode := models.ToggleFromFragment(c.location.Fragment)
	c.location.Fragment = mode.Fragment()
	return mode
}

// PromptNewTask asks for a task name and navigates to the new-task location.
//
// Cancelled or empty input does nothing. Reports whether navigation happened.
func (c *Controller) PromptNewTask(ctx context.Context) (bool, error) {
	if c.prompter == nil {
		return false, nil
	}

	name, ok := c.prompter.Prompt(ctx, NewTaskPrompt)
	if !ok || name == "" {
		return false, nil
	}
	return true, c.NewTask(ctx, name)
}

// NewTask navigates to the location that creates name.
func (c *Controller) NewTask(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: task name", shared.ErrMissingArgument)
	}

	loc := c.api.NewTaskURL(name)
	c.record(ctx, name, models.ActionNewTask, loc, nil)
	return c.navigate(ctx, loc)
}

// RefreshResultProperties replaces the result-property options with the selector names of the
// form's current results set. On failure the options are left unchanged.
func (c *Controller) RefreshResultProperties(ctx context.Context) ([]string, error) {
	resultsID := c.snapshotForm().ResultsID

	names, err := c.api.SelectorNames(ctx, resultsID)
	if err != nil {
		return c.ResultProperties(), c.fail(ctx, resultsID, models.ActionSelectorNames, err)
	}

	c.mu.Lock()
	c.properties = append([]string(nil), names...)
	c.mu.Unlock()

	c.logger.Debug("result properties refreshed", "results_id", resultsID, "count", len(names))
	return names, nil
}

// SetResultsID selects the results set whose properties are offered.
func (c *Controller) SetResultsID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.ResultsID = id
}

// AddUrlSelectorRow duplicates the last URL selector row and returns the new row count.
func (c *Controller) AddUrlSelectorRow() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.UrlSelectors.Add()
}

// RemoveUrlSelectorRow removes the last URL selector row unless it is the only one.
func (c *Controller) RemoveUrlSelectorRow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.UrlSelectors.Remove()
}

// AddContentSelectorRow duplicates the last content selector row and returns the new row count.
func (c *Controller) AddContentSelectorRow() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.ContentSelectors.Add()
}

// RemoveContentSelectorRow removes the last content selector row unless it is the only one.
func (c *Controller) RemoveContentSelectorRow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.ContentSelectors.Remove()
}

func (c *Controller) reload(ctx context.Context) {
	if err := c.navigator.Reload(ctx); err != nil {
		c.logger.Warn("reload failed", "err", err)
	}
}

func (c *Controller) navigate(ctx context.Context, location string) error {
	if err := c.navigator.Navigate(ctx, location); err != nil {
		c.logger.Warn("navigation failed", "location", location, "err", err)
		return err
	}

	if u, err := url.Parse(location); err == nil {
		c.mu.Lock()
		c.location = *u
		c.mu.Unlock()
	}
	return nil
}

func preview(s string) string {
	return shared.Truncate(strings.TrimSpace(s), maxResultPreview)
}
