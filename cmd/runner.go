package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/repositories"
	"github.com/desertthunder/wsctl/internal/services"
	"github.com/desertthunder/wsctl/internal/shared"
	"github.com/desertthunder/wsctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        services.TaskAPI
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	db         *sql.DB
	history    *repositories.ActivityRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        services.TaskAPI // built from Config when nil
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	History    *repositories.ActivityRepository // opened from Config.Database when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		history:    opts.History,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, taskCommand, batchCommand, historyCommand, apiCommand, tuiCommand, devServerCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// configure loads the configuration file named by --config and builds the task API client.
//
// A missing config file is not an error; the embedded defaults apply.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
			r.configPath = path
		} else if cmd.IsSet("config") {
			r.logger.Warn("config file not found, using defaults", "path", path)
		}
	}

	r.config.ApplyEnv()
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.api == nil {
		client, err := r.newClient()
		if err != nil {
			return ctx, err
		}
		r.api = client
	}
	return ctx, nil
}

func (r *Runner) newClient() (*services.WebscraperClient, error) {
	cfg := r.config.Server

	httpClient := r.httpClient
	if httpClient == nil {
		timeout, err := cfg.RequestTimeout()
		if err != nil {
			return nil, err
		}
		httpClient = services.NewHTTPClient(cfg.Token, timeout)
	}

	var session *shared.Session
	if cfg.SessionPath != "" {
		s, err := shared.LoadSession(cfg.SessionPath)
		if err != nil {
			r.logger.Warn("browser session not loaded", "path", cfg.SessionPath, "error", err)
		} else {
			session = s
		}
	}

	r.logger.Debug("webscraper client", "base_url", cfg.BaseURL, "rate_limit", cfg.RateLimit)
	return services.NewWebscraperClient(services.ClientOpts{
		BaseURL:    cfg.BaseURL,
		HTTPClient: httpClient,
		Limiter:    services.NewLimiter(cfg.RateLimit, cfg.Burst),
		Session:    session,
	}), nil
}

// activity returns the activity repository, opening the history database on first use.
func (r *Runner) activity() (*repositories.ActivityRepository, error) {
	if r.history != nil {
		return r.history, nil
	}

	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	r.db = db
	r.history = repositories.NewActivityRepository(db)
	return r.history, nil
}

// recorder returns the activity recorder for controllers, or nil when history is unavailable.
func (r *Runner) recorder() tasks.Recorder {
	repo, err := r.activity()
	if err != nil {
		r.logger.Warn("activity history disabled", "error", err)
		return nil
	}
	return repo
}

// close releases the history database.
func (r *Runner) close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.history = nil
	return err
}

// page is where a controller reports: the terminal for commands, the bridge for the TUI.
type page interface {
	tasks.Notifier
	tasks.Navigator
	tasks.Prompter
}

// newController builds a controller for form that reports through pg.
func (r *Runner) newController(form *models.TaskForm, pg page, updates chan<- tasks.PollUpdate) (*tasks.Controller, error) {
	interval, err := r.config.Poll.PollInterval()
	if err != nil {
		return nil, err
	}

	return tasks.NewController(tasks.ControllerOpts{
		API:          r.api,
		Notifier:     pg,
		Navigator:    pg,
		Prompter:     pg,
		Recorder:     r.recorder(),
		Logger:       shared.WithLogger(r.logger, "task", form.Name),
		Form:         form,
		PollInterval: interval,
		MaxFailures:  r.config.Poll.MaxFailures,
		Updates:      updates,
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
