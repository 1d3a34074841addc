// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "wsctl",
		Usage:   "Control webscraper tasks: save, schedule, test and watch them",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.configure,
		After:    r.close,
		Commands: r.register(),
	}
}

func taskFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Task definition file (TOML)",
		Required: true,
	}
}

// taskCommand handles single-task operations
func taskCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "task",
		Usage: "Operate on one task",
		Commands: []*cli.Command{
			{
				Name:   "save",
				Usage:  "Save the task definition",
				Flags:  []cli.Flag{taskFileFlag()},
				Action: r.TaskSave,
			},
			{
				Name:  "schedule",
				Usage: "Save the task and enqueue it for execution",
				Flags: []cli.Flag{
					taskFileFlag(),
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Poll the task status until it finishes",
					},
				},
				Action: r.TaskSchedule,
			},
			{
				Name:  "test",
				Usage: "Save the task and run it once without storing results",
				Flags: []cli.Flag{
					taskFileFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text or json",
						Value: "text",
					},
				},
				Action: r.TaskTest,
			},
			{
				Name:      "delete-results",
				Usage:     "Delete the stored results of a task",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.TaskDeleteResults,
			},
			{
				Name:      "delete",
				Usage:     "Delete a task",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.TaskDelete,
			},
			{
				Name:      "status",
				Usage:     "Show the execution status of a task",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Poll until the task is idle",
					},
				},
				Action: r.TaskStatus,
			},
			{
				Name:      "new",
				Usage:     "Create a task, prompting for the name when omitted",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the new task page in the browser",
					},
				},
				Action: r.TaskNew,
			},
			{
				Name:      "selectors",
				Usage:     "List the property names of a results set",
				Arguments: []cli.Argument{&cli.StringArg{Name: "results-id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TaskSelectors,
			},
			{
				Name:  "export",
				Usage: "Print the task definition",
				Flags: []cli.Flag{
					taskFileFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: toml, json or text",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.TaskExport,
			},
		},
	}
}

// batchCommand applies one operation to many tasks
func batchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Run status, test or delete-results over many tasks",
		ArgsUsage: "<status|test|delete-results> <name>...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent workers",
				Value: 4,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Requests per second",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Batch,
	}
}

// historyCommand shows the local activity history
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show recorded task activity; lists tasks when no name is given",
		Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, csv, markdown or json",
				Value: "text",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of entries (0 for all)",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Delete the recorded activity of the task",
			},
		},
		Action: r.History,
	}
}

// apiCommand handles direct calls to the webscraper application
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct requests to the webscraper application",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "param",
						Aliases: []string{"p"},
						Usage:   "Query parameter as key=value",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with a form body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "param",
						Aliases: []string{"p"},
						Usage:   "Form field as key=value",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// setupCommand handles setup operations for configuration, database and the browser session.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the default template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "session",
				Usage: "Capture the browser session from a cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path for session.json (default: ~/.wsctl/session.json)",
					},
				},
				Action: r.SetupSession,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive task page.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive task page",
		Flags:   []cli.Flag{taskFileFlag()},
		Action:  r.TUI,
	}
}

// devServerCommand serves the in-memory webscraper endpoints for local development.
func devServerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dev-server",
		Usage: "Serve stand-in webscraper endpoints backed by memory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Require this bearer token",
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "Create an example task",
				Value: true,
			},
		},
		Action: r.DevServer,
	}
}
