package main

import (
	"context"

	"github.com/desertthunder/wsctl/internal/formatter"
	"github.com/desertthunder/wsctl/internal/repositories"
	"github.com/urfave/cli/v3"
)

// History prints the recorded activity of a task, lists recorded tasks when no name is given,
// or clears a task's activity with --clear.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, err := r.activity()
	if err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return r.historyTasks(ctx, repo, format)
	}

	if cmd.Bool("clear") {
		n, err := repo.DeleteTask(ctx, name)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Removed %d entries for %s\n", n, name)
	}

	entries, err := repo.List(ctx, name, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	r.logger.Debug("history loaded", "task", name, "entries", len(entries))
	return formatter.WriteActivity(r.output, format, name, entries)
}

func (r *Runner) historyTasks(ctx context.Context, repo *repositories.ActivityRepository, format formatter.Format) error {
	summaries, err := repo.Tasks(ctx)
	if err != nil {
		return err
	}

	if format == formatter.FormatJSON {
		return r.writeJSON(summaries, true)
	}

	if len(summaries) == 0 {
		return r.writePlain("No recorded activity\n")
	}

	r.writePlainHeader("Recorded tasks")
	for _, s := range summaries {
		r.writePlain("%-30s %4d entries  %3d failed  last %s\n",
			s.Task, s.Count, s.Failures, s.LastSeen.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
