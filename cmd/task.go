package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/wsctl/internal/formatter"
	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/shared"
	"github.com/desertthunder/wsctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.StringArg(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// loadTask reads the task file named by --file and builds its controller.
func (r *Runner) loadTask(cmd *cli.Command, c *console) (*tasks.Controller, error) {
	form, err := models.LoadTaskFile(cmd.String("file"))
	if err != nil {
		return nil, err
	}
	return r.newController(form, c, nil)
}

// nameController builds a controller for operations that only need a task name.
func (r *Runner) nameController(name string, c *console) (*tasks.Controller, error) {
	return r.newController(models.NewTaskForm(name), c, nil)
}

// TaskSave posts the task definition.
func (r *Runner) TaskSave(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadTask(cmd, r.newConsole())
	if err != nil {
		return err
	}
	return ctrl.Save(ctx)
}

// TaskSchedule saves, schedules and optionally watches the task until it is idle.
func (r *Runner) TaskSchedule(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadTask(cmd, r.newConsole())
	if err != nil {
		return err
	}
	defer ctrl.StopPoll()

	name := ctrl.Form().Name
	if err := ctrl.Schedule(ctx, name); err != nil {
		return err
	}

	if !cmd.Bool("watch") {
		r.writePlain("Scheduled %s\n", name)
		return nil
	}
	return r.watch(ctx, ctrl)
}

// watch blocks until the active poll ends and reports how it ended.
func (r *Runner) watch(ctx context.Context, ctrl *tasks.Controller) error {
	if err := ctrl.Poller().Wait(ctx); err != nil {
		return err
	}
	return r.writePlain("%s is idle\n", ctrl.Form().Name)
}

// TaskTest saves the task, runs it once and prints the results.
func (r *Runner) TaskTest(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if format != formatter.FormatText && format != formatter.FormatJSON {
		return fmt.Errorf("%w: test output must be text or json", shared.ErrInvalidFlag)
	}

	c := r.newConsole()
	c.quiet = format == formatter.FormatJSON

	ctrl, err := r.loadTask(cmd, c)
	if err != nil {
		return err
	}

	name := ctrl.Form().Name
	results, err := ctrl.Test(ctx, name)
	if err != nil {
		return err
	}

	if format == formatter.FormatJSON {
		return r.writeJSON(map[string]string{"task": name, "results": results}, true)
	}
	return nil
}

// TaskDeleteResults removes the stored results of a task.
func (r *Runner) TaskDeleteResults(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	ctrl, err := r.nameController(name, r.newConsole())
	if err != nil {
		return err
	}
	if err := ctrl.DeleteResults(ctx, name); err != nil {
		return err
	}
	return r.writePlain("✓ Results of %s deleted\n", name)
}

// TaskDelete removes a task.
func (r *Runner) TaskDelete(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	ctrl, err := r.nameController(name, r.newConsole())
	if err != nil {
		return err
	}
	if err := ctrl.DeleteTask(ctx, name); err != nil {
		return err
	}
	return r.writePlain("✓ Task %s deleted\n", name)
}

// TaskStatus prints the task status once, or polls until it is idle with --watch.
func (r *Runner) TaskStatus(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	ctrl, err := r.nameController(name, r.newConsole())
	if err != nil {
		return err
	}

	if cmd.Bool("watch") {
		defer ctrl.StopPoll()
		ctrl.StartPoll(ctx, name)
		return r.watch(ctx, ctrl)
	}

	status, err := ctrl.Status(ctx, name)
	if err != nil {
		return err
	}
	if status.Done() {
		return r.writePlain("%s: idle\n", name)
	}
	return r.writePlain("%s: %s\n", name, status.Message)
}

// TaskNew creates a task from the argument, or asks for the name on the terminal.
func (r *Runner) TaskNew(ctx context.Context, cmd *cli.Command) error {
	c := r.newConsole()
	c.open = cmd.Bool("open")
	if !c.open {
		c.visit = r.visit
	}

	ctrl, err := r.nameController("", c)
	if err != nil {
		return err
	}

	if name := cmd.StringArg("name"); name != "" {
		return ctrl.NewTask(ctx, name)
	}

	ok, err := ctrl.PromptNewTask(ctx)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Info("no task created")
	}
	return nil
}

// TaskSelectors lists the property names of a results set.
func (r *Runner) TaskSelectors(ctx context.Context, cmd *cli.Command) error {
	resultsID, err := requireArg(cmd, "results-id")
	if err != nil {
		return err
	}

	ctrl, err := r.nameController("", r.newConsole())
	if err != nil {
		return err
	}
	ctrl.SetResultsID(resultsID)

	names, err := ctrl.RefreshResultProperties(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(names, false)
	}
	for _, name := range names {
		r.writePlain("%s\n", name)
	}
	return nil
}

// TaskExport renders a task definition file in another format.
func (r *Runner) TaskExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	form, err := models.LoadTaskFile(cmd.String("file"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		return formatter.WriteTask(r.output, format, form)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := formatter.WriteTask(f, format, form); err != nil {
		return err
	}
	r.logger.Info("task exported", "task", form.Name, "path", output, "format", format)
	return nil
}
