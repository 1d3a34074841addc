package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/shared"
	"github.com/desertthunder/wsctl/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive task page for the task file.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	form, err := models.LoadTaskFile(cmd.String("file"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	bridge := ui.NewBridge(nil)
	ctrl, err := r.newController(form, bridge, bridge.PollUpdates())
	if err != nil {
		return err
	}
	defer ctrl.StopPoll()

	model := ui.NewModel(ctx, ctrl, bridge)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
