package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/boletim/internal/formatter"
	"github.com/desertthunder/boletim/internal/models"
	"github.com/desertthunder/boletim/internal/shared"
	"github.com/desertthunder/boletim/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive stopwatch.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, logFile, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(shared.WithLogger(fileLogger, "component", "tui"))

	opts, err := r.formatOptions()
	if err != nil {
		return err
	}

	sw, closeFn, err := r.openStopwatch()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(ctx, sw, ui.Options{
		Title:  r.config.UI.Title,
		Format: opts,
		Export: func(periods []models.Period) (string, error) {
			path, err := formatter.WriteTextExport(periods, r.config.Export.Directory, r.clock.Now(), opts)
			if err == nil {
				r.logger.Info("exported periods", "path", path, "count", len(periods))
			}
			return path, err
		},
	})
	defer model.Close()

	// The model quits on ctx cancellation itself so the window title is restored.
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if err := model.Err(); err != nil {
		r.logger.Warn("TUI exited after an error", "error", err)
	}
	return nil
}
