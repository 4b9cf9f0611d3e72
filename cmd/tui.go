package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mlcc/internal/gate"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/desertthunder/mlcc/internal/store"
	"github.com/desertthunder/mlcc/internal/tasks"
	"github.com/desertthunder/mlcc/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive control panel.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.UI.LogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}

	cache := store.New(store.Options{
		Interval: r.config.API.PollInterval.Duration,
		Logger:   shared.WithLogger(fileLogger, "component", "store"),
	})
	defer cache.Close()

	coord := tasks.NewCoordinator(api, cache, tasks.CoordinatorOpts{
		TTL:      r.config.UI.NotificationTTL.Duration,
		Recorder: r.recorder(),
		Logger:   shared.WithLogger(fileLogger, "component", "tasks"),
	})
	gates := gate.NewSet(r.config.UI.Cooldown.Duration)

	boundary := ui.NewBoundary(func() tea.Model {
		return ui.NewModel(ctx, ui.Options{
			API:         api,
			Store:       cache,
			Coordinator: coord,
			Gates:       gates,
			RowsPerPage: r.config.UI.RowsPerPage,
			Logger:      fileLogger,
		})
	}, fileLogger)

	p := tea.NewProgram(boundary, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
