package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/mlcc/internal/formatter"
	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/services"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/desertthunder/mlcc/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ChannelsList prints every channel with its state and active input.
func (r *Runner) ChannelsList(ctx context.Context, cmd *cli.Command) error {
	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}

	channels, err := api.ListChannels(ctx)
	if err != nil {
		return err
	}
	r.logger.Debug("listed channels", "count", len(channels))
	return r.writeTable(cmd, formatter.Channels(channels))
}

// ChannelsShow prints one channel merged with its detail.
func (r *Runner) ChannelsShow(ctx context.Context, cmd *cli.Command) error {
	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}

	ch, _, err := r.loadChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(ch, true)
	}
	return r.writePlain("%s", formatter.ChannelText(ch))
}

// ChannelsStart requests a channel start.
func (r *Runner) ChannelsStart(ctx context.Context, cmd *cli.Command) error {
	return r.setStatus(ctx, cmd, models.ActionStart)
}

// ChannelsStop requests a channel stop.
func (r *Runner) ChannelsStop(ctx context.Context, cmd *cli.Command) error {
	return r.setStatus(ctx, cmd, models.ActionStop)
}

func (r *Runner) setStatus(ctx context.Context, cmd *cli.Command, action models.StatusAction) error {
	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}

	ch, err := r.findChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}
	if !cmd.Bool("force") && !models.CanChangeStatus(ch.State, action) {
		return fmt.Errorf("%w: cannot %s %s while %s", shared.ErrInvalidState, action, ch.Name, ch.State)
	}

	r.logger.Info("changing channel status", "channel", ch.ID, "action", action)
	coord := r.coordinator(api)
	return r.report(coord, coord.SetStatus(ctx, ch.ID, action))
}

// ChannelsDump fetches every channel with its detail and writes them as JSON.
func (r *Runner) ChannelsDump(ctx context.Context, cmd *cli.Command) error {
	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}

	dump, err := r.dump(ctx, api, cmd)
	if err != nil {
		return err
	}

	out := cmd.String("output")
	if out == "" {
		return r.writeJSON(dump, true)
	}

	data, err := shared.MarshalJSON(dump, true)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	r.logger.Info("dump saved", "path", out, "channels", len(dump.Channels), "errors", len(dump.Errors))
	return r.writePlain("✓ Dumped %d channels to %s\n", len(dump.Channels), out)
}

// dump runs [tasks.Dump], logging progress while it runs.
func (r *Runner) dump(ctx context.Context, api services.ChannelAPI, cmd *cli.Command) (*tasks.ChannelDump, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	dump, err := tasks.Dump(ctx, api, progressCh, tasks.DumpOpts{
		Workers:    int(cmd.Int("workers")),
		ChannelIDs: cmd.StringSlice("channel"),
	})
	close(progressCh)
	<-done

	if err != nil {
		return nil, err
	}
	for _, e := range dump.Errors {
		r.logger.Warn("channel detail unavailable", "channel", e.ChannelID, "error", e.Error)
	}
	return dump, nil
}

// report prints the success notification of a settled mutation and returns err.
func (r *Runner) report(coord *tasks.Coordinator, err error) error {
	select {
	case n := <-coord.Notifications():
		if n.Level == tasks.LevelSuccess {
			return r.writePlain("✓ %s\n", n.Message)
		}
	default:
	}
	return err
}
