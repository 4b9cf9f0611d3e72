package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/urfave/cli/v3"
)

// GraphicsInsert shows a configured graphic, optionally for a number of seconds.
func (r *Runner) GraphicsInsert(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("graphic")
	if ref == "" {
		return fmt.Errorf("%w: graphic id or name", shared.ErrMissingArgument)
	}

	var duration *time.Duration
	if cmd.IsSet("duration") {
		seconds := int(cmd.Int("duration"))
		if seconds <= 0 {
			return fmt.Errorf("%w: --duration must be a positive number of seconds, got %d", shared.ErrInvalidFlag, seconds)
		}
		d := time.Duration(seconds) * time.Second
		duration = &d
	}

	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}
	ch, detail, err := r.loadChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}

	graphic, ok := findGraphic(detail, ref)
	if !ok {
		return fmt.Errorf("%w: %s on %s", shared.ErrGraphicNotFound, ref, ch.Name)
	}

	if !cmd.Bool("force") {
		if !ch.GraphicsEnabled {
			return fmt.Errorf("%w: motion graphics are not enabled for %s", shared.ErrInvalidState, ch.Name)
		}
		if !models.CanInsertGraphic(ch) {
			return fmt.Errorf("%w: %s is %s, graphics need a RUNNING channel", shared.ErrInvalidState, ch.Name, ch.State)
		}
	}

	r.logger.Info("inserting graphic", "channel", ch.ID, "graphic", graphic.ID, "duration", duration)
	coord := r.coordinator(api)
	return r.report(coord, coord.InsertGraphic(ctx, ch.ID, graphic.ID, duration))
}

// GraphicsStop removes all graphics from a channel.
func (r *Runner) GraphicsStop(ctx context.Context, cmd *cli.Command) error {
	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}
	ch, err := r.findChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}
	if !cmd.Bool("force") && ch.State != models.StateRunning {
		return fmt.Errorf("%w: %s is %s, graphics need a RUNNING channel", shared.ErrInvalidState, ch.Name, ch.State)
	}

	coord := r.coordinator(api)
	return r.report(coord, coord.StopGraphics(ctx, ch.ID))
}

// findGraphic matches ref against graphic ids first, then names.
func findGraphic(detail *models.ChannelDetail, ref string) (models.Graphic, bool) {
	if g, ok := detail.Graphic(ref); ok {
		return g, true
	}
	if detail == nil {
		return models.Graphic{}, false
	}
	for _, g := range detail.Graphics {
		if g.Name == ref {
			return g, true
		}
	}
	return models.Graphic{}, false
}
