package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mlcc/internal/formatter"
	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigList prints the configured outputs or graphics of a channel.
func (r *Runner) ConfigList(ctx context.Context, cmd *cli.Command) error {
	dataType, err := models.ParseConfigDataType(cmd.String("type"))
	if err != nil {
		return err
	}

	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}
	_, detail, err := r.loadChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}
	return r.writeTable(cmd, formatter.ConfigItems(detail, dataType))
}

// ConfigAdd adds an output or graphic to a channel.
func (r *Runner) ConfigAdd(ctx context.Context, cmd *cli.Command) error {
	dataType, err := models.ParseConfigDataType(cmd.String("type"))
	if err != nil {
		return err
	}
	item := models.ConfigItem{Name: cmd.String("name"), URL: cmd.String("url")}
	if err := item.Validate(); err != nil {
		return err
	}

	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}
	ch, err := r.findChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}

	coord := r.coordinator(api)
	created, err := coord.AddConfigItem(ctx, ch.ID, dataType, item)
	if err := r.report(coord, err); err != nil {
		return err
	}
	if created == nil {
		return nil
	}
	return r.writePlain("ID: %s\n", created.ID)
}

// ConfigRemove removes an output or graphic from a channel.
func (r *Runner) ConfigRemove(ctx context.Context, cmd *cli.Command) error {
	dataType, err := models.ParseConfigDataType(cmd.String("type"))
	if err != nil {
		return err
	}
	itemID := cmd.StringArg("item")
	if itemID == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}

	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}
	ch, err := r.findChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}

	coord := r.coordinator(api)
	return r.report(coord, coord.RemoveConfigItem(ctx, ch.ID, dataType, itemID))
}

// ConfigDiscover lists the outputs the provider reports, marking configured ones.
//
// With --add every unconfigured output is added.
func (r *Runner) ConfigDiscover(ctx context.Context, cmd *cli.Command) error {
	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}
	ch, detail, err := r.loadChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}

	outputs, err := api.DiscoverOutputs(ctx, ch.ID)
	if err != nil {
		return fmt.Errorf("failed to discover outputs: %w", err)
	}

	if !cmd.Bool("add") {
		return r.writeTable(cmd, formatter.Discovered(outputs, detail))
	}

	coord := r.coordinator(api)
	added := 0
	for _, o := range outputs {
		if detail.HasURL(models.DataTypeOutputs, o.URL) {
			continue
		}
		if err := r.report(coord, discard(coord.AddConfigItem(ctx, ch.ID, models.DataTypeOutputs, models.ConfigItem{Name: o.Name, URL: o.URL}))); err != nil {
			return err
		}
		added++
	}
	return r.writePlain("Added %d of %d discovered outputs\n", added, len(outputs))
}

func discard[T any](_ T, err error) error { return err }
