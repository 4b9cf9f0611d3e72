package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mlcc/internal/formatter"
	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/urfave/cli/v3"
)

// InputsList prints the input attachments of a channel.
func (r *Runner) InputsList(ctx context.Context, cmd *cli.Command) error {
	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}
	ch, err := r.findChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}
	return r.writeTable(cmd, formatter.Inputs(ch))
}

// InputsSwitch makes an input active.
func (r *Runner) InputsSwitch(ctx context.Context, cmd *cli.Command) error {
	return r.inputAction(ctx, cmd, false)
}

// InputsPrepare pre-warms an input.
func (r *Runner) InputsPrepare(ctx context.Context, cmd *cli.Command) error {
	return r.inputAction(ctx, cmd, true)
}

func (r *Runner) inputAction(ctx context.Context, cmd *cli.Command, prepare bool) error {
	input := cmd.StringArg("input")
	if input == "" {
		return fmt.Errorf("%w: input name", shared.ErrMissingArgument)
	}

	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}
	ch, err := r.findChannel(ctx, api, cmd.StringArg("channel"))
	if err != nil {
		return err
	}

	if !cmd.Bool("force") {
		if err := checkInput(ch, input); err != nil {
			return err
		}
	}

	coord := r.coordinator(api)
	if prepare {
		r.logger.Info("preparing input", "channel", ch.ID, "input", input)
		return r.report(coord, coord.PrepareInput(ctx, ch.ID, input))
	}
	r.logger.Info("switching input", "channel", ch.ID, "input", input)
	return r.report(coord, coord.SwitchInput(ctx, ch.ID, input))
}

// checkInput explains why [models.CanSwitchInput] refuses input on ch.
func checkInput(ch models.Channel, input string) error {
	in, ok := ch.Input(input)
	switch {
	case !ok:
		return fmt.Errorf("%w: %s on %s", shared.ErrInputNotFound, input, ch.Name)
	case ch.State != models.StateRunning:
		return fmt.Errorf("%w: %s is %s, inputs can only change while RUNNING", shared.ErrInvalidState, ch.Name, ch.State)
	case in.Active:
		return fmt.Errorf("%w: %s", shared.ErrInputActive, input)
	}
	return nil
}
