package main

import (
	"context"

	"github.com/desertthunder/mlcc/internal/formatter"
	"github.com/desertthunder/mlcc/internal/repositories"
	"github.com/urfave/cli/v3"
)

// ActionsList prints the operator action log, newest first.
func (r *Runner) ActionsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	actions, err := repositories.NewActionRepository(db).List(map[string]any{
		"channel_id": cmd.String("channel"),
		"kind":       cmd.String("kind"),
		"failed":     cmd.Bool("failed"),
		"limit":      int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}
	return r.writeTable(cmd, formatter.Actions(actions))
}
