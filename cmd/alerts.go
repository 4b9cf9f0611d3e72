package main

import (
	"context"
	"time"

	"github.com/desertthunder/mlcc/internal/formatter"
	"github.com/desertthunder/mlcc/internal/repositories"
	"github.com/urfave/cli/v3"
)

// AlertsSync fetches every channel detail and records its alerts locally.
//
// Existing alerts are only replaced by newer ones, so running it repeatedly is safe.
func (r *Runner) AlertsSync(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	api, err := r.channelAPI(ctx)
	if err != nil {
		return err
	}

	dump, err := r.dump(ctx, api, cmd)
	if err != nil {
		return err
	}

	repo := repositories.NewAlertRepository(db)
	recorded := 0
	for channelID, detail := range dump.Details() {
		n, err := repo.RecordDetail(detail)
		if err != nil {
			return err
		}
		r.logger.Debug("recorded alerts", "channel", channelID, "count", n)
		recorded += n
	}

	r.writePlain("✓ Recorded %d alerts from %d channels\n", recorded, len(dump.Channels))
	if len(dump.Errors) > 0 {
		r.writePlain("⚠ %d channels could not be read, see the log for details\n", len(dump.Errors))
	}
	return nil
}

// AlertsList prints the recorded alerts, newest first.
func (r *Runner) AlertsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	records, err := repositories.NewAlertRepository(db).List(map[string]any{
		"channel_id": cmd.String("channel"),
		"state":      cmd.String("state"),
		"limit":      int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}
	return r.writeTable(cmd, formatter.AlertRecords(records))
}

// AlertsPrune deletes cleared alerts whose retention has run out.
func (r *Runner) AlertsPrune(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	n, err := repositories.NewAlertRepository(db).Prune(time.Now())
	if err != nil {
		return err
	}
	r.logger.Info("pruned alerts", "count", n)
	return r.writePlain("✓ Pruned %d expired alerts\n", n)
}
