package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a config file from the embedded template, applying any flags.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil && !cmd.Bool("overwrite") {
		return fmt.Errorf("%w: %s already exists, pass --overwrite to replace it", shared.ErrInvalidArgument, configPath)
	}

	config := shared.DefaultConfig()
	if v := cmd.String("base-url"); v != "" {
		config.API.BaseURL = v
	}
	if v := cmd.String("client-id"); v != "" {
		config.Auth.ClientID = v
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if !cmd.IsSet("base-url") && !cmd.IsSet("client-id") && !cmd.Bool("overwrite") {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
	} else if err := shared.SaveConfig(configPath, config); err != nil {
		return err
	}

	r.config = config
	r.configPath = configPath
	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set api.base_url and the [auth] section in %s\n", configPath)
	r.writePlain("2. Run 'mlcc auth login' to sign in\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	applied, err := shared.AppliedMigrations(db)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s (%d migrations applied)\n", r.config.Database.Path, len(applied))
}
