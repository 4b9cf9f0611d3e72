// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: table, csv, markdown or json",
		Value:   "table",
	}
}

func forceFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "force",
		Usage: "Skip the channel state check and send the request anyway",
	}
}

func dataTypeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "type",
		Aliases: []string{"t"},
		Usage:   "Collection to act on: outputs or graphics",
		Value:   "outputs",
	}
}

func channelArg() cli.Argument {
	return &cli.StringArg{Name: "channel", UsageText: "channel id or name"}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Base URL of the channel API, including the stage",
					},
					&cli.StringFlag{
						Name:  "client-id",
						Usage: "OAuth2 client id",
					},
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "Replace an existing config file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in through the browser and store the token",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: defaultLoginTimeout,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the stored token and check it against the channel API",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}

// channelsCommand handles channel reads and lifecycle changes
func channelsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "channels",
		Aliases: []string{"ch"},
		Usage:   "List, inspect, start and stop channels",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List channels with their state and active input",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.ChannelsList,
			},
			{
				Name:      "show",
				Usage:     "Show one channel with outputs, graphics and alerts",
				Arguments: []cli.Argument{channelArg()},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ChannelsShow,
			},
			{
				Name:      "start",
				Usage:     "Start a channel (allowed from IDLE or UPDATE_FAILED)",
				Arguments: []cli.Argument{channelArg()},
				Flags:     []cli.Flag{forceFlag()},
				Action:    r.ChannelsStart,
			},
			{
				Name:      "stop",
				Usage:     "Stop a running channel",
				Arguments: []cli.Argument{channelArg()},
				Flags:     []cli.Flag{forceFlag()},
				Action:    r.ChannelsStop,
			},
			{
				Name:  "dump",
				Usage: "Fetch every channel with its detail as JSON",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent detail requests",
						Value: 4,
					},
					&cli.StringSliceFlag{
						Name:  "channel",
						Usage: "Only dump these channel ids",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the dump to a file instead of stdout",
					},
				},
				Action: r.ChannelsDump,
			},
		},
	}
}

// inputsCommand handles input switching
func inputsCommand(r *Runner) *cli.Command {
	inputArgs := func() []cli.Argument {
		return []cli.Argument{channelArg(), &cli.StringArg{Name: "input"}}
	}

	return &cli.Command{
		Name:  "inputs",
		Usage: "List, prepare and switch channel inputs",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List the inputs attached to a channel",
				Arguments: []cli.Argument{channelArg()},
				Flags:     []cli.Flag{formatFlag()},
				Action:    r.InputsList,
			},
			{
				Name:      "switch",
				Usage:     "Make an input active on a running channel",
				Arguments: inputArgs(),
				Flags:     []cli.Flag{forceFlag()},
				Action:    r.InputsSwitch,
			},
			{
				Name:      "prepare",
				Usage:     "Pre-warm an input ahead of a switch",
				Arguments: inputArgs(),
				Flags:     []cli.Flag{forceFlag()},
				Action:    r.InputsPrepare,
			},
		},
	}
}

// graphicsCommand handles motion graphics
func graphicsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "graphics",
		Aliases: []string{"gfx"},
		Usage:   "Insert and stop motion graphics",
		Commands: []*cli.Command{
			{
				Name:      "insert",
				Usage:     "Show a configured graphic on a running channel",
				Arguments: []cli.Argument{channelArg(), &cli.StringArg{Name: "graphic", UsageText: "graphic id or name"}},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "duration",
						Usage: "Seconds to show the graphic for; omit to show it indefinitely",
					},
					forceFlag(),
				},
				Action: r.GraphicsInsert,
			},
			{
				Name:      "stop",
				Usage:     "Remove all graphics from a channel",
				Arguments: []cli.Argument{channelArg()},
				Flags:     []cli.Flag{forceFlag()},
				Action:    r.GraphicsStop,
			},
		},
	}
}

// configCommand handles the configured outputs and graphics of a channel
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the outputs and graphics configured on a channel",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List configured outputs or graphics",
				Arguments: []cli.Argument{channelArg()},
				Flags:     []cli.Flag{dataTypeFlag(), formatFlag()},
				Action:    r.ConfigList,
			},
			{
				Name:      "add",
				Usage:     "Add an output or graphic",
				Arguments: []cli.Argument{channelArg()},
				Flags: []cli.Flag{
					dataTypeFlag(),
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "url", Usage: "Absolute URL", Required: true},
				},
				Action: r.ConfigAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove an output or graphic",
				Arguments: []cli.Argument{channelArg(), &cli.StringArg{Name: "item", UsageText: "item id"}},
				Flags:     []cli.Flag{dataTypeFlag()},
				Action:    r.ConfigRemove,
			},
			{
				Name:      "discover",
				Usage:     "List outputs the provider reports for a channel",
				Arguments: []cli.Argument{channelArg()},
				Flags: []cli.Flag{
					formatFlag(),
					&cli.BoolFlag{
						Name:  "add",
						Usage: "Add every discovered output that is not configured yet",
					},
				},
				Action: r.ConfigDiscover,
			},
		},
	}
}

// alertsCommand handles the local alert history
func alertsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "Record and browse channel alerts",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Fetch the alerts of every channel into the local history",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent detail requests",
						Value: 4,
					},
					&cli.StringSliceFlag{
						Name:  "channel",
						Usage: "Only sync these channel ids",
					},
				},
				Action: r.AlertsSync,
			},
			{
				Name:  "list",
				Usage: "List recorded alerts, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "channel", Usage: "Filter by channel id"},
					&cli.StringFlag{Name: "state", Usage: "Filter by alert state, e.g. SET or CLEARED"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of alerts", Value: 50},
					formatFlag(),
				},
				Action: r.AlertsList,
			},
			{
				Name:   "prune",
				Usage:  "Delete cleared alerts past their expiry",
				Action: r.AlertsPrune,
			},
		},
	}
}

// actionsCommand handles the operator action log
func actionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "actions",
		Usage: "Browse the operator action log",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded actions, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "channel", Usage: "Filter by channel id"},
					&cli.StringFlag{Name: "kind", Usage: "Filter by action kind, e.g. status or switch_input"},
					&cli.BoolFlag{Name: "failed", Usage: "Only show failed actions"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of actions", Value: 50},
					formatFlag(),
				},
				Action: r.ActionsList,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the channel API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the raw response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON responses",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive control panel",
		Action:  r.TUI,
	}
}
