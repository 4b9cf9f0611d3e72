package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mlcc/internal/formatter"
	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/repositories"
	"github.com/desertthunder/mlcc/internal/services"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/desertthunder/mlcc/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The channel API and the database are opened on first use so commands that need
// neither (setup, help) work without a reachable service.
type Runner struct {
	config     *shared.Config
	configPath string
	api        services.ChannelAPI
	raw        *services.APIService
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	openURL    func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        services.ChannelAPI  // Overrides the HTTPS client built from Config
	Raw        *services.APIService // Overrides the raw client of the api commands
	DB         *sql.DB              // Overrides the database opened from Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	OpenURL    func(string) error // Opens the login page (default: shared.OpenBrowser)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		raw:        opts.Raw,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		openURL:    opts.OpenURL,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, channelsCommand, inputsCommand, graphicsCommand,
		configCommand, alertsCommand, actionsCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --verbose.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.configPath = path
	} else if cmd.IsSet("config") {
		return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	r.config.ApplyEnv()
	return ctx, nil
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI runs.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// tokenSource picks the bearer token: MLCC_TOKEN, then the stored login token.
//
// Without either, requests are sent unauthenticated.
func (r *Runner) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if token := os.Getenv("MLCC_TOKEN"); token != "" {
		return services.StaticToken(token), nil
	}

	oauthConfig, err := services.NewOAuthConfig(r.config.Auth)
	if err != nil {
		r.logger.Debug("token refresh disabled", "reason", err)
		oauthConfig = nil
	}

	tokens, err := services.NewTokenSource(ctx, oauthConfig, services.NewTokenFile(r.config.Auth.TokenPath))
	if errors.Is(err, shared.ErrNotAuthenticated) {
		r.logger.Warn("no stored token, sending unauthenticated requests", "hint", "run 'mlcc auth login'")
		return nil, nil
	}
	return tokens, err
}

// channelAPI returns the channel service client, creating it on first use.
func (r *Runner) channelAPI(ctx context.Context) (services.ChannelAPI, error) {
	if r.api != nil {
		return r.api, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	tokens, err := r.tokenSource(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := services.NewChannelService(services.ChannelServiceOpts{
		BaseURL:     r.config.API.BaseURL,
		HTTPClient:  r.httpClient,
		TokenSource: tokens,
		RateLimit:   r.config.API.RequestsPerSecond,
		Timeout:     r.config.API.Timeout.Duration,
		Logger:      shared.WithLogger(r.logger, "component", "api"),
	})
	if err != nil {
		return nil, err
	}
	r.api = svc
	return svc, nil
}

// rawAPI returns the uninterpreted client of the api commands.
func (r *Runner) rawAPI(ctx context.Context) (*services.APIService, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	tokens, err := r.tokenSource(ctx)
	if err != nil {
		return nil, err
	}
	r.raw = services.NewAPIService(r.config.API.BaseURL, r.httpClient, tokens)
	return r.raw, nil
}

// database opens and migrates the local database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	return db, nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// recorder returns the action log, or nil when the database cannot be opened.
//
// A broken action log never blocks an operator action.
func (r *Runner) recorder() tasks.ActionRecorder {
	db, err := r.database()
	if err != nil {
		r.logger.Warn("action log disabled", "error", err)
		return nil
	}
	return repositories.NewActionLogAdapter(repositories.NewActionRepository(db))
}

// coordinator builds a mutation coordinator for one-shot commands.
//
// There is no cache to invalidate outside the TUI.
func (r *Runner) coordinator(api services.ChannelAPI) *tasks.Coordinator {
	return tasks.NewCoordinator(api, nil, tasks.CoordinatorOpts{
		TTL:      r.config.UI.NotificationTTL.Duration,
		Recorder: r.recorder(),
		Logger:   r.logger,
	})
}

// findChannel resolves ref (an id or an exact name) against the channel list.
func (r *Runner) findChannel(ctx context.Context, api services.ChannelAPI, ref string) (models.Channel, error) {
	if ref == "" {
		return models.Channel{}, fmt.Errorf("%w: channel id", shared.ErrMissingArgument)
	}

	channels, err := api.ListChannels(ctx)
	if err != nil {
		return models.Channel{}, err
	}
	for _, ch := range channels {
		if ch.ID == ref {
			return ch, nil
		}
	}
	for _, ch := range channels {
		if ch.Name == ref {
			return ch, nil
		}
	}
	return models.Channel{}, fmt.Errorf("%w: %s", shared.ErrChannelNotFound, ref)
}

// loadChannel resolves ref and merges in its detail.
func (r *Runner) loadChannel(ctx context.Context, api services.ChannelAPI, ref string) (models.Channel, *models.ChannelDetail, error) {
	ch, err := r.findChannel(ctx, api, ref)
	if err != nil {
		return models.Channel{}, nil, err
	}
	detail, err := api.GetChannel(ctx, ch.ID)
	if err != nil {
		return models.Channel{}, nil, err
	}
	return ch.WithDetail(detail), detail, nil
}

// writeTable renders t in the format of the --format flag.
func (r *Runner) writeTable(cmd *cli.Command, t formatter.Table) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := formatter.Write(r.output, format, t); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
