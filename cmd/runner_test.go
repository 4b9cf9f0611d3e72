package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/repositories"
	"github.com/desertthunder/mlcc/internal/services"
	"github.com/desertthunder/mlcc/internal/shared"
	tu "github.com/desertthunder/mlcc/internal/testing"
)

type harness struct {
	api    *tu.MockChannelAPI
	output *bytes.Buffer
	runner *Runner
	config *shared.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	api := tu.NewMockChannelAPI()
	api.SetChannels(
		models.Channel{ID: "c1", Name: "News", State: models.StateRunning, InputAttachments: []models.InputAttachment{
			{Name: "studio", Active: true},
			{Name: "remote"},
		}},
		models.Channel{ID: "c2", Name: "Sport", State: models.StateIdle},
	)
	api.Details["c1"] = &models.ChannelDetail{
		ChannelID:       "c1",
		GraphicsEnabled: true,
		Outputs:         []models.Output{{ID: "o1", Name: "HLS", URL: "https://cdn.example.com/news.m3u8"}},
		Graphics:        []models.Graphic{{ID: "g1", Name: "Bug", URL: "https://gfx.example.com/bug"}},
		Alerts:          []models.Alert{{ID: "a1", AlertedAt: 1700000000, State: "SET", Message: "Input loss"}},
	}
	api.Details["c2"] = &models.ChannelDetail{ChannelID: "c2"}

	config := shared.DefaultConfig()
	config.Auth.TokenPath = filepath.Join(t.TempDir(), "token.json")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		API:    api,
		DB:     db,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})
	return &harness{api: api, output: output, runner: runner, config: config}
}

func (h *harness) run(args ...string) error {
	h.output.Reset()
	return newApp(h.runner).Run(context.Background(), append([]string{"mlcc"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := tu.NewMockChannelAPI()
			raw := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
				Raw:        raw,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.raw != raw {
				t.Error("expected raw api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		seen := map[string]bool{}

		for i, cmd := range runner.register() {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if seen[cmd.Name] {
				t.Errorf("command %s registered twice", cmd.Name)
			}
			seen[cmd.Name] = true
		}

		for _, name := range []string{"setup", "auth", "channels", "inputs", "graphics", "config", "alerts", "actions", "api", "tui"} {
			if !seen[name] {
				t.Errorf("expected command %s", name)
			}
		}
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("loads config and applies environment", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			config := shared.DefaultConfig()
			config.API.BaseURL = "https://from-file.example.com/prod"
			if err := shared.SaveConfig(path, config); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			t.Setenv("MLCC_API_URL", "https://from-env.example.com/prod")

			h := newHarness(t)
			if err := h.run("--config", path, "channels", "list"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if h.runner.config.API.BaseURL != "https://from-env.example.com/prod" {
				t.Errorf("expected env override, got %s", h.runner.config.API.BaseURL)
			}
			if h.runner.configPath != path {
				t.Errorf("expected config path %s, got %s", path, h.runner.configPath)
			}
		})

		t.Run("rejects a missing explicit config", func(t *testing.T) {
			h := newHarness(t)
			err := h.run("--config", filepath.Join(t.TempDir(), "missing.toml"), "channels", "list")
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})
	})

	t.Run("tokenSource", func(t *testing.T) {
		t.Run("prefers MLCC_TOKEN", func(t *testing.T) {
			t.Setenv("MLCC_TOKEN", "env-token")
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})

			tokens, err := runner.tokenSource(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			token, err := tokens.Token()
			if err != nil || token.AccessToken != "env-token" {
				t.Errorf("expected env token, got %v, %v", token, err)
			}
		})

		t.Run("without a stored token sends unauthenticated requests", func(t *testing.T) {
			t.Setenv("MLCC_TOKEN", "")
			config := shared.DefaultConfig()
			config.Auth.TokenPath = filepath.Join(t.TempDir(), "none.json")
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

			tokens, err := runner.tokenSource(context.Background())
			if err != nil || tokens != nil {
				t.Errorf("expected no token source, got %v, %v", tokens, err)
			}
		})
	})
}

func TestChannelsCommands(t *testing.T) {
	t.Run("list prints every channel", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("channels", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"News", "Sport", "RUNNING", "IDLE"} {
			if !strings.Contains(h.output.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, h.output.String())
			}
		}
	})

	t.Run("list as json", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("channels", "list", "--format", "json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var decoded []map[string]any
		if err := json.Unmarshal(h.output.Bytes(), &decoded); err != nil {
			t.Fatalf("expected JSON output, got %v:\n%s", err, h.output.String())
		}
		if len(decoded) != 2 {
			t.Errorf("expected 2 channels, got %d", len(decoded))
		}
	})

	t.Run("list rejects unknown format", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("channels", "list", "--format", "yaml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("show resolves names", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("channels", "show", "News"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Channel: News (c1)", "Active input: studio", "Input loss"} {
			if !strings.Contains(h.output.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, h.output.String())
			}
		}
	})

	t.Run("show unknown channel", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("channels", "show", "nope"); !errors.Is(err, shared.ErrChannelNotFound) {
			t.Errorf("expected ErrChannelNotFound, got %v", err)
		}
	})

	t.Run("start is refused while running", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("channels", "start", "c1"); !errors.Is(err, shared.ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
		if len(h.api.CallsTo("UpdateStatus")) != 0 {
			t.Error("expected no status request")
		}
	})

	t.Run("force skips the state check", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("channels", "start", "--force", "c1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(h.api.CallsTo("UpdateStatus")) != 1 {
			t.Error("expected a status request")
		}
	})

	t.Run("start records the action", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("channels", "start", "Sport"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(h.output.String(), "✓ ") {
			t.Errorf("expected a success line, got %q", h.output.String())
		}

		actions, err := repositories.NewActionRepository(h.runner.db).List(nil)
		if err != nil {
			t.Fatalf("failed to list actions: %v", err)
		}
		if len(actions) != 1 || actions[0].ChannelID() != "c2" || !actions[0].Succeeded() {
			t.Errorf("expected one successful action for c2, got %+v", actions)
		}
	})

	t.Run("stop failure is returned and recorded", func(t *testing.T) {
		h := newHarness(t)
		h.api.Errs["UpdateStatus"] = fmt.Errorf("%w: boom", shared.ErrAPIRequest)

		if err := h.run("channels", "stop", "c1"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if err := h.run("actions", "list", "--failed"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "failed") {
			t.Errorf("expected the failed action, got:\n%s", h.output.String())
		}
	})

	t.Run("dump writes every channel", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "dump.json")
		if err := h.run("channels", "dump", "--output", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "Input loss") || !strings.Contains(content, "Sport") {
			t.Errorf("expected both channels in the dump, got %s", content)
		}
	})
}

func TestInputsCommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		method  string
	}{
		{name: "switches a standby input", args: []string{"inputs", "switch", "c1", "remote"}, method: "SwitchInput"},
		{name: "prepares a standby input", args: []string{"inputs", "prepare", "c1", "remote"}, method: "PrepareInput"},
		{name: "refuses the active input", args: []string{"inputs", "switch", "c1", "studio"}, wantErr: shared.ErrInputActive},
		{name: "refuses an unknown input", args: []string{"inputs", "prepare", "c1", "backup"}, wantErr: shared.ErrInputNotFound},
		{name: "refuses an idle channel", args: []string{"inputs", "switch", "c2", "remote"}, wantErr: shared.ErrInputNotFound},
		{name: "requires an input", args: []string{"inputs", "switch", "c1"}, wantErr: shared.ErrMissingArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.run(tt.args...)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			calls := h.api.CallsTo(tt.method)
			if len(calls) != 1 || calls[0].Args[0] != "remote" {
				t.Errorf("expected one %s call for remote, got %+v", tt.method, calls)
			}
		})
	}

	t.Run("idle channel with a known input", func(t *testing.T) {
		h := newHarness(t)
		h.api.SetChannels(models.Channel{ID: "c2", Name: "Sport", State: models.StateIdle, InputAttachments: []models.InputAttachment{{Name: "remote"}}})

		if err := h.run("inputs", "switch", "c2", "remote"); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestGraphicsCommands(t *testing.T) {
	t.Run("insert with duration", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("graphics", "insert", "--duration", "10", "c1", "Bug"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		calls := h.api.CallsTo("StartGraphic")
		if len(calls) != 1 || calls[0].Args[0] != "g1" {
			t.Fatalf("expected one insert of g1, got %+v", calls)
		}
		if d := calls[0].Args[1].(*time.Duration); d == nil || *d != 10*time.Second {
			t.Errorf("expected 10s, got %v", d)
		}
	})

	t.Run("insert indefinitely", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("graphics", "insert", "c1", "g1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if d := h.api.CallsTo("StartGraphic")[0].Args[1].(*time.Duration); d != nil {
			t.Errorf("expected no duration, got %v", *d)
		}
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("graphics", "insert", "--duration", "0", "c1", "g1"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("rejects unknown graphic", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("graphics", "insert", "c1", "Scoreboard"); !errors.Is(err, shared.ErrGraphicNotFound) {
			t.Errorf("expected ErrGraphicNotFound, got %v", err)
		}
	})

	t.Run("rejects disabled graphics", func(t *testing.T) {
		h := newHarness(t)
		h.api.Details["c1"].GraphicsEnabled = false
		if err := h.run("graphics", "insert", "c1", "g1"); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("stop requires a running channel", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("graphics", "stop", "c2"); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
		if err := h.run("graphics", "stop", "c1"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestConfigCommands(t *testing.T) {
	t.Run("add validates the url", func(t *testing.T) {
		h := newHarness(t)
		err := h.run("config", "add", "--name", "Backup", "--url", "not a url", "c1")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if len(h.api.CallsTo("AddConfigItem")) != 0 {
			t.Error("expected no add request")
		}
	})

	t.Run("add prints the new id", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("config", "add", "--type", "graphics", "--name", "Clock", "--url", "https://gfx.example.com/clock", "c1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "ID: created-Clock") {
			t.Errorf("expected the created id, got %q", h.output.String())
		}
		if calls := h.api.CallsTo("AddConfigItem"); calls[0].Args[0] != models.DataTypeGraphics {
			t.Errorf("expected graphics, got %v", calls[0].Args[0])
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("config", "list", "--type", "inputs", "c1"); err == nil {
			t.Error("expected an error for an unknown type")
		}
	})

	t.Run("remove", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("config", "remove", "c1", "o1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls := h.api.CallsTo("RemoveConfigItem"); len(calls) != 1 || calls[0].Args[1] != "o1" {
			t.Errorf("expected o1 to be removed, got %+v", calls)
		}
	})

	t.Run("discover adds unconfigured outputs", func(t *testing.T) {
		h := newHarness(t)
		h.api.Discovered["c1"] = []models.DiscoveredOutput{
			{Type: "HLS", Name: "HLS", URL: "https://cdn.example.com/news.m3u8"},
			{Type: "DASH", Name: "DASH", URL: "https://cdn.example.com/news.mpd"},
		}

		if err := h.run("config", "discover", "c1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "news.mpd") {
			t.Errorf("expected discovered outputs, got:\n%s", h.output.String())
		}

		if err := h.run("config", "discover", "--add", "c1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		calls := h.api.CallsTo("AddConfigItem")
		if len(calls) != 1 || calls[0].Args[1].(models.ConfigItem).URL != "https://cdn.example.com/news.mpd" {
			t.Errorf("expected only the DASH output to be added, got %+v", calls)
		}
	})
}

func TestAlertsCommands(t *testing.T) {
	h := newHarness(t)

	if err := h.run("alerts", "sync"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(h.output.String(), "Recorded 1 alerts from 2 channels") {
		t.Errorf("unexpected sync output %q", h.output.String())
	}

	if err := h.run("alerts", "list", "--channel", "c1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(h.output.String(), "Input loss") {
		t.Errorf("expected the recorded alert, got:\n%s", h.output.String())
	}

	if err := h.run("alerts", "prune"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(h.output.String(), "Pruned 0 expired alerts") {
		t.Errorf("expected nothing to prune, got %q", h.output.String())
	}
}

func TestAPICommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `[{"Id":"c1"}]`)
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	newRawHarness := func(t *testing.T) *harness {
		h := newHarness(t)
		h.runner.raw = services.NewAPIService(srv.URL, srv.Client(), nil)
		return h
	}

	t.Run("get prints json", func(t *testing.T) {
		h := newRawHarness(t)
		if err := h.run("api", "get", "/channels"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), `"Id": "c1"`) {
			t.Errorf("expected pretty JSON, got %q", h.output.String())
		}
	})

	t.Run("get reports status errors", func(t *testing.T) {
		h := newRawHarness(t)
		if err := h.run("api", "get", "/missing"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("post rejects invalid json", func(t *testing.T) {
		h := newRawHarness(t)
		if err := h.run("api", "post", "--data", "{nope", "/channels"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config writes the template once", func(t *testing.T) {
		h := newHarness(t)
		dir := t.TempDir()
		t.Chdir(dir)

		if err := h.run("setup", "config"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))

		if err := h.run("setup", "config"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for an existing file, got %v", err)
		}
		if err := h.run("setup", "config", "--overwrite"); err != nil {
			t.Errorf("expected --overwrite to replace the file, got %v", err)
		}
	})

	t.Run("config applies flags", func(t *testing.T) {
		h := newHarness(t)
		dir := t.TempDir()
		t.Chdir(dir)

		if err := h.run("setup", "config", "--base-url", "https://api.example.com/prod"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		loaded, err := shared.LoadConfig(filepath.Join(dir, "config.toml"))
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if loaded.API.BaseURL != "https://api.example.com/prod" {
			t.Errorf("expected base url to be saved, got %s", loaded.API.BaseURL)
		}
	})

	t.Run("database", func(t *testing.T) {
		h := newHarness(t)
		h.config.Database.Path = filepath.Join(t.TempDir(), "mlcc.db")

		if err := h.run("setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, h.config.Database.Path)
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("login stores the token", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
				http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh","refresh_token":"again","token_type":"Bearer","expires_in":3600}`)
		}))
		defer tokenSrv.Close()

		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve a port: %v", err)
		}
		addr := l.Addr().String()
		l.Close()

		h := newHarness(t)
		h.config.Auth.ClientID = "client"
		h.config.Auth.AuthURL = tokenSrv.URL + "/authorize"
		h.config.Auth.TokenURL = tokenSrv.URL + "/token"
		h.config.Auth.RedirectURI = "http://" + addr + "/callback"
		h.runner.openURL = func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			q := u.Query()
			resp, err := http.Get(q.Get("redirect_uri") + "?code=good-code&state=" + url.QueryEscape(q.Get("state")))
			if err != nil {
				return err
			}
			return resp.Body.Close()
		}

		if err := h.run("auth", "login", "--timeout", "5s"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		token, err := services.NewTokenFile(h.config.Auth.TokenPath).Load()
		if err != nil {
			t.Fatalf("expected a stored token, got %v", err)
		}
		if token.AccessToken != "fresh" {
			t.Errorf("expected the exchanged token, got %s", token.AccessToken)
		}
	})

	t.Run("login requires a client", func(t *testing.T) {
		h := newHarness(t)
		h.config.Auth.ClientID = ""
		if err := h.run("auth", "login"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("status without token", func(t *testing.T) {
		t.Setenv("MLCC_TOKEN", "")
		h := newHarness(t)
		if err := h.run("auth", "status"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("status with env token", func(t *testing.T) {
		t.Setenv("MLCC_TOKEN", "env-token")
		h := newHarness(t)
		if err := h.run("auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(h.output.String(), "Channel API reachable (2 channels)") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("logout", func(t *testing.T) {
		h := newHarness(t)
		if err := os.WriteFile(h.config.Auth.TokenPath, []byte(`{"access_token":"x"}`), 0600); err != nil {
			t.Fatalf("failed to write token: %v", err)
		}

		if err := h.run("auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(h.config.Auth.TokenPath); !os.IsNotExist(err) {
			t.Error("expected the token to be removed")
		}
		if err := h.run("auth", "logout"); err != nil {
			t.Errorf("expected a second logout to succeed, got %v", err)
		}
	})
}
