// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/shared"
)

// MockChannelAPI is a test double for services.ChannelAPI.
//
// Reads serve the configured fixtures; every call is recorded in Calls. Err (or the
// per-method entry of Errs) makes the matching call fail.
type MockChannelAPI struct {
	mu         sync.Mutex
	Channels   []models.Channel
	Details    map[string]*models.ChannelDetail
	Discovered map[string][]models.DiscoveredOutput
	Err        error
	Errs       map[string]error
	Calls      []Call
}

// Call is one recorded invocation of [MockChannelAPI].
type Call struct {
	Method    string
	ChannelID string
	Args      []any
}

func NewMockChannelAPI() *MockChannelAPI {
	return &MockChannelAPI{
		Details:    make(map[string]*models.ChannelDetail),
		Discovered: make(map[string][]models.DiscoveredOutput),
		Errs:       make(map[string]error),
	}
}

func (m *MockChannelAPI) record(method, channelID string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Method: method, ChannelID: channelID, Args: args})
	if err, ok := m.Errs[method]; ok {
		return err
	}
	return m.Err
}

// CallsTo returns the recorded calls of method.
func (m *MockChannelAPI) CallsTo(method string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []Call
	for _, c := range m.Calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// SetChannels replaces the channel list fixture.
func (m *MockChannelAPI) SetChannels(channels ...models.Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Channels = channels
}

func (m *MockChannelAPI) ListChannels(ctx context.Context) ([]models.Channel, error) {
	if err := m.record("ListChannels", ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Channel(nil), m.Channels...), nil
}

func (m *MockChannelAPI) GetChannel(ctx context.Context, channelID string) (*models.ChannelDetail, error) {
	if err := m.record("GetChannel", channelID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.Details[channelID]
	if !ok {
		return nil, shared.ErrChannelNotFound
	}
	return detail, nil
}

func (m *MockChannelAPI) DiscoverOutputs(ctx context.Context, channelID string) ([]models.DiscoveredOutput, error) {
	if err := m.record("DiscoverOutputs", channelID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Discovered[channelID], nil
}

func (m *MockChannelAPI) UpdateStatus(ctx context.Context, channelID string, action models.StatusAction) error {
	return m.record("UpdateStatus", channelID, action)
}

func (m *MockChannelAPI) SwitchInput(ctx context.Context, channelID, input string) error {
	return m.record("SwitchInput", channelID, input)
}

func (m *MockChannelAPI) PrepareInput(ctx context.Context, channelID, input string) error {
	return m.record("PrepareInput", channelID, input)
}

func (m *MockChannelAPI) StartGraphic(ctx context.Context, channelID, graphicID string, duration *time.Duration) error {
	return m.record("StartGraphic", channelID, graphicID, duration)
}

func (m *MockChannelAPI) StopGraphics(ctx context.Context, channelID string) error {
	return m.record("StopGraphics", channelID)
}

func (m *MockChannelAPI) AddConfigItem(ctx context.Context, channelID string, dataType models.ConfigDataType, item models.ConfigItem) (*models.ConfigItemCreated, error) {
	if err := m.record("AddConfigItem", channelID, dataType, item); err != nil {
		return nil, err
	}
	return &models.ConfigItemCreated{ID: "created-" + item.Name, ChannelID: channelID, Name: item.Name, URL: item.URL}, nil
}

func (m *MockChannelAPI) RemoveConfigItem(ctx context.Context, channelID string, dataType models.ConfigDataType, itemID string) error {
	return m.record("RemoveConfigItem", channelID, dataType, itemID)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
