package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// ChannelServiceOpts configures a [ChannelService].
type ChannelServiceOpts struct {
	BaseURL     string             // API base URL including the stage path
	HTTPClient  *http.Client       // Defaults to a client with Timeout
	TokenSource oauth2.TokenSource // Bearer token source; requests are unauthenticated when nil
	RateLimit   float64            // Requests per second, 0 disables pacing
	Timeout     time.Duration      // Used when HTTPClient is nil (default: 10s)
	Logger      *log.Logger
}

// ChannelService implements [ChannelAPI] over HTTPS.
type ChannelService struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewChannelService creates a new channel service client.
func NewChannelService(opts ChannelServiceOpts) (*ChannelService, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: api base url is required", shared.ErrMissingConfig)
	}
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: api base url: %v", shared.ErrInvalidConfig, err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	s := &ChannelService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     opts.TokenSource,
		logger:     opts.Logger,
	}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return s, nil
}

// channelPath builds "/channels/{id}/..." escaping every segment.
func channelPath(channelID string, segments ...string) string {
	parts := []string{"", "channels", url.PathEscape(channelID)}
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return strings.Join(parts, "/")
}

// doRequest performs an authenticated request and returns the raw response body.
func (s *ChannelService) doRequest(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if s.tokens != nil {
		token, err := s.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
		}
		token.SetAuthHeader(req)
	}

	started := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	s.logger.Debug("api request", "method", method, "path", endpoint, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(method, endpoint, resp.StatusCode, data)
	}
	return data, nil
}

// ListChannels retrieves all channels.
func (s *ChannelService) ListChannels(ctx context.Context) ([]models.Channel, error) {
	data, err := s.doRequest(ctx, http.MethodGet, "/channels", nil)
	if err != nil {
		return nil, err
	}
	return models.ParseChannelList(data)
}

// GetChannel retrieves the detail of a single channel.
func (s *ChannelService) GetChannel(ctx context.Context, channelID string) (*models.ChannelDetail, error) {
	data, err := s.doRequest(ctx, http.MethodGet, channelPath(channelID), nil)
	if err != nil {
		return nil, err
	}
	return models.ParseChannelDetail(data)
}

// DiscoverOutputs lists the outputs the provider knows for a channel.
func (s *ChannelService) DiscoverOutputs(ctx context.Context, channelID string) ([]models.DiscoveredOutput, error) {
	data, err := s.doRequest(ctx, http.MethodGet, channelPath(channelID, "outputs", "discover"), nil)
	if err != nil {
		return nil, err
	}
	return models.ParseDiscoveredOutputs(data)
}

func (s *ChannelService) UpdateStatus(ctx context.Context, channelID string, action models.StatusAction) error {
	if _, err := models.ParseStatusAction(string(action)); err != nil {
		return err
	}
	_, err := s.doRequest(ctx, http.MethodPut, channelPath(channelID, "status", string(action)), struct{}{})
	return err
}

func (s *ChannelService) SwitchInput(ctx context.Context, channelID, input string) error {
	if input == "" {
		return fmt.Errorf("%w: input name", shared.ErrMissingArgument)
	}
	_, err := s.doRequest(ctx, http.MethodPut, channelPath(channelID, "activeinput", input), struct{}{})
	return err
}

func (s *ChannelService) PrepareInput(ctx context.Context, channelID, input string) error {
	if input == "" {
		return fmt.Errorf("%w: input name", shared.ErrMissingArgument)
	}
	_, err := s.doRequest(ctx, http.MethodPost, channelPath(channelID, "prepareinput", input), struct{}{})
	return err
}

// startGraphicBody is sent as {} for an indefinite overlay.
type startGraphicBody struct {
	Duration *int64 `json:"Duration,omitempty"`
}

// StartGraphic inserts a graphic; duration is sent in milliseconds.
func (s *ChannelService) StartGraphic(ctx context.Context, channelID, graphicID string, duration *time.Duration) error {
	if graphicID == "" {
		return fmt.Errorf("%w: graphic id", shared.ErrMissingArgument)
	}

	var body startGraphicBody
	if duration != nil {
		if *duration <= 0 {
			return fmt.Errorf("%w: duration must be positive", shared.ErrInvalidArgument)
		}
		ms := duration.Milliseconds()
		body.Duration = &ms
	}

	_, err := s.doRequest(ctx, http.MethodPost, channelPath(channelID, "graphics", graphicID, "start"), body)
	return err
}

func (s *ChannelService) StopGraphics(ctx context.Context, channelID string) error {
	_, err := s.doRequest(ctx, http.MethodPost, channelPath(channelID, "graphics", "stop"), nil)
	return err
}

// AddConfigItem validates item and stores it under dataType.
func (s *ChannelService) AddConfigItem(ctx context.Context, channelID string, dataType models.ConfigDataType, item models.ConfigItem) (*models.ConfigItemCreated, error) {
	if _, err := models.ParseConfigDataType(string(dataType)); err != nil {
		return nil, err
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	data, err := s.doRequest(ctx, http.MethodPost, channelPath(channelID, string(dataType)), item)
	if err != nil {
		return nil, err
	}

	var created models.ConfigItemCreated
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &created); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
	}
	return &created, nil
}

func (s *ChannelService) RemoveConfigItem(ctx context.Context, channelID string, dataType models.ConfigDataType, itemID string) error {
	if _, err := models.ParseConfigDataType(string(dataType)); err != nil {
		return err
	}
	if itemID == "" {
		return fmt.Errorf("%w: %s id", shared.ErrMissingArgument, dataType.Singular())
	}
	_, err := s.doRequest(ctx, http.MethodDelete, channelPath(channelID, string(dataType), itemID), nil)
	return err
}

var _ ChannelAPI = (*ChannelService)(nil)
