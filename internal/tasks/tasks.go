// package tasks coordinates channel mutations and the notifications they produce.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/services"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/desertthunder/mlcc/internal/store"
)

// Invalidator is the part of the polling store the coordinator needs.
type Invalidator interface {
	Invalidate(key store.Key)
}

// ActionRecorder persists the outcome of every mutation.
//
// Recording errors are logged and never fail the mutation.
type ActionRecorder interface {
	RecordAction(action *models.Action) error
}

// CoordinatorOpts configures a [Coordinator].
type CoordinatorOpts struct {
	TTL      time.Duration  // Notification lifetime (default: 3s)
	Buffer   int            // Capacity of the notification channel (default: 8)
	Recorder ActionRecorder // Optional action log
	Logger   *log.Logger
}

// Coordinator wraps every write to the channel service with the same protocol:
// issue the request, then on success invalidate the affected cache entries and emit a
// success notification, or on failure emit an error notification and leave the cache alone.
//
// The coordinator does not check channel state; callers use the guards in models.
type Coordinator struct {
	api           services.ChannelAPI
	cache         Invalidator
	ttl           time.Duration
	recorder      ActionRecorder
	logger        *log.Logger
	notifications chan Notification
}

// NewCoordinator creates a coordinator. cache may be nil for one-shot commands.
func NewCoordinator(api services.ChannelAPI, cache Invalidator, opts CoordinatorOpts) *Coordinator {
	if opts.TTL <= 0 {
		opts.TTL = DefaultNotificationTTL
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 8
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &Coordinator{
		api:           api,
		cache:         cache,
		ttl:           opts.TTL,
		recorder:      opts.Recorder,
		logger:        opts.Logger,
		notifications: make(chan Notification, opts.Buffer),
	}
}

// Notifications delivers one notification per settled mutation.
func (c *Coordinator) Notifications() <-chan Notification {
	return c.notifications
}

// mutation describes how one operation is reported and which cache entry it affects.
type mutation struct {
	channelID  string
	kind       models.ActionKind
	target     string
	invalidate []store.Key
	success    string
	failure    string
}

// SetStatus requests a start or stop of the channel.
func (c *Coordinator) SetStatus(ctx context.Context, channelID string, action models.StatusAction) error {
	err := c.api.UpdateStatus(ctx, channelID, action)
	return c.settle(statusMutation(channelID, action), err)
}

// SwitchInput makes input the active input of the channel.
func (c *Coordinator) SwitchInput(ctx context.Context, channelID, input string) error {
	err := c.api.SwitchInput(ctx, channelID, input)
	return c.settle(switchInputMutation(channelID, input), err)
}

// PrepareInput pre-warms input on the channel.
func (c *Coordinator) PrepareInput(ctx context.Context, channelID, input string) error {
	err := c.api.PrepareInput(ctx, channelID, input)
	return c.settle(prepareInputMutation(channelID, input), err)
}

// InsertGraphic shows graphicID for duration, or indefinitely when duration is nil.
func (c *Coordinator) InsertGraphic(ctx context.Context, channelID, graphicID string, duration *time.Duration) error {
	err := c.api.StartGraphic(ctx, channelID, graphicID, duration)
	return c.settle(insertGraphicMutation(channelID, graphicID, duration), err)
}

// StopGraphics removes any active graphic overlay.
func (c *Coordinator) StopGraphics(ctx context.Context, channelID string) error {
	err := c.api.StopGraphics(ctx, channelID)
	return c.settle(stopGraphicsMutation(channelID), err)
}

// AddConfigItem stores a new output or graphic.
func (c *Coordinator) AddConfigItem(ctx context.Context, channelID string, dataType models.ConfigDataType, item models.ConfigItem) (*models.ConfigItemCreated, error) {
	created, err := c.api.AddConfigItem(ctx, channelID, dataType, item)
	if err := c.settle(addConfigItemMutation(channelID, dataType, item), err); err != nil {
		return nil, err
	}
	return created, nil
}

// RemoveConfigItem deletes an output or graphic.
func (c *Coordinator) RemoveConfigItem(ctx context.Context, channelID string, dataType models.ConfigDataType, itemID string) error {
	err := c.api.RemoveConfigItem(ctx, channelID, dataType, itemID)
	return c.settle(removeConfigItemMutation(channelID, dataType, itemID), err)
}

func (c *Coordinator) settle(m mutation, err error) error {
	c.record(m, err)

	if err != nil {
		c.logger.Error(m.failure, "channel", m.channelID, "target", m.target, "error", err)
		c.sendNotification(NewNotification(LevelError, m.failure, c.ttl))
		return fmt.Errorf("%s: %w", m.failure, err)
	}

	if c.cache != nil {
		for _, key := range m.invalidate {
			c.cache.Invalidate(key)
		}
	}
	c.logger.Info(m.success, "channel", m.channelID, "target", m.target)
	c.sendNotification(NewNotification(LevelSuccess, m.success, c.ttl))
	return nil
}

func (c *Coordinator) record(m mutation, err error) {
	if c.recorder == nil {
		return
	}
	if rerr := c.recorder.RecordAction(models.NewAction(m.channelID, m.kind, m.target, err)); rerr != nil {
		c.logger.Warn("failed to record action", "kind", m.kind, "error", rerr)
	}
}

// sendNotification sends without blocking; a full buffer drops the notification.
func (c *Coordinator) sendNotification(n Notification) {
	select {
	case c.notifications <- n:
	default:
		c.logger.Debug("notification dropped", "message", n.Message)
	}
}
