// package services defines the [ChannelAPI] interface and its HTTP implementation
package services

import (
	"context"
	"time"

	"github.com/desertthunder/mlcc/internal/models"
)

// ChannelAPI is the remote channel service consumed by the store, the coordinator and the CLI.
type ChannelAPI interface {
	// ListChannels retrieves every channel with its state and input attachments.
	ListChannels(ctx context.Context) ([]models.Channel, error)

	// GetChannel retrieves the configured outputs, graphics and alerts of a channel.
	GetChannel(ctx context.Context, channelID string) (*models.ChannelDetail, error)

	// DiscoverOutputs lists outputs the provider reports for the channel.
	DiscoverOutputs(ctx context.Context, channelID string) ([]models.DiscoveredOutput, error)

	// UpdateStatus requests a start or stop of the channel.
	UpdateStatus(ctx context.Context, channelID string, action models.StatusAction) error

	// SwitchInput makes the named input attachment active immediately.
	SwitchInput(ctx context.Context, channelID, input string) error

	// PrepareInput pre-warms the named input attachment.
	PrepareInput(ctx context.Context, channelID, input string) error

	// StartGraphic inserts a graphic overlay. A nil duration shows it indefinitely.
	StartGraphic(ctx context.Context, channelID, graphicID string, duration *time.Duration) error

	// StopGraphics removes any active graphic overlay.
	StopGraphics(ctx context.Context, channelID string) error

	// AddConfigItem stores a new output or graphic for the channel.
	AddConfigItem(ctx context.Context, channelID string, dataType models.ConfigDataType, item models.ConfigItem) (*models.ConfigItemCreated, error)

	// RemoveConfigItem deletes an output or graphic from the channel.
	RemoveConfigItem(ctx context.Context, channelID string, dataType models.ConfigDataType, itemID string) error
}
