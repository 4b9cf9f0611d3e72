package store

import (
	"context"

	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/services"
)

// ChannelsFetcher lists channels through api.
func ChannelsFetcher(api services.ChannelAPI) Fetcher {
	return func(ctx context.Context) (any, error) {
		return api.ListChannels(ctx)
	}
}

// ChannelFetcher loads the detail of channelID through api.
func ChannelFetcher(api services.ChannelAPI, channelID string) Fetcher {
	return func(ctx context.Context) (any, error) {
		return api.GetChannel(ctx, channelID)
	}
}

// DiscoverFetcher loads the discovered outputs of channelID through api.
func DiscoverFetcher(api services.ChannelAPI, channelID string) Fetcher {
	return func(ctx context.Context) (any, error) {
		return api.DiscoverOutputs(ctx, channelID)
	}
}

// Channels extracts the channel list of a [ChannelsKey] snapshot.
func Channels(s Snapshot) []models.Channel {
	channels, _ := s.Data.([]models.Channel)
	return channels
}

// Detail extracts the channel detail of a [ChannelKey] snapshot.
func Detail(s Snapshot) *models.ChannelDetail {
	detail, _ := s.Data.(*models.ChannelDetail)
	return detail
}

// Discovered extracts the outputs of a [DiscoverKey] snapshot.
func Discovered(s Snapshot) []models.DiscoveredOutput {
	outputs, _ := s.Data.([]models.DiscoveredOutput)
	return outputs
}
