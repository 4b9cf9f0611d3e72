package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/desertthunder/mlcc/internal/store"
)

// DefaultNotificationTTL is how long a notification stays visible.
const DefaultNotificationTTL = 3 * time.Second

// Level of a [Notification].
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return ""
	}
}

// Notification is a transient message about a settled mutation.
type Notification struct {
	ID        string
	Level     Level
	Message   string
	TTL       time.Duration
	CreatedAt time.Time
}

func NewNotification(level Level, message string, ttl time.Duration) Notification {
	return Notification{
		ID:        shared.GenerateID(),
		Level:     level,
		Message:   message,
		TTL:       ttl,
		CreatedAt: time.Now(),
	}
}

// Expired reports whether the notification should be hidden at now.
func (n Notification) Expired(now time.Time) bool {
	return !now.Before(n.CreatedAt.Add(n.TTL))
}

func statusMutation(channelID string, action models.StatusAction) mutation {
	return mutation{
		channelID:  channelID,
		kind:       models.KindSetStatus,
		target:     string(action),
		invalidate: []store.Key{store.ChannelsKey, store.ChannelKey(channelID)},
		success:    "Channel update requested",
		failure:    "Error updating status",
	}
}

func switchInputMutation(channelID, input string) mutation {
	return mutation{
		channelID:  channelID,
		kind:       models.KindSwitchInput,
		target:     input,
		invalidate: []store.Key{store.ChannelsKey, store.ChannelKey(channelID)},
		success:    "Input switch requested",
		failure:    "Error switching inputs",
	}
}

func prepareInputMutation(channelID, input string) mutation {
	return mutation{
		channelID:  channelID,
		kind:       models.KindPrepareInput,
		target:     input,
		invalidate: []store.Key{store.ChannelsKey, store.ChannelKey(channelID)},
		success:    "Prepare input requested",
		failure:    "Error preparing input",
	}
}

func insertGraphicMutation(channelID, graphicID string, duration *time.Duration) mutation {
	target := graphicID
	if duration != nil {
		target = fmt.Sprintf("%s (%s)", graphicID, duration)
	}
	return mutation{
		channelID:  channelID,
		kind:       models.KindInsertGraphic,
		target:     target,
		invalidate: []store.Key{store.ChannelsKey, store.ChannelKey(channelID)},
		success:    "Insert graphic requested",
		failure:    "Error inserting graphic",
	}
}

func stopGraphicsMutation(channelID string) mutation {
	return mutation{
		channelID:  channelID,
		kind:       models.KindStopGraphics,
		invalidate: []store.Key{store.ChannelKey(channelID)},
		success:    "Stop graphics requested",
		failure:    "Error stopping graphics",
	}
}

func addConfigItemMutation(channelID string, dataType models.ConfigDataType, item models.ConfigItem) mutation {
	return mutation{
		channelID:  channelID,
		kind:       models.KindAddConfigItem,
		target:     fmt.Sprintf("%s %s", dataType.Singular(), item.URL),
		invalidate: []store.Key{store.ChannelKey(channelID)},
		success:    fmt.Sprintf("Added %s to %s", item.Name, dataType),
		failure:    fmt.Sprintf("Error adding %s to %s", item.Name, dataType),
	}
}

func removeConfigItemMutation(channelID string, dataType models.ConfigDataType, itemID string) mutation {
	return mutation{
		channelID:  channelID,
		kind:       models.KindRemoveConfigItem,
		target:     fmt.Sprintf("%s %s", dataType.Singular(), itemID),
		invalidate: []store.Key{store.ChannelKey(channelID)},
		success:    fmt.Sprintf("Deleted %s", dataType.Singular()),
		failure:    fmt.Sprintf("Error deleting %s", dataType.Singular()),
	}
}
