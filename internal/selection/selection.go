// Package selection keeps the operator's selected channel, output, graphic and
// configuration tab consistent with the latest polled snapshots.
//
// [Reconcile] is pure: it runs after every channel list or channel detail update and
// applying it twice to the same inputs yields the same [State].
package selection

import (
	"github.com/desertthunder/mlcc/internal/models"
)

// State is the client-local selection. Empty ids mean nothing is selected.
type State struct {
	ChannelID string
	OutputID  string
	GraphicID string
	DataType  models.ConfigDataType
}

// Reconcile returns state adjusted to channels and detail.
//
// A selected channel missing from channels falls back to the first remaining channel,
// or to none when the list is empty. Output and graphic selections are only resolved
// against a detail belonging to the selected channel; a detail for another channel is
// a stale snapshot and leaves them untouched until the matching detail arrives.
func Reconcile(state State, channels []models.Channel, detail *models.ChannelDetail) State {
	next := state
	next.DataType = normalizeDataType(state.DataType)
	next.ChannelID = reconcileChannel(state.ChannelID, channels)

	if next.ChannelID != state.ChannelID {
		next.OutputID = ""
		next.GraphicID = ""
	}

	if next.ChannelID == "" {
		next.OutputID = ""
		next.GraphicID = ""
		return next
	}

	if detail == nil || detail.ChannelID != next.ChannelID {
		return next
	}

	next.OutputID = reconcileItem(next.OutputID, detail.Outputs, func(o models.Output) string { return o.ID })
	next.GraphicID = reconcileItem(next.GraphicID, detail.Graphics, func(g models.Graphic) string { return g.ID })
	return next
}

func reconcileChannel(selected string, channels []models.Channel) string {
	if len(channels) == 0 {
		return ""
	}
	for _, ch := range channels {
		if ch.ID == selected {
			return selected
		}
	}
	return channels[0].ID
}

// reconcileItem keeps selected if present, else picks the first item, else none.
func reconcileItem[T any](selected string, items []T, id func(T) string) string {
	if len(items) == 0 {
		return ""
	}
	for _, item := range items {
		if id(item) == selected {
			return selected
		}
	}
	return id(items[0])
}

func normalizeDataType(t models.ConfigDataType) models.ConfigDataType {
	if t == models.DataTypeGraphics {
		return t
	}
	return models.DataTypeOutputs
}

// SelectChannel selects channelID and clears selections that belonged to the previous channel.
func SelectChannel(state State, channelID string) State {
	if state.ChannelID == channelID {
		return state
	}
	state.ChannelID = channelID
	state.OutputID = ""
	state.GraphicID = ""
	return state
}

func SelectOutput(state State, outputID string) State {
	state.OutputID = outputID
	return state
}

func SelectGraphic(state State, graphicID string) State {
	state.GraphicID = graphicID
	return state
}

func SelectDataType(state State, dataType models.ConfigDataType) State {
	state.DataType = normalizeDataType(dataType)
	return state
}

// NextChannel moves the channel selection forward, wrapping around.
func NextChannel(state State, channels []models.Channel) State {
	return stepChannel(state, channels, 1)
}

// PrevChannel moves the channel selection backward, wrapping around.
func PrevChannel(state State, channels []models.Channel) State {
	return stepChannel(state, channels, -1)
}

func stepChannel(state State, channels []models.Channel, delta int) State {
	if len(channels) == 0 {
		return SelectChannel(state, "")
	}

	idx := channelIndex(state.ChannelID, channels)
	if idx < 0 {
		return SelectChannel(state, channels[0].ID)
	}

	n := len(channels)
	return SelectChannel(state, channels[((idx+delta)%n+n)%n].ID)
}

func channelIndex(id string, channels []models.Channel) int {
	for i, ch := range channels {
		if ch.ID == id {
			return i
		}
	}
	return -1
}

// SelectedChannel returns the selected channel from channels.
func SelectedChannel(state State, channels []models.Channel) (models.Channel, bool) {
	idx := channelIndex(state.ChannelID, channels)
	if idx < 0 {
		return models.Channel{}, false
	}
	return channels[idx], true
}

// SelectedOutput returns the selected output from detail.
func SelectedOutput(state State, detail *models.ChannelDetail) (models.Output, bool) {
	if detail == nil || detail.ChannelID != state.ChannelID {
		return models.Output{}, false
	}
	return detail.Output(state.OutputID)
}

// SelectedGraphic returns the selected graphic from detail.
func SelectedGraphic(state State, detail *models.ChannelDetail) (models.Graphic, bool) {
	if detail == nil || detail.ChannelID != state.ChannelID {
		return models.Graphic{}, false
	}
	return detail.Graphic(state.GraphicID)
}
