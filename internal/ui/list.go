package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mlcc/internal/models"
)

var _ list.Item = channelItem{}

// channelItem wraps [models.Channel] to implement [list.Item].
type channelItem struct {
	channel models.Channel
}

func (i channelItem) FilterValue() string { return i.channel.Name }
func (i channelItem) Title() string       { return i.channel.Name }
func (i channelItem) Description() string {
	desc := string(i.channel.State)
	if in, ok := i.channel.ActiveInput(); ok {
		desc = fmt.Sprintf("%s • %s", desc, in.Name)
	}
	return desc
}

// newChannelPicker builds the channel chooser with the cursor on selectedID.
func newChannelPicker(channels []models.Channel, selectedID string, width, height int) list.Model {
	items := make([]list.Item, len(channels))
	cursor := 0
	for i, ch := range channels {
		items[i] = channelItem{channel: ch}
		if ch.ID == selectedID {
			cursor = i
		}
	}

	picker := list.New(items, list.NewDefaultDelegate(), width, height)
	picker.Title = "Channels"
	picker.SetShowHelp(false)
	picker.Select(cursor)
	return picker
}
