package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/mlcc/internal/shared"
)

type channelList struct {
	Channels *[]Channel `json:"Channels"`
}

type discoverResponse struct {
	Outputs *[]DiscoveredOutput `json:"Outputs"`
}

// ParseChannelList decodes and validates the body of the channel list query.
func ParseChannelList(data []byte) ([]Channel, error) {
	var body channelList
	if err := decode(data, &body); err != nil {
		return nil, err
	}
	if body.Channels == nil {
		return nil, fmt.Errorf("%w: missing Channels", shared.ErrMalformedResponse)
	}

	channels := *body.Channels
	if err := ValidateChannels(channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// ParseChannelDetail decodes and validates the body of the channel detail query.
func ParseChannelDetail(data []byte) (*ChannelDetail, error) {
	var detail ChannelDetail
	if err := decode(data, &detail); err != nil {
		return nil, err
	}
	if err := detail.Validate(); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ParseDiscoveredOutputs decodes the body of the output discovery query.
func ParseDiscoveredOutputs(data []byte) ([]DiscoveredOutput, error) {
	var body discoverResponse
	if err := decode(data, &body); err != nil {
		return nil, err
	}
	if body.Outputs == nil {
		return nil, fmt.Errorf("%w: missing Outputs", shared.ErrMalformedResponse)
	}
	for i, o := range *body.Outputs {
		if o.URL == "" {
			return nil, fmt.Errorf("%w: discovered output %d has no Url", shared.ErrMalformedResponse, i)
		}
	}
	return *body.Outputs, nil
}

// ValidateChannels checks ids are present and unique.
func ValidateChannels(channels []Channel) error {
	seen := make(map[string]struct{}, len(channels))
	for i, ch := range channels {
		if ch.ID == "" {
			return fmt.Errorf("%w: channel %d has no Id", shared.ErrMalformedResponse, i)
		}
		if _, ok := seen[ch.ID]; ok {
			return fmt.Errorf("%w: duplicate channel %s", shared.ErrMalformedResponse, ch.ID)
		}
		seen[ch.ID] = struct{}{}
		if err := uniqueIDs("input", ch.InputAttachments, func(in InputAttachment) string { return in.Name }); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the channel id is present and every configured item has a unique id.
func (d *ChannelDetail) Validate() error {
	if d.ChannelID == "" {
		return fmt.Errorf("%w: missing ChannelId", shared.ErrMalformedResponse)
	}
	if err := uniqueIDs("output", d.Outputs, func(o Output) string { return o.ID }); err != nil {
		return err
	}
	if err := uniqueIDs("graphic", d.Graphics, func(g Graphic) string { return g.ID }); err != nil {
		return err
	}
	return uniqueIDs("alert", d.Alerts, func(a Alert) string { return a.ID })
}

func uniqueIDs[T any](kind string, items []T, id func(T) string) error {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		key := id(item)
		if key == "" {
			return fmt.Errorf("%w: %s %d has no identifier", shared.ErrMalformedResponse, kind, i)
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate %s %s", shared.ErrMalformedResponse, kind, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func decode(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty body", shared.ErrMalformedResponse)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	return nil
}
