package models

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/mlcc/internal/shared"
)

// ChannelState is the lifecycle state reported by the channel service.
type ChannelState string

const (
	StateIdle         ChannelState = "IDLE"
	StateStarting     ChannelState = "STARTING"
	StateRunning      ChannelState = "RUNNING"
	StateStopping     ChannelState = "STOPPING"
	StateUpdating     ChannelState = "UPDATING"
	StateUpdateFailed ChannelState = "UPDATE_FAILED"
	StateCreating     ChannelState = "CREATING"
	StateCreateFailed ChannelState = "CREATE_FAILED"
	StateDeleting     ChannelState = "DELETING"
	StateDeleted      ChannelState = "DELETED"
	StateRecovering   ChannelState = "RECOVERING"
)

var (
	startableStates = []ChannelState{StateIdle, StateUpdateFailed}
	stoppableStates = []ChannelState{StateRunning}
	knownStates     = []ChannelState{
		StateIdle, StateStarting, StateRunning, StateStopping, StateUpdating, StateUpdateFailed,
		StateCreating, StateCreateFailed, StateDeleting, StateDeleted, StateRecovering,
	}
)

// Known reports whether s is one of the states the service documents.
func (s ChannelState) Known() bool {
	return slices.Contains(knownStates, s)
}

// ConfigDataType selects which configured collection of a channel is addressed.
//
// The value is used verbatim as a path segment.
type ConfigDataType string

const (
	DataTypeOutputs  ConfigDataType = "outputs"
	DataTypeGraphics ConfigDataType = "graphics"
)

// ParseConfigDataType parses "outputs" or "graphics", case-insensitively.
func ParseConfigDataType(s string) (ConfigDataType, error) {
	switch ConfigDataType(strings.ToLower(strings.TrimSpace(s))) {
	case DataTypeOutputs:
		return DataTypeOutputs, nil
	case DataTypeGraphics:
		return DataTypeGraphics, nil
	}
	return "", fmt.Errorf("%w: data type must be outputs or graphics, got %q", shared.ErrInvalidArgument, s)
}

// Singular returns "output" or "graphic".
func (t ConfigDataType) Singular() string {
	return shared.Singular(string(t))
}

// StatusAction is the requested channel status transition.
type StatusAction string

const (
	ActionStart StatusAction = "start"
	ActionStop  StatusAction = "stop"
)

// ParseStatusAction parses "start" or "stop", case-insensitively.
func ParseStatusAction(s string) (StatusAction, error) {
	switch StatusAction(strings.ToLower(strings.TrimSpace(s))) {
	case ActionStart:
		return ActionStart, nil
	case ActionStop:
		return ActionStop, nil
	}
	return "", fmt.Errorf("%w: status must be start or stop, got %q", shared.ErrInvalidArgument, s)
}

// InputAttachment is a named ingest source bound to a channel.
type InputAttachment struct {
	ID     string `json:"Id"`
	Name   string `json:"Name"`
	Active bool   `json:"Active"`
}

// Output is a configured playback destination of a channel.
type Output struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
	URL  string `json:"Url"`
}

// Graphic is a configured motion graphic overlay of a channel.
type Graphic struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
	URL  string `json:"Url"`
}

// Alert is a timestamped diagnostic event raised for a channel.
type Alert struct {
	ID        string `json:"Id"`
	AlertedAt int64  `json:"AlertedAt"`
	State     string `json:"State"`
	Message   string `json:"Message"`
}

// Time converts AlertedAt (epoch seconds) to UTC.
func (a Alert) Time() time.Time {
	return time.Unix(a.AlertedAt, 0).UTC()
}

// Cleared reports whether the alert is no longer active.
func (a Alert) Cleared() bool {
	return strings.EqualFold(a.State, "CLEARED")
}

// Channel is an entry of the channel list.
//
// The list endpoint only fills ID, Name, State and InputAttachments; the remaining
// fields are merged in from [ChannelDetail] when both are known.
type Channel struct {
	ID               string            `json:"Id"`
	Name             string            `json:"Name"`
	State            ChannelState      `json:"State"`
	InputAttachments []InputAttachment `json:"InputAttachments"`
	Outputs          []Output          `json:"Outputs,omitempty"`
	Graphics         []Graphic         `json:"Graphics,omitempty"`
	GraphicsEnabled  bool              `json:"GraphicsEnabled,omitempty"`
	Alerts           []Alert           `json:"Alerts,omitempty"`
}

// ActiveInput returns the active input attachment, if any.
func (c Channel) ActiveInput() (InputAttachment, bool) {
	for _, in := range c.InputAttachments {
		if in.Active {
			return in, true
		}
	}
	return InputAttachment{}, false
}

// Input finds an input attachment by name.
func (c Channel) Input(name string) (InputAttachment, bool) {
	for _, in := range c.InputAttachments {
		if in.Name == name {
			return in, true
		}
	}
	return InputAttachment{}, false
}

// WithDetail returns a copy of c with the configured data of d merged in.
func (c Channel) WithDetail(d *ChannelDetail) Channel {
	if d == nil || d.ChannelID != c.ID {
		return c
	}
	c.Outputs = d.Outputs
	c.Graphics = d.Graphics
	c.Alerts = d.Alerts
	c.GraphicsEnabled = d.GraphicsEnabled
	if d.State != "" {
		c.State = d.State
	}
	if len(d.InputAttachments) > 0 {
		c.InputAttachments = d.InputAttachments
	}
	return c
}

// ChannelDetail is the body of the channel detail query.
//
// State and InputAttachments are optional: the service usually leaves them out and
// the state is taken from the channel list instead.
type ChannelDetail struct {
	ChannelID        string            `json:"ChannelId"`
	State            ChannelState      `json:"State,omitempty"`
	InputAttachments []InputAttachment `json:"InputAttachments,omitempty"`
	Outputs          []Output          `json:"Outputs"`
	Graphics         []Graphic         `json:"Graphics"`
	Alerts           []Alert           `json:"Alerts"`
	GraphicsEnabled  bool              `json:"GraphicsEnabled"`
}

// Output finds a configured output by id.
func (d *ChannelDetail) Output(id string) (Output, bool) {
	if d == nil {
		return Output{}, false
	}
	for _, o := range d.Outputs {
		if o.ID == id {
			return o, true
		}
	}
	return Output{}, false
}

// Graphic finds a configured graphic by id.
func (d *ChannelDetail) Graphic(id string) (Graphic, bool) {
	if d == nil {
		return Graphic{}, false
	}
	for _, g := range d.Graphics {
		if g.ID == id {
			return g, true
		}
	}
	return Graphic{}, false
}

// HasURL reports whether an item of the given type is already configured with rawURL.
func (d *ChannelDetail) HasURL(dataType ConfigDataType, rawURL string) bool {
	if d == nil {
		return false
	}
	switch dataType {
	case DataTypeGraphics:
		return slices.ContainsFunc(d.Graphics, func(g Graphic) bool { return g.URL == rawURL })
	default:
		return slices.ContainsFunc(d.Outputs, func(o Output) bool { return o.URL == rawURL })
	}
}

// OutputMetadata carries provider specific data of a discovered output.
type OutputMetadata struct {
	ChannelID string `json:"ChannelId,omitempty"`
}

// DiscoveredOutput is a candidate output reported by the provider but not necessarily configured.
type DiscoveredOutput struct {
	Type           string         `json:"Type"`
	Name           string         `json:"Name"`
	URL            string         `json:"Url"`
	OutputMetadata OutputMetadata `json:"OutputMetadata"`
}

// ConfigItem is the request body used to add an output or a graphic.
type ConfigItem struct {
	Name string `json:"Name"`
	URL  string `json:"Url"`
}

// Validate requires a name and an absolute URL with scheme and host.
func (i ConfigItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(i.URL) == "" {
		return fmt.Errorf("%w: url is required", shared.ErrInvalidInput)
	}
	u, err := url.Parse(i.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: url must include a scheme and host, got %q", shared.ErrInvalidInput, i.URL)
	}
	return nil
}

// ConfigItemCreated is the stored item echoed back after an add.
type ConfigItemCreated struct {
	ID        string `json:"Id"`
	ChannelID string `json:"ChannelId"`
	Name      string `json:"Name"`
	URL       string `json:"Url"`
}

// CanStart reports whether a start request is allowed from state.
func CanStart(state ChannelState) bool {
	return slices.Contains(startableStates, state)
}

// CanStop reports whether a stop request is allowed from state.
func CanStop(state ChannelState) bool {
	return slices.Contains(stoppableStates, state)
}

// CanChangeStatus applies [CanStart] or [CanStop] depending on action.
func CanChangeStatus(state ChannelState, action StatusAction) bool {
	switch action {
	case ActionStart:
		return CanStart(state)
	case ActionStop:
		return CanStop(state)
	}
	return false
}

// CanSwitchInput reports whether input may be switched to or prepared on ch.
func CanSwitchInput(ch Channel, input string) bool {
	if ch.State != StateRunning {
		return false
	}
	in, ok := ch.Input(input)
	return ok && !in.Active
}

// CanInsertGraphic reports whether graphics can be inserted into ch.
func CanInsertGraphic(ch Channel) bool {
	return ch.State == StateRunning
}
