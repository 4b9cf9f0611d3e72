// package models defines the data model for the channel control centre
package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/mlcc/internal/shared"
)

// Model defines the base interface for all persistent models.
// Implementations are [Action] and [AlertRecord].
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// ActionKind names the operator action recorded in the action log.
type ActionKind string

const (
	KindSetStatus        ActionKind = "status"
	KindSwitchInput      ActionKind = "switch_input"
	KindPrepareInput     ActionKind = "prepare_input"
	KindInsertGraphic    ActionKind = "insert_graphic"
	KindStopGraphics     ActionKind = "stop_graphics"
	KindAddConfigItem    ActionKind = "add_config_item"
	KindRemoveConfigItem ActionKind = "remove_config_item"
)

// Action is one mutation issued by the operator and its outcome.
type Action struct {
	id           string
	sequence     int
	channelID    string
	kind         ActionKind
	target       string
	succeeded    bool
	errorMessage string
	createdAt    time.Time
}

// NewAction creates an action record; a non-nil err marks it as failed.
func NewAction(channelID string, kind ActionKind, target string, err error) *Action {
	a := &Action{
		channelID: channelID,
		kind:      kind,
		target:    target,
		succeeded: err == nil,
		createdAt: time.Now().UTC(),
	}
	if err != nil {
		a.errorMessage = err.Error()
	}
	return a
}

func (a *Action) ID() string { return a.id }
func (a *Action) SetID(id string) { a.id = id }
func (a *Action) Sequence() int { return a.sequence }
func (a *Action) SetSequence(n int) { a.sequence = n }
func (a *Action) ChannelID() string { return a.channelID }
func (a *Action) Kind() ActionKind { return a.kind }
func (a *Action) Target() string { return a.target }
func (a *Action) Succeeded() bool { return a.succeeded }
func (a *Action) ErrorMessage() string { return a.errorMessage }
func (a *Action) CreatedAt() time.Time { return a.createdAt }
func (a *Action) UpdatedAt() time.Time { return a.createdAt }
func (a *Action) SetCreatedAt(t time.Time) { a.createdAt = t }

// SetOutcome overwrites the recorded outcome.
func (a *Action) SetOutcome(succeeded bool, message string) {
	a.succeeded = succeeded
	a.errorMessage = message
}

func (a *Action) Validate() error {
	if a.channelID == "" {
		return fmt.Errorf("%w: action requires a channel id", shared.ErrInvalidInput)
	}
	if a.kind == "" {
		return fmt.Errorf("%w: action requires a kind", shared.ErrInvalidInput)
	}
	return nil
}

// DefaultAlertExpiry is how long a cleared alert is kept.
const DefaultAlertExpiry = 12 * time.Hour

// AlertRecord is an [Alert] stored in the local alert history.
type AlertRecord struct {
	channelID string
	alert     Alert
	expiresAt *time.Time
	createdAt time.Time
	updatedAt time.Time
}

// NewAlertRecord wraps alert for channelID.
//
// Cleared alerts expire [DefaultAlertExpiry] after they were raised.
func NewAlertRecord(channelID string, alert Alert) *AlertRecord {
	now := time.Now().UTC()
	r := &AlertRecord{channelID: channelID, alert: alert, createdAt: now, updatedAt: now}
	if alert.Cleared() {
		exp := alert.Time().Add(DefaultAlertExpiry)
		r.expiresAt = &exp
	}
	return r
}

// AlertRecordID joins the channel and alert identifiers into one key.
func AlertRecordID(channelID, alertID string) string {
	return channelID + "/" + alertID
}

func (r *AlertRecord) ID() string { return AlertRecordID(r.channelID, r.alert.ID) }
func (r *AlertRecord) ChannelID() string { return r.channelID }
func (r *AlertRecord) Alert() Alert { return r.alert }
func (r *AlertRecord) ExpiresAt() *time.Time { return r.expiresAt }
func (r *AlertRecord) SetExpiresAt(t *time.Time) { r.expiresAt = t }
func (r *AlertRecord) CreatedAt() time.Time { return r.createdAt }
func (r *AlertRecord) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *AlertRecord) UpdatedAt() time.Time { return r.updatedAt }
func (r *AlertRecord) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// Expired reports whether the record should be pruned at now.
func (r *AlertRecord) Expired(now time.Time) bool {
	return r.expiresAt != nil && !now.Before(*r.expiresAt)
}

func (r *AlertRecord) Validate() error {
	if r.channelID == "" {
		return fmt.Errorf("%w: alert requires a channel id", shared.ErrInvalidInput)
	}
	if r.alert.ID == "" {
		return fmt.Errorf("%w: alert requires an id", shared.ErrInvalidInput)
	}
	if r.alert.AlertedAt <= 0 {
		return fmt.Errorf("%w: alert requires a timestamp", shared.ErrInvalidInput)
	}
	return nil
}
