package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/shared"
)

// ActionRepository implements models.Repository[*models.Action] for the operator action log.
//
// Actions are append-only; there is no Update.
type ActionRepository struct {
	db *sql.DB
}

// NewActionRepository creates a new ActionRepository with the given database connection
func NewActionRepository(db *sql.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

const actionColumns = "id, sequence, channel_id, kind, target, succeeded, error_message, created_at"

// Create inserts a new [models.Action] with generated ID and sequence
func (r *ActionRepository) Create(action *models.Action) error {
	if err := action.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "actions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	var errorMessage sql.NullString
	if msg := action.ErrorMessage(); msg != "" {
		errorMessage = sql.NullString{String: msg, Valid: true}
	}

	query := `INSERT INTO actions (` + actionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		id,
		sequence,
		action.ChannelID(),
		string(action.Kind()),
		action.Target(),
		action.Succeeded(),
		errorMessage,
		action.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}

	action.SetID(id)
	action.SetSequence(sequence)
	return nil
}

// Get retrieves an action by ID
func (r *ActionRepository) Get(id string) (*models.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE id = ?`
	action, err := r.scan(r.db.QueryRow(query, id))
	if err != nil {
		return nil, notFound(err, "action", id)
	}
	return action, nil
}

// Delete removes an action by ID
func (r *ActionRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM actions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}
	return expectRows(result, "action", id)
}

// List retrieves actions, newest first.
//
// Supported criteria: "channel_id" (string), "kind" (string), "failed" (bool) and "limit" (int).
func (r *ActionRepository) List(criteria map[string]any) ([]*models.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE 1 = 1`
	args := []any{}

	if channelID, ok := criteria["channel_id"].(string); ok && channelID != "" {
		query += " AND channel_id = ?"
		args = append(args, channelID)
	}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	if failed, ok := criteria["failed"].(bool); ok && failed {
		query += " AND succeeded = 0"
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []*models.Action
	for rows.Next() {
		action, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return actions, nil
}

func (r *ActionRepository) scan(row scanner) (*models.Action, error) {
	var (
		id           string
		sequence     int
		channelID    string
		kind         string
		target       string
		succeeded    bool
		errorMessage sql.NullString
		createdAt    time.Time
	)

	err := row.Scan(&id, &sequence, &channelID, &kind, &target, &succeeded, &errorMessage, &createdAt)
	if err != nil {
		return nil, err
	}

	action := models.NewAction(channelID, models.ActionKind(kind), target, nil)
	action.SetID(id)
	action.SetSequence(sequence)
	action.SetCreatedAt(createdAt)
	action.SetOutcome(succeeded, errorMessage.String)

	return action, nil
}
