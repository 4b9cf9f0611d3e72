package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/mlcc/internal/models"
)

// AlertRepository implements models.Repository[*models.AlertRecord].
//
// Records are keyed by (channel_id, id), matching how the service identifies alerts.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new AlertRepository with the given database connection
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = "channel_id, id, state, message, alerted_at, expires_at, created_at, updated_at"

// Create stores record, replacing a stored alert with the same key only when record was raised later.
func (r *AlertRepository) Create(record *models.AlertRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	alert := record.Alert()
	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (channel_id, id) DO UPDATE SET
			state = excluded.state,
			message = excluded.message,
			alerted_at = excluded.alerted_at,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
		WHERE excluded.alerted_at > alerts.alerted_at
	`

	_, err := r.db.Exec(query,
		record.ChannelID(),
		alert.ID,
		alert.State,
		alert.Message,
		alert.AlertedAt,
		unixOrNull(record.ExpiresAt()),
		record.CreatedAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert alert: %w", err)
	}
	return nil
}

// RecordDetail stores every alert of detail and returns how many were written.
func (r *AlertRepository) RecordDetail(detail *models.ChannelDetail) (int, error) {
	if detail == nil {
		return 0, nil
	}
	for i, alert := range detail.Alerts {
		if err := r.Create(models.NewAlertRecord(detail.ChannelID, alert)); err != nil {
			return i, err
		}
	}
	return len(detail.Alerts), nil
}

// Get retrieves an alert by its record id ("channel/alert").
func (r *AlertRepository) Get(id string) (*models.AlertRecord, error) {
	channelID, alertID, ok := strings.Cut(id, "/")
	if !ok {
		return nil, fmt.Errorf("invalid alert id %q", id)
	}

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE channel_id = ? AND id = ?`
	record, err := r.scan(r.db.QueryRow(query, channelID, alertID))
	if err != nil {
		return nil, notFound(err, "alert", id)
	}
	return record, nil
}

// Delete removes an alert by its record id.
func (r *AlertRepository) Delete(id string) error {
	channelID, alertID, ok := strings.Cut(id, "/")
	if !ok {
		return fmt.Errorf("invalid alert id %q", id)
	}

	result, err := r.db.Exec("DELETE FROM alerts WHERE channel_id = ? AND id = ?", channelID, alertID)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return expectRows(result, "alert", id)
}

// List retrieves alerts newest first.
//
// Supported criteria: "channel_id" (string), "state" (string) and "limit" (int).
func (r *AlertRepository) List(criteria map[string]any) ([]*models.AlertRecord, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1 = 1`
	args := []any{}

	if channelID, ok := criteria["channel_id"].(string); ok && channelID != "" {
		query += " AND channel_id = ?"
		args = append(args, channelID)
	}

	if state, ok := criteria["state"].(string); ok && state != "" {
		query += " AND state = ?"
		args = append(args, strings.ToUpper(state))
	}

	query += " ORDER BY alerted_at DESC, id ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var records []*models.AlertRecord
	for rows.Next() {
		record, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Prune deletes alerts that expired at or before now and returns how many were removed.
func (r *AlertRepository) Prune(now time.Time) (int, error) {
	result, err := r.db.Exec("DELETE FROM alerts WHERE expires_at IS NOT NULL AND expires_at <= ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune alerts: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

func (r *AlertRepository) scan(row scanner) (*models.AlertRecord, error) {
	var (
		channelID string
		alert     models.Alert
		expiresAt sql.NullInt64
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&channelID, &alert.ID, &alert.State, &alert.Message, &alert.AlertedAt, &expiresAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record := models.NewAlertRecord(channelID, alert)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if expiresAt.Valid {
		t := time.Unix(expiresAt.Int64, 0).UTC()
		record.SetExpiresAt(&t)
	} else {
		record.SetExpiresAt(nil)
	}

	return record, nil
}

func unixOrNull(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
