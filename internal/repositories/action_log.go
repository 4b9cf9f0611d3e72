package repositories

import (
	"fmt"

	"github.com/desertthunder/mlcc/internal/models"
)

// ActionLogAdapter implements tasks.ActionRecorder using ActionRepository.
type ActionLogAdapter struct {
	repo *ActionRepository
}

// NewActionLogAdapter creates a new ActionLogAdapter with the given repository
func NewActionLogAdapter(repo *ActionRepository) *ActionLogAdapter {
	return &ActionLogAdapter{repo: repo}
}

// RecordAction appends action to the log.
func (a *ActionLogAdapter) RecordAction(action *models.Action) error {
	if err := a.repo.Create(action); err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}
