package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidHistoryAction = errors.New("model: invalid history action")

// HistoryAction names a lifecycle transition recorded in the audit log.
type HistoryAction string

const (
	ActionAdded          HistoryAction = "added"
	ActionCompleted      HistoryAction = "completed"
	ActionDeleted        HistoryAction = "deleted"
	ActionCancelled      HistoryAction = "cancelled"
	ActionMovedToPending HistoryAction = "moved_to_pending"
)

func (a HistoryAction) IsValid() bool {
	switch a {
	case ActionAdded, ActionCompleted, ActionDeleted, ActionCancelled, ActionMovedToPending:
		return true
	default:
		return false
	}
}

// HistorySnapshot is the task summary frozen into a history entry at the
// moment of the transition.
type HistorySnapshot struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        TaskType `json:"type"`
	Description string   `json:"description,omitempty"`
}

// SnapshotOf freezes the fields of a task that the audit log keeps.
func SnapshotOf(t Task) HistorySnapshot {
	return HistorySnapshot{
		ID:          t.ID,
		Title:       t.Title,
		Type:        t.Type,
		Description: t.Description,
	}
}

// HistoryEntry is one immutable audit record of a lifecycle transition.
type HistoryEntry struct {
	ID        string          `json:"id"`
	Action    HistoryAction   `json:"action"`
	Task      HistorySnapshot `json:"task"`
	Timestamp time.Time       `json:"timestamp"`
	Details   string          `json:"details,omitempty"`
}

func (e HistoryEntry) Validate() error {
	if e.ID == "" {
		return errors.New("model: history entry id is required")
	}
	if !e.Action.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidHistoryAction, e.Action)
	}
	if e.Timestamp.IsZero() {
		return errors.New("model: history entry timestamp is required")
	}
	return nil
}
