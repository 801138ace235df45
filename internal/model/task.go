package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTaskType = errors.New("model: invalid task type")
	ErrInvalidRange    = errors.New("model: end date before start date")
	ErrInvalidTarget   = errors.New("model: goal target must be positive")
)

// TaskType names the bucket that owns a task. It is immutable after creation.
type TaskType string

const (
	TypeDaily   TaskType = "daily"
	TypeWeekly  TaskType = "weekly"
	TypeMonthly TaskType = "monthly"
	TypeGoal    TaskType = "goal"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeGoal:
		return true
	default:
		return false
	}
}

// TaskTypes lists the bucket types in render order.
func TaskTypes() []TaskType {
	return []TaskType{TypeDaily, TypeWeekly, TypeMonthly, TypeGoal}
}

// StatusPending marks a task or goal that passed its end date without
// completion and was archived.
const StatusPending = "pending"

// Task is a single tracked item. Goal tasks additionally carry a numeric
// target/current pair and derive completion from it.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        TaskType `json:"type"`
	StartDate   Date     `json:"startDate"`
	EndDate     Date     `json:"endDate"`
	Completed   bool     `json:"completed"`

	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CompletedOverdue bool       `json:"completedOverdue,omitempty"`

	// Goal-only fields.
	Target         int  `json:"target,omitempty"`
	Current        int  `json:"current,omitempty"`
	IsQuantifiable bool `json:"isQuantifiable,omitempty"`

	// Set on snapshots that left their bucket.
	Status         string     `json:"status,omitempty"`
	PendingReason  string     `json:"pendingReason,omitempty"`
	OriginalType   TaskType   `json:"originalType,omitempty"`
	CompletionType string     `json:"completionType,omitempty"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	Reason         string     `json:"reason,omitempty"`

	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskType, t.Type)
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: start %s, end %s", ErrInvalidRange, t.StartDate, t.EndDate)
	}
	if t.IsQuantifiable {
		if t.Target <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidTarget, t.Target)
		}
		if t.Current < 0 || t.Current > t.Target {
			return fmt.Errorf("model: goal current %d outside [0, %d]", t.Current, t.Target)
		}
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	return nil
}

// IsOverdue reports whether the task's inclusive end date has fully passed
// without completion. Derived on every read, never stored.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	return now.After(t.EndDate.Next().Time)
}

// ClampProgress sets the quantifiable progress value, clamped to [0, target],
// and derives the completed flag. It reports whether completion flipped on.
func (t *Task) ClampProgress(value int, now time.Time) bool {
	if !t.IsQuantifiable {
		return false
	}
	if value < 0 {
		value = 0
	}
	if value > t.Target {
		value = t.Target
	}
	wasCompleted := t.Completed
	t.Current = value
	t.Completed = t.Current >= t.Target
	t.LastUpdated = now
	if t.Completed && !wasCompleted {
		at := now
		t.CompletedAt = &at
		return true
	}
	if !t.Completed {
		t.CompletedAt = nil
	}
	return false
}
