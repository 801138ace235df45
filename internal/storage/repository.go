package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Persisted keys. One key per logical collection or setting; every value is a
// string-serialized JSON document except the reset mode and the three reset
// boundary timestamps, which are plain strings.
const (
	KeyDailyTasks       = "tasks-daily"
	KeyWeeklyTasks      = "tasks-weekly"
	KeyMonthlyTasks     = "tasks-monthly"
	KeyGoalTasks        = "tasks-goals"
	KeyCompleted        = "tasks-completed"
	KeyPending          = "tasks-pending"
	KeyResetMode        = "daily-reset-mode"
	KeyLastResetDaily   = "last-reset-daily"
	KeyLastResetWeekly  = "last-reset-weekly"
	KeyLastResetMonthly = "last-reset-monthly"
	KeyTaskHistory      = "task-history"
	KeyRecentHistory    = "recent-history"
	KeyMonthlyGoals     = "monthly-goals"
	KeyArchivedGoals    = "archived-goals"
)

// Repository is the persistence surface the engine writes through: key-value
// get/set of serialized documents.
type Repository interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
