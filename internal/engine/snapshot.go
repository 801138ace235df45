package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/storage"
	"github.com/sandeepkv93/taskcycle/internal/store"
)

// Snapshot is the portable bundle of every collection plus settings. Loading
// it into a fresh store reproduces the exporting store exactly.
type Snapshot struct {
	Daily         []model.Task         `json:"daily"`
	Weekly        []model.Task         `json:"weekly"`
	Monthly       []model.Task         `json:"monthly"`
	Goals         []model.Task         `json:"goals"`
	Completed     []model.Task         `json:"completedTasks"`
	Pending       []model.Task         `json:"pendingTasks"`
	TaskHistory   store.TaskHistory    `json:"taskHistory"`
	History       []model.HistoryEntry `json:"recentHistory"`
	MonthlyGoals  []model.MonthlyGoal  `json:"monthlyGoals"`
	ArchivedGoals []model.MonthlyGoal  `json:"archivedGoals"`
	Settings      SnapshotSettings     `json:"settings"`
	ExportDate    time.Time            `json:"exportDate"`
}

type SnapshotSettings struct {
	DailyResetMode store.ResetMode `json:"dailyResetMode"`
}

// ExportSnapshot captures the full current state.
func (e *Engine) ExportSnapshot() Snapshot {
	clone := e.store.Clone()
	return Snapshot{
		Daily:         emptyIfNil(clone.Daily),
		Weekly:        emptyIfNil(clone.Weekly),
		Monthly:       emptyIfNil(clone.Monthly),
		Goals:         emptyIfNil(clone.GoalTasks),
		Completed:     emptyIfNil(clone.Completed),
		Pending:       emptyIfNil(clone.Pending),
		TaskHistory:   clone.TaskHistory,
		History:       e.recorder.Entries(),
		MonthlyGoals:  emptyGoalsIfNil(clone.ActiveGoals),
		ArchivedGoals: emptyGoalsIfNil(clone.ArchivedGoals),
		Settings:      SnapshotSettings{DailyResetMode: clone.DailyResetMode},
		ExportDate:    e.now(),
	}
}

// ImportSnapshot replaces the full state with the snapshot's and persists
// everything. A failed persist rolls back to the pre-import state.
func (e *Engine) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	mode := snap.Settings.DailyResetMode
	if mode != "" && !mode.IsValid() {
		return model.NewValidationError("settings.dailyResetMode", fmt.Sprintf("unknown reset mode %q", mode))
	}

	cp := e.checkpoint()
	e.store.Daily = snap.Daily
	e.store.Weekly = snap.Weekly
	e.store.Monthly = snap.Monthly
	e.store.GoalTasks = snap.Goals
	e.store.Completed = snap.Completed
	e.store.Pending = snap.Pending
	e.store.TaskHistory = snap.TaskHistory
	e.store.ActiveGoals = snap.MonthlyGoals
	e.store.ArchivedGoals = snap.ArchivedGoals
	e.recorder.Replace(snap.History)
	if mode != "" {
		e.store.DailyResetMode = mode
	}

	return e.commit(ctx, cp,
		storage.KeyDailyTasks, storage.KeyWeeklyTasks, storage.KeyMonthlyTasks, storage.KeyGoalTasks,
		storage.KeyCompleted, storage.KeyPending, storage.KeyTaskHistory, storage.KeyRecentHistory,
		storage.KeyMonthlyGoals, storage.KeyArchivedGoals, storage.KeyResetMode)
}

// WriteSnapshotFile exports the current state as indented JSON to path.
func (e *Engine) WriteSnapshotFile(path string) error {
	raw, err := json.MarshalIndent(e.ExportSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("engine: encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("engine: write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshotFile loads a snapshot file and imports it.
func (e *Engine) ReadSnapshotFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("engine: read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("engine: decode snapshot: %w", err)
	}
	return e.ImportSnapshot(ctx, snap)
}
