// Package engine implements the task lifecycle state machine, the
// boundary-triggered reset scheduler and the overdue sweep. Every public
// mutation persists synchronously and rolls the in-memory state back when the
// persistence layer fails, so a failure never leaves torn state behind.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcycle/internal/history"
	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/storage"
	"github.com/sandeepkv93/taskcycle/internal/store"
)

type Engine struct {
	store    *store.Store
	repo     storage.Repository
	recorder *history.Recorder
	log      *zap.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Engine)

// WithClock fixes the engine's notion of now. Tests use it to cross calendar
// boundaries deterministically.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithHistoryCap bounds the audit log.
func WithHistoryCap(capacity int) Option {
	return func(e *Engine) { e.recorder = history.NewRecorder(capacity) }
}

func New(repo storage.Repository, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		store:    store.New(),
		repo:     repo,
		recorder: history.NewRecorder(history.DefaultCap),
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the live collections for read-only rendering.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Load pulls every persisted collection into memory. A missing key loads as
// empty; an unparseable value is treated the same way and logged. Corruption
// is always recovered locally, so there is no error to return.
func (e *Engine) Load(ctx context.Context) {
	loadDoc(e, ctx, storage.KeyDailyTasks, &e.store.Daily)
	loadDoc(e, ctx, storage.KeyWeeklyTasks, &e.store.Weekly)
	loadDoc(e, ctx, storage.KeyMonthlyTasks, &e.store.Monthly)
	loadDoc(e, ctx, storage.KeyGoalTasks, &e.store.GoalTasks)
	loadDoc(e, ctx, storage.KeyCompleted, &e.store.Completed)
	loadDoc(e, ctx, storage.KeyPending, &e.store.Pending)
	loadDoc(e, ctx, storage.KeyTaskHistory, &e.store.TaskHistory)
	loadDoc(e, ctx, storage.KeyMonthlyGoals, &e.store.ActiveGoals)
	loadDoc(e, ctx, storage.KeyArchivedGoals, &e.store.ArchivedGoals)

	var entries []model.HistoryEntry
	loadDoc(e, ctx, storage.KeyRecentHistory, &entries)
	e.recorder.Replace(entries)

	if raw, err := e.repo.Load(ctx, storage.KeyResetMode); err == nil {
		mode := store.ResetMode(strings.TrimSpace(raw))
		if mode.IsValid() {
			e.store.DailyResetMode = mode
		} else {
			e.log.Warn("ignoring invalid reset mode", zap.String("value", raw))
		}
	}
	e.store.LastResetDaily = e.loadBoundary(ctx, storage.KeyLastResetDaily)
	e.store.LastResetWeekly = e.loadBoundary(ctx, storage.KeyLastResetWeekly)
	e.store.LastResetMonthly = e.loadBoundary(ctx, storage.KeyLastResetMonthly)
}

// loadDoc decodes one persisted document into dst. The decode goes through a
// scratch value so a corrupt document cannot leave a half-filled collection
// behind; dst is only assigned when the whole value parses.
func loadDoc[T any](e *Engine, ctx context.Context, key string, dst *T) {
	raw, err := e.repo.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.log.Warn("load failed, using empty collection", zap.String("key", key), zap.Error(err))
		}
		return
	}
	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		e.log.Warn("corrupt persisted value, using empty collection", zap.String("key", key), zap.Error(err))
		return
	}
	*dst = decoded
}

// loadBoundary parses a persisted reset boundary. A malformed timestamp is
// treated as absent so the corresponding reset runs.
func (e *Engine) loadBoundary(ctx context.Context, key string) time.Time {
	raw, err := e.repo.Load(ctx, key)
	if err != nil {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		e.log.Warn("malformed reset boundary, treating as absent", zap.String("key", key), zap.Error(err))
		return time.Time{}
	}
	return parsed
}

type checkpoint struct {
	st   *store.Store
	hist []model.HistoryEntry
}

func (e *Engine) checkpoint() checkpoint {
	return checkpoint{st: e.store.Clone(), hist: e.recorder.Entries()}
}

func (e *Engine) rollback(cp checkpoint) {
	e.store.Restore(cp.st)
	e.recorder.Replace(cp.hist)
}

// commit persists the named keys and rolls back to the checkpoint when any
// save fails.
func (e *Engine) commit(ctx context.Context, cp checkpoint, keys ...string) error {
	for _, key := range keys {
		value, err := e.encodeKey(key)
		if err == nil {
			err = e.repo.Save(ctx, key, value)
		}
		if err != nil {
			e.rollback(cp)
			return fmt.Errorf("engine: persist %s: %w", key, err)
		}
	}
	return nil
}

func (e *Engine) encodeKey(key string) (string, error) {
	var payload any
	switch key {
	case storage.KeyDailyTasks:
		payload = emptyIfNil(e.store.Daily)
	case storage.KeyWeeklyTasks:
		payload = emptyIfNil(e.store.Weekly)
	case storage.KeyMonthlyTasks:
		payload = emptyIfNil(e.store.Monthly)
	case storage.KeyGoalTasks:
		payload = emptyIfNil(e.store.GoalTasks)
	case storage.KeyCompleted:
		payload = emptyIfNil(e.store.Completed)
	case storage.KeyPending:
		payload = emptyIfNil(e.store.Pending)
	case storage.KeyTaskHistory:
		payload = e.store.TaskHistory
	case storage.KeyRecentHistory:
		payload = e.recorder.Entries()
	case storage.KeyMonthlyGoals:
		payload = emptyGoalsIfNil(e.store.ActiveGoals)
	case storage.KeyArchivedGoals:
		payload = emptyGoalsIfNil(e.store.ArchivedGoals)
	case storage.KeyResetMode:
		return string(e.store.DailyResetMode), nil
	case storage.KeyLastResetDaily:
		return e.store.LastResetDaily.Format(time.RFC3339), nil
	case storage.KeyLastResetWeekly:
		return e.store.LastResetWeekly.Format(time.RFC3339), nil
	case storage.KeyLastResetMonthly:
		return e.store.LastResetMonthly.Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("engine: unknown persisted key %q", key)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func emptyIfNil(in []model.Task) []model.Task {
	if in == nil {
		return []model.Task{}
	}
	return in
}

func emptyGoalsIfNil(in []model.MonthlyGoal) []model.MonthlyGoal {
	if in == nil {
		return []model.MonthlyGoal{}
	}
	return in
}

func (e *Engine) record(action model.HistoryAction, task model.Task, details string) {
	e.recorder.Append(model.HistoryEntry{
		ID:        e.newID(),
		Action:    action,
		Task:      model.SnapshotOf(task),
		Timestamp: e.now(),
		Details:   details,
	})
}

// RecentHistory returns up to limit audit entries, newest first.
func (e *Engine) RecentHistory(limit int) []model.HistoryEntry {
	return e.recorder.Recent(limit)
}

// HistoryByAction filters the audit log by action kind.
func (e *Engine) HistoryByAction(action model.HistoryAction, limit int) []model.HistoryEntry {
	return e.recorder.ByAction(action, limit)
}

// TodayHistory returns the audit entries recorded today.
func (e *Engine) TodayHistory() []model.HistoryEntry {
	return e.recorder.Today(e.now())
}

// ClearHistory drops the audit log and persists the empty log.
func (e *Engine) ClearHistory(ctx context.Context) error {
	cp := e.checkpoint()
	e.recorder.Clear()
	return e.commit(ctx, cp, storage.KeyRecentHistory)
}

// SetResetMode persists the daily reset preference.
func (e *Engine) SetResetMode(ctx context.Context, mode store.ResetMode) error {
	if !mode.IsValid() {
		return model.NewValidationError("mode", fmt.Sprintf("unknown reset mode %q", mode))
	}
	cp := e.checkpoint()
	e.store.DailyResetMode = mode
	return e.commit(ctx, cp, storage.KeyResetMode)
}

// ResetMode returns the active daily reset preference.
func (e *Engine) ResetMode() store.ResetMode {
	return e.store.DailyResetMode
}
