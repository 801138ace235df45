// Package goals manages milestone-driven monthly goals: creation, weekly
// milestone toggles, derived progress and the pending-then-archive lifecycle
// for goals that outlive their end date.
package goals

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/storage"
	"github.com/sandeepkv93/taskcycle/internal/store"
)

const defaultGoalSpanDays = 30

// Manager owns the active and archived goal lists inside the shared store.
type Manager struct {
	store *store.Store
	repo  storage.Repository
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

func NewManager(st *store.Store, repo storage.Repository, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		store: st,
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddGoalInput carries the user-supplied fields of a new monthly goal.
// WeekTexts holds up to four milestone descriptions, one per week; blank
// weeks produce no milestone. A zero EndDate defaults to thirty days after
// the start.
type AddGoalInput struct {
	Title       string
	Description string
	StartDate   model.Date
	EndDate     model.Date
	WeekTexts   []string
}

func (m *Manager) AddGoal(ctx context.Context, in AddGoalInput) (model.MonthlyGoal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.MonthlyGoal{}, model.NewValidationError("title", "title is required")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return model.MonthlyGoal{}, model.NewValidationError("description", "description is required")
	}

	now := m.now()
	start := in.StartDate
	if start.IsZero() {
		start = model.NewDate(now)
	}
	end := in.EndDate
	if end.IsZero() {
		end = start.AddDays(defaultGoalSpanDays)
	}
	if end.Before(start) {
		return model.MonthlyGoal{}, model.NewValidationError("endDate", "end date is before start date")
	}
	milestones := model.BuildMilestones(start, in.WeekTexts)
	if len(milestones) == 0 {
		return model.MonthlyGoal{}, model.NewValidationError("milestones", "at least one weekly milestone is required")
	}

	goal := model.MonthlyGoal{
		ID:          m.newID(),
		Title:       title,
		Description: description,
		StartDate:   start,
		EndDate:     end,
		Milestones:  milestones,
		CreatedAt:   now,
		LastUpdated: now,
	}
	goal.RecalcProgress()
	if err := goal.Validate(); err != nil {
		return model.MonthlyGoal{}, err
	}

	undo := m.store.Clone()
	m.store.ActiveGoals = append(m.store.ActiveGoals, goal)
	if err := m.persist(ctx, undo, storage.KeyMonthlyGoals); err != nil {
		return model.MonthlyGoal{}, err
	}
	return goal, nil
}

// ToggleMilestone flips one milestone of an active goal and recomputes the
// goal's progress. An unknown goal id is a silent no-op.
func (m *Manager) ToggleMilestone(ctx context.Context, goalID string, index int) (model.MonthlyGoal, error) {
	goal, ok := m.findActive(goalID)
	if !ok {
		return model.MonthlyGoal{}, nil
	}
	if index < 0 || index >= len(goal.Milestones) {
		return model.MonthlyGoal{}, model.NewValidationError("milestone", fmt.Sprintf("milestone index %d out of range", index))
	}
	undo := m.store.Clone()
	goal.Milestones[index].Completed = !goal.Milestones[index].Completed
	goal.RecalcProgress()
	goal.LastUpdated = m.now()
	updated := *goal
	if err := m.persist(ctx, undo, storage.KeyMonthlyGoals); err != nil {
		return model.MonthlyGoal{}, err
	}
	return updated, nil
}

// ArchiveGoal moves an active goal to the archive. An incomplete goal is
// tagged pending so the archive distinguishes finished goals from abandoned
// ones. An unknown id is a silent no-op.
func (m *Manager) ArchiveGoal(ctx context.Context, id string) (model.MonthlyGoal, error) {
	idx := -1
	for i := range m.store.ActiveGoals {
		if m.store.ActiveGoals[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.MonthlyGoal{}, nil
	}
	undo := m.store.Clone()
	now := m.now()
	goal := m.store.ActiveGoals[idx]
	m.store.ActiveGoals = append(m.store.ActiveGoals[:idx], m.store.ActiveGoals[idx+1:]...)
	if !goal.Completed {
		goal.Status = model.StatusPending
		goal.PendingReason = "archived incomplete"
	}
	at := now
	goal.ArchivedAt = &at
	goal.LastUpdated = now
	m.store.ArchivedGoals = append(m.store.ArchivedGoals, goal)
	if err := m.persist(ctx, undo, storage.KeyMonthlyGoals, storage.KeyArchivedGoals); err != nil {
		return model.MonthlyGoal{}, err
	}
	return goal, nil
}

// DeleteGoal removes a goal from either list. An unknown id is a silent
// no-op.
func (m *Manager) DeleteGoal(ctx context.Context, id string, archived bool) error {
	list := &m.store.ActiveGoals
	key := storage.KeyMonthlyGoals
	if archived {
		list = &m.store.ArchivedGoals
		key = storage.KeyArchivedGoals
	}
	for i := range *list {
		if (*list)[i].ID != id {
			continue
		}
		undo := m.store.Clone()
		*list = append((*list)[:i], (*list)[i+1:]...)
		return m.persist(ctx, undo, key)
	}
	return nil
}

// CheckGoalStatus is the idempotent overdue scan: every active goal whose end
// date has fully passed without completion is tagged pending and moved to the
// archive in one pass. It returns the goals it archived. Both the hourly
// sweep and the manual check run through here, so running it twice in a row
// archives nothing the second time.
func (m *Manager) CheckGoalStatus(ctx context.Context, now time.Time) ([]model.MonthlyGoal, error) {
	undo := m.store.Clone()
	kept := m.store.ActiveGoals[:0]
	archived := make([]model.MonthlyGoal, 0)
	for _, goal := range m.store.ActiveGoals {
		if !goal.IsOverdue(now) {
			kept = append(kept, goal)
			continue
		}
		goal.Status = model.StatusPending
		goal.PendingReason = "overdue"
		at := now
		goal.ArchivedAt = &at
		goal.LastUpdated = now
		m.store.ArchivedGoals = append(m.store.ArchivedGoals, goal)
		archived = append(archived, goal)
	}
	m.store.ActiveGoals = kept

	if len(archived) == 0 {
		return nil, nil
	}
	if err := m.persist(ctx, undo, storage.KeyMonthlyGoals, storage.KeyArchivedGoals); err != nil {
		return nil, err
	}
	m.log.Info("archived overdue goals", zap.Int("count", len(archived)))
	return archived, nil
}

// Overview summarizes the goal lists for the dashboard.
type Overview struct {
	Active    int
	Completed int
	Overdue   int
	Archived  int
}

func (m *Manager) Overview(now time.Time) Overview {
	o := Overview{
		Active:   len(m.store.ActiveGoals),
		Archived: len(m.store.ArchivedGoals),
	}
	for _, goal := range m.store.ActiveGoals {
		if goal.Completed {
			o.Completed++
		} else if goal.IsOverdue(now) {
			o.Overdue++
		}
	}
	return o
}

func (m *Manager) findActive(id string) (*model.MonthlyGoal, bool) {
	for i := range m.store.ActiveGoals {
		if m.store.ActiveGoals[i].ID == id {
			return &m.store.ActiveGoals[i], true
		}
	}
	return nil, false
}

func (m *Manager) persist(ctx context.Context, undo *store.Store, keys ...string) error {
	for _, key := range keys {
		var payload []model.MonthlyGoal
		switch key {
		case storage.KeyMonthlyGoals:
			payload = m.store.ActiveGoals
		case storage.KeyArchivedGoals:
			payload = m.store.ArchivedGoals
		}
		if payload == nil {
			payload = []model.MonthlyGoal{}
		}
		raw, err := json.Marshal(payload)
		if err == nil {
			err = m.repo.Save(ctx, key, string(raw))
		}
		if err != nil {
			m.store.Restore(undo)
			return fmt.Errorf("goals: persist %s: %w", key, err)
		}
	}
	return nil
}
