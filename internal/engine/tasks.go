package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/period"
	"github.com/sandeepkv93/taskcycle/internal/storage"
)

// AddTaskInput carries the user-supplied fields of a new task. Dates left at
// their zero value default to the bucket's natural range for today.
type AddTaskInput struct {
	Title       string
	Description string
	Type        model.TaskType
	StartDate   model.Date
	EndDate     model.Date
	Target      int
}

// AddTask validates the input, builds the task and appends it to its bucket.
func (e *Engine) AddTask(ctx context.Context, in AddTaskInput) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, model.NewValidationError("title", "title is required")
	}
	if !in.Type.IsValid() {
		return model.Task{}, model.NewValidationError("type", fmt.Sprintf("unknown task type %q", in.Type))
	}
	if in.Type == model.TypeGoal && in.Target <= 0 {
		return model.Task{}, model.NewValidationError("target", "goal target must be a positive number")
	}

	now := e.now()
	start, end := in.StartDate, in.EndDate
	switch {
	case start.IsZero() && end.IsZero():
		start, end = period.DefaultRange(in.Type, now)
	case start.IsZero():
		return model.Task{}, model.NewValidationError("startDate", "start date is required when an end date is given")
	case end.IsZero():
		return model.Task{}, model.NewValidationError("endDate", "end date is required when a start date is given")
	case end.Before(start):
		return model.Task{}, model.NewValidationError("endDate", "end date is before start date")
	}

	task := model.Task{
		ID:          e.newID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if in.Type == model.TypeGoal {
		task.IsQuantifiable = true
		task.Target = in.Target
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	cp := e.checkpoint()
	bucket := e.store.Bucket(in.Type)
	*bucket = append(*bucket, task)
	e.record(model.ActionAdded, task, "")
	if err := e.commit(ctx, cp, bucketKey(in.Type), storage.KeyRecentHistory); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// Choice is one of the completion outcomes offered when a task is toggled.
type Choice string

const (
	ChoiceCompleted Choice = "completed"
	ChoicePending   Choice = "pending"
	ChoiceCancelled Choice = "cancelled"
)

// ToggleKind describes what a toggle did or wants to do next.
type ToggleKind string

const (
	// ToggleNone means the task was not found anywhere; nothing happened.
	ToggleNone ToggleKind = "none"
	// ToggleReverted means a completed task was flipped back to active.
	ToggleReverted ToggleKind = "reverted"
	// ToggleChoose means the caller must pick a Choice and call
	// ConfirmCompletion; no state was mutated yet.
	ToggleChoose ToggleKind = "choose"
)

// ToggleResult reports the outcome of Toggle. When Kind is ToggleChoose,
// Choices lists the legal outcomes and Overdue tells whether the task passed
// its end date.
type ToggleResult struct {
	Kind    ToggleKind
	Task    model.Task
	Overdue bool
	Choices []Choice
}

// Toggle flips the completion state of a task. An incomplete task is never
// completed directly; the caller gets the legal outcomes back and confirms
// one. A completed task reverts to active immediately. An unknown id is a
// silent no-op, since the task may have been removed by a reset or sweep
// between render and keypress.
func (e *Engine) Toggle(ctx context.Context, id string, taskType model.TaskType) (ToggleResult, error) {
	now := e.now()

	if task, ok := e.store.FindInBucket(id, taskType); ok {
		if !task.Completed {
			overdue := task.IsOverdue(now)
			choices := []Choice{ChoiceCompleted, ChoiceCancelled}
			if overdue {
				choices = []Choice{ChoiceCompleted, ChoicePending, ChoiceCancelled}
			}
			return ToggleResult{Kind: ToggleChoose, Task: *task, Overdue: overdue, Choices: choices}, nil
		}
		// In-bucket completed tasks exist only in the goal bucket, where
		// completion is derived from progress. Reverting resets progress.
		cp := e.checkpoint()
		task.Completed = false
		task.CompletedAt = nil
		task.CompletedOverdue = false
		if task.IsQuantifiable && task.Current >= task.Target {
			task.Current = task.Target - 1
		}
		task.LastUpdated = now
		reverted := *task
		if err := e.commit(ctx, cp, bucketKey(taskType)); err != nil {
			return ToggleResult{}, err
		}
		return ToggleResult{Kind: ToggleReverted, Task: reverted}, nil
	}

	if idx, ok := e.store.FindCompleted(id); ok {
		cp := e.checkpoint()
		task := e.store.Completed[idx]
		e.store.Completed = append(e.store.Completed[:idx], e.store.Completed[idx+1:]...)

		home := task.Type
		if task.OriginalType.IsValid() {
			home = task.OriginalType
		}
		task.Type = home
		task.Completed = false
		task.CompletedAt = nil
		task.CompletedOverdue = false
		task.CompletionType = ""
		task.CompletionDate = nil
		task.OriginalType = ""
		task.LastUpdated = now
		bucket := e.store.Bucket(home)
		*bucket = append(*bucket, task)
		if err := e.commit(ctx, cp, bucketKey(home), storage.KeyCompleted); err != nil {
			return ToggleResult{}, err
		}
		return ToggleResult{Kind: ToggleReverted, Task: task}, nil
	}

	return ToggleResult{Kind: ToggleNone}, nil
}

// ConfirmCompletion applies a previously offered Choice to an active task.
// Overdue is re-derived here rather than trusted from the earlier toggle, so
// a confirmation that straddles midnight lands in the right state. An unknown
// id is a silent no-op.
func (e *Engine) ConfirmCompletion(ctx context.Context, id string, taskType model.TaskType, choice Choice) error {
	task, ok := e.store.FindInBucket(id, taskType)
	if !ok {
		return nil
	}
	now := e.now()
	overdue := task.IsOverdue(now)

	switch choice {
	case ChoiceCompleted:
		cp := e.checkpoint()
		removed, _ := e.store.RemoveFromBucket(id, taskType)
		removed.Completed = true
		at := now
		removed.CompletedAt = &at
		removed.CompletedOverdue = overdue
		removed.CompletionType = string(ChoiceCompleted)
		removed.CompletionDate = &at
		removed.OriginalType = taskType
		removed.LastUpdated = now
		e.store.Completed = append(e.store.Completed, removed)
		if agg := e.store.TaskHistory.ForType(taskType); agg != nil {
			agg.Completed = append(agg.Completed, removed)
		}
		e.record(model.ActionCompleted, removed, completionDetails(overdue))
		return e.commit(ctx, cp,
			bucketKey(taskType), storage.KeyCompleted, storage.KeyTaskHistory, storage.KeyRecentHistory)

	case ChoiceCancelled:
		cp := e.checkpoint()
		removed, _ := e.store.RemoveFromBucket(id, taskType)
		at := now
		removed.CompletionType = string(ChoiceCancelled)
		removed.CompletionDate = &at
		removed.OriginalType = taskType
		removed.Reason = "cancelled"
		removed.LastUpdated = now
		if agg := e.store.TaskHistory.ForType(taskType); agg != nil {
			agg.Incomplete = append(agg.Incomplete, removed)
		}
		e.record(model.ActionCancelled, removed, "")
		return e.commit(ctx, cp,
			bucketKey(taskType), storage.KeyTaskHistory, storage.KeyRecentHistory)

	case ChoicePending:
		if !overdue {
			return model.NewValidationError("choice", "only overdue tasks can be moved to pending")
		}
		cp := e.checkpoint()
		removed, _ := e.store.RemoveFromBucket(id, taskType)
		removed.Status = model.StatusPending
		removed.PendingReason = "overdue"
		removed.OriginalType = taskType
		removed.LastUpdated = now
		e.store.Pending = append(e.store.Pending, removed)
		e.record(model.ActionMovedToPending, removed, "overdue at confirmation")
		return e.commit(ctx, cp,
			bucketKey(taskType), storage.KeyPending, storage.KeyRecentHistory)

	default:
		return model.NewValidationError("choice", fmt.Sprintf("unknown completion choice %q", choice))
	}
}

// DeleteTask removes a task from its bucket and records the deletion. An
// unknown id is a silent no-op.
func (e *Engine) DeleteTask(ctx context.Context, id string, taskType model.TaskType) error {
	cp := e.checkpoint()
	removed, ok := e.store.RemoveFromBucket(id, taskType)
	if !ok {
		return nil
	}
	e.record(model.ActionDeleted, removed, "")
	return e.commit(ctx, cp, bucketKey(taskType), storage.KeyRecentHistory)
}

// UpdateGoalProgress sets the progress of a quantifiable goal task, clamped
// to its target. Reaching the target derives completion in place; the task
// stays in the goal bucket either way. An unknown id returns the zero task.
func (e *Engine) UpdateGoalProgress(ctx context.Context, id string, value int) (model.Task, error) {
	task, ok := e.store.FindInBucket(id, model.TypeGoal)
	if !ok {
		return model.Task{}, nil
	}
	if !task.IsQuantifiable {
		return model.Task{}, model.NewValidationError("id", "task is not a quantifiable goal")
	}
	cp := e.checkpoint()
	now := e.now()
	justCompleted := task.ClampProgress(value, now)
	if justCompleted {
		task.CompletedOverdue = task.EndDate.Next().Time.Before(now)
		e.record(model.ActionCompleted, *task, "target reached")
	}
	updated := *task
	keys := []string{bucketKey(model.TypeGoal)}
	if justCompleted {
		keys = append(keys, storage.KeyRecentHistory)
	}
	if err := e.commit(ctx, cp, keys...); err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

// Stats summarizes one bucket.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

// Statistics derives per-bucket counts from the live collections.
func (e *Engine) Statistics() map[model.TaskType]Stats {
	out := make(map[model.TaskType]Stats, len(model.TaskTypes()))
	for _, t := range model.TaskTypes() {
		bucket := *e.store.Bucket(t)
		s := Stats{Total: len(bucket)}
		for _, task := range bucket {
			if task.Completed {
				s.Completed++
			}
		}
		s.Pending = s.Total - s.Completed
		out[t] = s
	}
	return out
}

func completionDetails(overdue bool) string {
	if overdue {
		return "completed overdue"
	}
	return ""
}

// bucketKey maps a task type to its persisted key.
func bucketKey(t model.TaskType) string {
	switch t {
	case model.TypeDaily:
		return storage.KeyDailyTasks
	case model.TypeWeekly:
		return storage.KeyWeeklyTasks
	case model.TypeMonthly:
		return storage.KeyMonthlyTasks
	case model.TypeGoal:
		return storage.KeyGoalTasks
	default:
		return ""
	}
}
