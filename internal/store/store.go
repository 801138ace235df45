// Package store holds the in-memory task collections. A task lives in exactly
// one structural location at a time; every move between collections happens in
// one synchronous step through the helpers here.
package store

import (
	"time"

	"github.com/sandeepkv93/taskcycle/internal/model"
)

// ResetMode controls what the daily reset does with completed tasks.
type ResetMode string

const (
	ResetModeRemove ResetMode = "remove"
	ResetModeKeep   ResetMode = "keep"
)

func (m ResetMode) IsValid() bool {
	return m == ResetModeRemove || m == ResetModeKeep
}

// TypeHistory keeps completion and cancellation snapshots for one bucket.
// Entries are copies taken at the moment of transition; the live task is
// removed from its bucket independently.
type TypeHistory struct {
	Completed  []model.Task `json:"completed"`
	Incomplete []model.Task `json:"incomplete"`
}

// TaskHistory is the per-type snapshot aggregate. The goal bucket has no
// aggregate; quantifiable goals flip completion without leaving their bucket.
type TaskHistory struct {
	Daily   TypeHistory `json:"daily"`
	Weekly  TypeHistory `json:"weekly"`
	Monthly TypeHistory `json:"monthly"`
}

// ForType returns the aggregate for a bucket type, or nil for the goal bucket.
func (h *TaskHistory) ForType(t model.TaskType) *TypeHistory {
	switch t {
	case model.TypeDaily:
		return &h.Daily
	case model.TypeWeekly:
		return &h.Weekly
	case model.TypeMonthly:
		return &h.Monthly
	default:
		return nil
	}
}

// Store is the complete mutable state of the tracker.
type Store struct {
	Daily     []model.Task
	Weekly    []model.Task
	Monthly   []model.Task
	GoalTasks []model.Task

	Completed []model.Task
	Pending   []model.Task

	TaskHistory TaskHistory

	ActiveGoals   []model.MonthlyGoal
	ArchivedGoals []model.MonthlyGoal

	DailyResetMode   ResetMode
	LastResetDaily   time.Time
	LastResetWeekly  time.Time
	LastResetMonthly time.Time
}

func New() *Store {
	return &Store{DailyResetMode: ResetModeRemove}
}

// Bucket returns a pointer to the slice owning tasks of the given type. This
// is the single dispatch point from type to bucket.
func (s *Store) Bucket(t model.TaskType) *[]model.Task {
	switch t {
	case model.TypeDaily:
		return &s.Daily
	case model.TypeWeekly:
		return &s.Weekly
	case model.TypeMonthly:
		return &s.Monthly
	case model.TypeGoal:
		return &s.GoalTasks
	default:
		return nil
	}
}

// FindInBucket locates a task by id inside its owning bucket.
func (s *Store) FindInBucket(id string, t model.TaskType) (*model.Task, bool) {
	bucket := s.Bucket(t)
	if bucket == nil {
		return nil, false
	}
	for i := range *bucket {
		if (*bucket)[i].ID == id {
			return &(*bucket)[i], true
		}
	}
	return nil, false
}

// RemoveFromBucket takes a task out of its owning bucket, returning the
// removed value.
func (s *Store) RemoveFromBucket(id string, t model.TaskType) (model.Task, bool) {
	bucket := s.Bucket(t)
	if bucket == nil {
		return model.Task{}, false
	}
	for i := range *bucket {
		if (*bucket)[i].ID == id {
			removed := (*bucket)[i]
			*bucket = append((*bucket)[:i], (*bucket)[i+1:]...)
			return removed, true
		}
	}
	return model.Task{}, false
}

// FindCompleted locates a snapshot in the completed list by id.
func (s *Store) FindCompleted(id string) (int, bool) {
	for i := range s.Completed {
		if s.Completed[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Clone deep-copies every collection so a failed persist can roll the store
// back to its pre-mutation state.
func (s *Store) Clone() *Store {
	out := *s
	out.Daily = cloneTasks(s.Daily)
	out.Weekly = cloneTasks(s.Weekly)
	out.Monthly = cloneTasks(s.Monthly)
	out.GoalTasks = cloneTasks(s.GoalTasks)
	out.Completed = cloneTasks(s.Completed)
	out.Pending = cloneTasks(s.Pending)
	out.TaskHistory = TaskHistory{
		Daily:   cloneTypeHistory(s.TaskHistory.Daily),
		Weekly:  cloneTypeHistory(s.TaskHistory.Weekly),
		Monthly: cloneTypeHistory(s.TaskHistory.Monthly),
	}
	out.ActiveGoals = cloneGoals(s.ActiveGoals)
	out.ArchivedGoals = cloneGoals(s.ArchivedGoals)
	return &out
}

// Restore replaces the store contents with a previously taken clone.
func (s *Store) Restore(from *Store) {
	*s = *from
}

func cloneTasks(in []model.Task) []model.Task {
	if in == nil {
		return nil
	}
	out := make([]model.Task, len(in))
	copy(out, in)
	return out
}

func cloneTypeHistory(in TypeHistory) TypeHistory {
	return TypeHistory{
		Completed:  cloneTasks(in.Completed),
		Incomplete: cloneTasks(in.Incomplete),
	}
}

func cloneGoals(in []model.MonthlyGoal) []model.MonthlyGoal {
	if in == nil {
		return nil
	}
	out := make([]model.MonthlyGoal, len(in))
	copy(out, in)
	for i := range out {
		if in[i].Milestones != nil {
			ms := make([]model.Milestone, len(in[i].Milestones))
			copy(ms, in[i].Milestones)
			out[i].Milestones = ms
		}
	}
	return out
}
