// Package history keeps the append-only audit log of lifecycle transitions.
// The log is independent of the per-bucket completed and pending lists.
package history

import (
	"time"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/period"
)

// DefaultCap is the number of entries kept before the oldest are dropped.
const DefaultCap = 100

// Recorder holds audit entries newest-first. Appending past the cap evicts
// the oldest entry by insertion order.
type Recorder struct {
	entries []model.HistoryEntry
	cap     int
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Recorder{cap: capacity}
}

// Append records one transition at the head of the log.
func (r *Recorder) Append(entry model.HistoryEntry) {
	r.entries = append([]model.HistoryEntry{entry}, r.entries...)
	if len(r.entries) > r.cap {
		r.entries = r.entries[:r.cap]
	}
}

func (r *Recorder) Len() int {
	return len(r.entries)
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (r *Recorder) Recent(limit int) []model.HistoryEntry {
	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	out := make([]model.HistoryEntry, limit)
	copy(out, r.entries[:limit])
	return out
}

// ByAction filters the log to one action kind, newest first.
func (r *Recorder) ByAction(action model.HistoryAction, limit int) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Action != action {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Today returns the entries recorded on the calendar day of now.
func (r *Recorder) Today(now time.Time) []model.HistoryEntry {
	dayStart := period.DayStart(now)
	dayEnd := dayStart.AddDate(0, 0, 1)
	out := make([]model.HistoryEntry, 0)
	for _, e := range r.entries {
		if !e.Timestamp.Before(dayStart) && e.Timestamp.Before(dayEnd) {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops the whole log.
func (r *Recorder) Clear() {
	r.entries = nil
}

// Entries returns the raw log for persistence, newest first.
func (r *Recorder) Entries() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Replace loads a persisted log, truncating to the cap.
func (r *Recorder) Replace(entries []model.HistoryEntry) {
	if len(entries) > r.cap {
		entries = entries[:r.cap]
	}
	r.entries = make([]model.HistoryEntry, len(entries))
	copy(r.entries, entries)
}
