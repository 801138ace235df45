// Package period computes calendar boundaries for the reset scheduler. All
// functions are pure in the given instant and its location.
package period

import (
	"time"

	"github.com/sandeepkv93/taskcycle/internal/model"
)

// DayStart truncates an instant to midnight of its calendar day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns midnight of the Monday of the containing ISO week.
func WeekStart(t time.Time) time.Time {
	day := DayStart(t)
	offset := int(day.Weekday()) - int(time.Monday)
	if day.Weekday() == time.Sunday {
		offset = 6
	}
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns midnight of the first day of the containing month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns the last calendar day of the containing month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// NextDayStart returns the upcoming midnight strictly after t.
func NextDayStart(t time.Time) time.Time {
	return DayStart(t).AddDate(0, 0, 1)
}

// NextWeekStart returns the upcoming Monday midnight strictly after t.
func NextWeekStart(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 7)
}

// NextMonthStart returns the upcoming first-of-month midnight strictly after t.
func NextMonthStart(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

// DefaultRange derives the creation-time date range for a task type: daily
// tasks span one day, weekly tasks a week, monthly tasks and goals run to the
// end of the current month.
func DefaultRange(taskType model.TaskType, now time.Time) (model.Date, model.Date) {
	start := model.NewDate(now)
	switch taskType {
	case model.TypeWeekly:
		return start, start.AddDays(6)
	case model.TypeMonthly, model.TypeGoal:
		return start, model.NewDate(MonthEnd(now))
	default:
		return start, start
	}
}
