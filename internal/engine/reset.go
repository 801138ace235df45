package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/period"
	"github.com/sandeepkv93/taskcycle/internal/storage"
	"github.com/sandeepkv93/taskcycle/internal/store"
)

// ResetReport tells which boundary resets ran during a CheckAndReset pass.
type ResetReport struct {
	Daily   bool
	Weekly  bool
	Monthly bool
}

func (r ResetReport) Any() bool {
	return r.Daily || r.Weekly || r.Monthly
}

// CheckAndReset runs every boundary reset whose period start has passed since
// it last ran. It is idempotent within a period: a second call inside the
// same day, week or month does nothing. Called at startup and again whenever
// a boundary event fires, so a machine asleep over midnight still catches up.
func (e *Engine) CheckAndReset(ctx context.Context, now time.Time) (ResetReport, error) {
	var report ResetReport
	cp := e.checkpoint()
	keys := make([]string, 0, 8)

	if dayStart := period.DayStart(now); e.store.LastResetDaily.Before(dayStart) {
		e.resetDaily()
		e.store.LastResetDaily = dayStart
		report.Daily = true
		keys = append(keys, storage.KeyDailyTasks, storage.KeyLastResetDaily)
	}
	if weekStart := period.WeekStart(now); e.store.LastResetWeekly.Before(weekStart) {
		e.store.Weekly = dropCompleted(e.store.Weekly)
		e.store.LastResetWeekly = weekStart
		report.Weekly = true
		keys = append(keys, storage.KeyWeeklyTasks, storage.KeyLastResetWeekly)
	}
	if monthStart := period.MonthStart(now); e.store.LastResetMonthly.Before(monthStart) {
		e.store.Monthly = dropCompleted(e.store.Monthly)
		e.store.GoalTasks = dropCompleted(e.store.GoalTasks)
		e.store.LastResetMonthly = monthStart
		report.Monthly = true
		keys = append(keys, storage.KeyMonthlyTasks, storage.KeyGoalTasks, storage.KeyLastResetMonthly)
	}

	if len(keys) == 0 {
		return report, nil
	}
	if err := e.commit(ctx, cp, keys...); err != nil {
		return ResetReport{}, err
	}
	e.log.Info("boundary reset",
		zap.Bool("daily", report.Daily),
		zap.Bool("weekly", report.Weekly),
		zap.Bool("monthly", report.Monthly))
	return report, nil
}

// resetDaily applies the configured daily mode: remove drops completed tasks
// from the bucket, keep leaves them in place but flips them back to active.
func (e *Engine) resetDaily() {
	if e.store.DailyResetMode == store.ResetModeKeep {
		for i := range e.store.Daily {
			if !e.store.Daily[i].Completed {
				continue
			}
			e.store.Daily[i].Completed = false
			e.store.Daily[i].CompletedAt = nil
			e.store.Daily[i].CompletedOverdue = false
		}
		return
	}
	e.store.Daily = dropCompleted(e.store.Daily)
}

func dropCompleted(tasks []model.Task) []model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}
