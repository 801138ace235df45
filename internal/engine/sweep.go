package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/storage"
)

// sweptTypes are the buckets the overdue sweep covers. Goal tasks are exempt;
// they stay in their bucket until the monthly reset regardless of dates.
var sweptTypes = []model.TaskType{model.TypeDaily, model.TypeWeekly, model.TypeMonthly}

// SweepOverdue moves every incomplete task whose end date has fully passed
// out of its bucket and into the pending list, tagged with its origin. It
// returns the moved tasks so the caller can surface a notification. Running
// it again immediately moves nothing.
func (e *Engine) SweepOverdue(ctx context.Context, now time.Time) ([]model.Task, error) {
	cp := e.checkpoint()
	moved := make([]model.Task, 0)
	keys := make([]string, 0, 4)

	for _, taskType := range sweptTypes {
		bucket := e.store.Bucket(taskType)
		kept := (*bucket)[:0]
		touched := false
		for _, task := range *bucket {
			if !task.IsOverdue(now) {
				kept = append(kept, task)
				continue
			}
			task.Status = model.StatusPending
			task.PendingReason = "overdue"
			task.OriginalType = taskType
			task.LastUpdated = now
			e.store.Pending = append(e.store.Pending, task)
			e.record(model.ActionMovedToPending, task, "overdue sweep")
			moved = append(moved, task)
			touched = true
		}
		*bucket = kept
		if touched {
			keys = append(keys, bucketKey(taskType))
		}
	}

	if len(moved) == 0 {
		return nil, nil
	}
	keys = append(keys, storage.KeyPending, storage.KeyRecentHistory)
	if err := e.commit(ctx, cp, keys...); err != nil {
		return nil, err
	}
	e.log.Info("overdue sweep moved tasks to pending", zap.Int("count", len(moved)))
	return moved, nil
}

// PendingCount is a convenience for the status bar.
func (e *Engine) PendingCount() int {
	return len(e.store.Pending)
}
