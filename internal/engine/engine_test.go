package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/storage"
	"github.com/sandeepkv93/taskcycle/internal/store"
)

// memRepo is an in-memory Repository for engine tests. Keys listed in
// failKeys reject every save, which exercises the rollback path.
type memRepo struct {
	data     map[string]string
	failKeys map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{data: make(map[string]string), failKeys: make(map[string]bool)}
}

func (r *memRepo) Load(_ context.Context, key string) (string, error) {
	value, ok := r.data[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (r *memRepo) Save(_ context.Context, key, value string) error {
	if r.failKeys[key] {
		return errors.New("disk full")
	}
	r.data[key] = value
	return nil
}

func (r *memRepo) Delete(_ context.Context, key string) error {
	if _, ok := r.data[key]; !ok {
		return storage.ErrNotFound
	}
	delete(r.data, key)
	return nil
}

func (r *memRepo) Keys(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(r.data))
	for key := range r.data {
		out = append(out, key)
	}
	return out, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestEngine(t *testing.T, repo *memRepo, now time.Time) *Engine {
	t.Helper()
	return New(repo, nil, WithClock(fixedClock(now)), WithIDGenerator(sequentialIDs()))
}

func TestAddTaskRejectsInvalidInput(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), now)
	ctx := context.Background()

	var ve *model.ValidationError
	_, err := e.AddTask(ctx, AddTaskInput{Title: "   ", Type: model.TypeDaily})
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("expected title validation error, got: %v", err)
	}

	_, err = e.AddTask(ctx, AddTaskInput{Title: "bad", Type: model.TaskType("yearly")})
	if !errors.As(err, &ve) || ve.Field != "type" {
		t.Fatalf("expected type validation error, got: %v", err)
	}

	_, err = e.AddTask(ctx, AddTaskInput{Title: "read", Type: model.TypeGoal})
	if !errors.As(err, &ve) || ve.Field != "target" {
		t.Fatalf("expected target validation error, got: %v", err)
	}

	if len(e.Store().Daily) != 0 || len(e.RecentHistory(0)) != 0 {
		t.Fatal("rejected input must not mutate state")
	}
}

func TestAddTaskDefaultsRangeAndRecords(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	e := newTestEngine(t, repo, now)

	task, err := e.AddTask(context.Background(), AddTaskInput{Title: "Water plants", Type: model.TypeDaily})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if task.StartDate.String() != "2026-08-10" || task.EndDate.String() != "2026-08-10" {
		t.Fatalf("unexpected default range: %s - %s", task.StartDate, task.EndDate)
	}
	if len(e.Store().Daily) != 1 {
		t.Fatalf("task missing from bucket: %#v", e.Store().Daily)
	}

	entries := e.RecentHistory(0)
	if len(entries) != 1 || entries[0].Action != model.ActionAdded || entries[0].Task.ID != task.ID {
		t.Fatalf("unexpected history: %#v", entries)
	}
	if _, ok := repo.data[storage.KeyDailyTasks]; !ok {
		t.Fatal("bucket not persisted")
	}
}

func TestToggleOffersChoicesWithoutMutating(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), now)
	ctx := context.Background()

	task, err := e.AddTask(ctx, AddTaskInput{Title: "Review notes", Type: model.TypeDaily})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	result, err := e.Toggle(ctx, task.ID, model.TypeDaily)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if result.Kind != ToggleChoose || result.Overdue {
		t.Fatalf("unexpected toggle result: %#v", result)
	}
	if len(result.Choices) != 2 {
		t.Fatalf("on-time task should offer complete and cancel only: %#v", result.Choices)
	}
	if len(e.Store().Daily) != 1 || e.Store().Daily[0].Completed {
		t.Fatal("toggle must not mutate before confirmation")
	}
}

func TestConfirmCompleted(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), now)
	ctx := context.Background()

	task, _ := e.AddTask(ctx, AddTaskInput{Title: "Review notes", Type: model.TypeDaily})
	if err := e.ConfirmCompletion(ctx, task.ID, model.TypeDaily, ChoiceCompleted); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	st := e.Store()
	if len(st.Daily) != 0 {
		t.Fatal("completed task should leave its bucket")
	}
	if len(st.Completed) != 1 || !st.Completed[0].Completed || st.Completed[0].CompletedOverdue {
		t.Fatalf("unexpected completed list: %#v", st.Completed)
	}
	if st.Completed[0].OriginalType != model.TypeDaily {
		t.Fatalf("snapshot should remember its origin: %#v", st.Completed[0])
	}
	if len(st.TaskHistory.Daily.Completed) != 1 {
		t.Fatalf("per-type aggregate missing snapshot: %#v", st.TaskHistory)
	}
	entries := e.HistoryByAction(model.ActionCompleted, 0)
	if len(entries) != 1 {
		t.Fatalf("expected one completed audit entry: %#v", entries)
	}
}

func TestOverdueToggleOffersPendingAndConfirmMoves(t *testing.T) {
	repo := newMemRepo()
	created := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, repo, created)
	ctx := context.Background()

	task, _ := e.AddTask(ctx, AddTaskInput{Title: "File report", Type: model.TypeDaily})

	// Two days later the daily task has passed its end date.
	later := time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC)
	e.now = fixedClock(later)

	result, err := e.Toggle(ctx, task.ID, model.TypeDaily)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !result.Overdue || len(result.Choices) != 3 {
		t.Fatalf("overdue task should offer three choices: %#v", result)
	}

	if err := e.ConfirmCompletion(ctx, task.ID, model.TypeDaily, ChoicePending); err != nil {
		t.Fatalf("confirm pending: %v", err)
	}
	st := e.Store()
	if len(st.Daily) != 0 || len(st.Pending) != 1 {
		t.Fatalf("task should move to pending: daily=%d pending=%d", len(st.Daily), len(st.Pending))
	}
	moved := st.Pending[0]
	if moved.Status != model.StatusPending || moved.PendingReason != "overdue" || moved.OriginalType != model.TypeDaily {
		t.Fatalf("unexpected pending snapshot: %#v", moved)
	}
	if len(e.HistoryByAction(model.ActionMovedToPending, 0)) != 1 {
		t.Fatal("expected a moved_to_pending audit entry")
	}
}

func TestConfirmPendingRejectedWhenOnTime(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), now)
	ctx := context.Background()

	task, _ := e.AddTask(ctx, AddTaskInput{Title: "On time", Type: model.TypeDaily})
	err := e.ConfirmCompletion(ctx, task.ID, model.TypeDaily, ChoicePending)
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if len(e.Store().Daily) != 1 || len(e.Store().Pending) != 0 {
		t.Fatal("rejected confirmation must not mutate state")
	}
}

func TestConfirmCompletedOverdueSetsFlag(t *testing.T) {
	created := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), created)
	ctx := context.Background()

	task, _ := e.AddTask(ctx, AddTaskInput{Title: "Late finish", Type: model.TypeDaily})
	e.now = fixedClock(time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC))

	if err := e.ConfirmCompletion(ctx, task.ID, model.TypeDaily, ChoiceCompleted); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got := e.Store().Completed[0]; !got.CompletedOverdue {
		t.Fatalf("completion past the end date should carry the overdue flag: %#v", got)
	}
}

func TestToggleRevertsCompletedTask(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), now)
	ctx := context.Background()

	task, _ := e.AddTask(ctx, AddTaskInput{Title: "Undo me", Type: model.TypeWeekly})
	if err := e.ConfirmCompletion(ctx, task.ID, model.TypeWeekly, ChoiceCompleted); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	result, err := e.Toggle(ctx, task.ID, model.TypeWeekly)
	if err != nil {
		t.Fatalf("toggle revert: %v", err)
	}
	if result.Kind != ToggleReverted {
		t.Fatalf("expected revert, got %#v", result)
	}
	st := e.Store()
	if len(st.Completed) != 0 || len(st.Weekly) != 1 {
		t.Fatalf("task should be back in its bucket: %#v", st.Weekly)
	}
	back := st.Weekly[0]
	if back.Completed || back.CompletedAt != nil || back.CompletionType != "" {
		t.Fatalf("completion fields should be cleared: %#v", back)
	}
}

func TestToggleUnknownIDIsNoOp(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), now)

	result, err := e.Toggle(context.Background(), "ghost", model.TypeDaily)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if result.Kind != ToggleNone {
		t.Fatalf("expected no-op, got %#v", result)
	}
}

func TestDeleteTaskRecordsAudit(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), now)
	ctx := context.Background()

	task, _ := e.AddTask(ctx, AddTaskInput{Title: "Remove me", Type: model.TypeMonthly})
	if err := e.DeleteTask(ctx, task.ID, model.TypeMonthly); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(e.Store().Monthly) != 0 {
		t.Fatal("task should be gone from its bucket")
	}
	if len(e.Store().Completed) != 0 && len(e.Store().Pending) != 0 {
		t.Fatal("deletion must not move the task to completed or pending")
	}
	entries := e.HistoryByAction(model.ActionDeleted, 0)
	if len(entries) != 1 || entries[0].Task.Title != "Remove me" {
		t.Fatalf("unexpected audit entries: %#v", entries)
	}

	if err := e.DeleteTask(ctx, "ghost", model.TypeMonthly); err != nil {
		t.Fatalf("deleting unknown id should be a no-op, got: %v", err)
	}
}

func TestUpdateGoalProgressClampsAndCompletes(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), now)
	ctx := context.Background()

	task, _ := e.AddTask(ctx, AddTaskInput{Title: "Read pages", Type: model.TypeGoal, Target: 20})

	updated, err := e.UpdateGoalProgress(ctx, task.ID, 50)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if updated.Current != 20 || !updated.Completed {
		t.Fatalf("expected clamp to target and completion: %#v", updated)
	}
	if len(e.Store().GoalTasks) != 1 {
		t.Fatal("completed goal task must stay in its bucket")
	}
	if len(e.HistoryByAction(model.ActionCompleted, 0)) != 1 {
		t.Fatal("reaching the target should record a completion")
	}

	updated, err = e.UpdateGoalProgress(ctx, "ghost", 1)
	if err != nil || updated.ID != "" {
		t.Fatalf("unknown id should be a silent no-op: %#v %v", updated, err)
	}
}

func TestCheckAndResetDailyModes(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for _, tc := range []struct {
		mode      store.ResetMode
		wantTasks int
	}{
		{store.ResetModeRemove, 1},
		{store.ResetModeKeep, 2},
	} {
		e := newTestEngine(t, newMemRepo(), start)
		if err := e.SetResetMode(ctx, tc.mode); err != nil {
			t.Fatalf("set mode: %v", err)
		}
		done, _ := e.AddTask(ctx, AddTaskInput{Title: "Done", Type: model.TypeDaily})
		e.AddTask(ctx, AddTaskInput{Title: "Open", Type: model.TypeDaily})
		if err := e.ConfirmCompletion(ctx, done.ID, model.TypeDaily, ChoiceCompleted); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		// Completed tasks leave the bucket; in keep mode the reset only
		// touches what is still in the bucket, so re-add a completed one.
		if tc.mode == store.ResetModeKeep {
			at := start
			e.Store().Daily = append(e.Store().Daily, model.Task{
				ID: "done-in-bucket", Title: "Checked", Type: model.TypeDaily,
				Completed: true, CompletedAt: &at, CreatedAt: start,
			})
		}

		nextDay := time.Date(2026, 8, 11, 0, 0, 1, 0, time.UTC)
		report, err := e.CheckAndReset(ctx, nextDay)
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
		if !report.Daily {
			t.Fatal("daily reset should have run")
		}
		if got := len(e.Store().Daily); got != tc.wantTasks {
			t.Fatalf("mode %s: expected %d tasks after reset, got %d", tc.mode, tc.wantTasks, got)
		}
		for _, task := range e.Store().Daily {
			if task.Completed {
				t.Fatalf("mode %s: no task should stay completed after reset: %#v", tc.mode, task)
			}
		}

		// Second run inside the same day is a no-op.
		report, err = e.CheckAndReset(ctx, nextDay.Add(time.Hour))
		if err != nil {
			t.Fatalf("second reset: %v", err)
		}
		if report.Any() {
			t.Fatalf("reset should be idempotent within a day: %#v", report)
		}
	}
}

func TestCheckAndResetMonthlyCoversGoals(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), start)
	ctx := context.Background()

	goal, _ := e.AddTask(ctx, AddTaskInput{Title: "Read pages", Type: model.TypeGoal, Target: 5})
	e.AddTask(ctx, AddTaskInput{Title: "Open goal", Type: model.TypeGoal, Target: 5})
	if _, err := e.UpdateGoalProgress(ctx, goal.ID, 5); err != nil {
		t.Fatalf("complete goal: %v", err)
	}

	nextMonth := time.Date(2026, 9, 1, 0, 0, 1, 0, time.UTC)
	report, err := e.CheckAndReset(ctx, nextMonth)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !report.Monthly || !report.Daily || !report.Weekly {
		t.Fatalf("month boundary crosses all three resets: %#v", report)
	}
	if got := len(e.Store().GoalTasks); got != 1 {
		t.Fatalf("completed goal tasks should be dropped at month start, got %d", got)
	}
}

func TestSweepOverdueMovesTasksButNotGoals(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), start)
	ctx := context.Background()

	e.AddTask(ctx, AddTaskInput{Title: "Daily chore", Type: model.TypeDaily})
	e.AddTask(ctx, AddTaskInput{Title: "Weekly errand", Type: model.TypeWeekly})
	e.AddTask(ctx, AddTaskInput{Title: "Quantified", Type: model.TypeGoal, Target: 10})

	// Far enough ahead that daily and weekly are both overdue.
	later := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	moved, err := e.SweepOverdue(ctx, later)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(moved) != 2 {
		t.Fatalf("expected 2 moved tasks, got %#v", moved)
	}
	st := e.Store()
	if len(st.Daily) != 0 || len(st.Weekly) != 0 {
		t.Fatal("overdue tasks should leave their buckets")
	}
	if len(st.GoalTasks) != 1 {
		t.Fatal("goal bucket is exempt from the overdue sweep")
	}
	if len(st.Pending) != 2 {
		t.Fatalf("unexpected pending list: %#v", st.Pending)
	}
	if len(e.HistoryByAction(model.ActionMovedToPending, 0)) != 2 {
		t.Fatal("each move should be audited")
	}

	moved, err = e.SweepOverdue(ctx, later)
	if err != nil || moved != nil {
		t.Fatalf("second sweep should move nothing: %#v %v", moved, err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(t, newMemRepo(), start)
	ctx := context.Background()

	e.AddTask(ctx, AddTaskInput{Title: "Daily", Type: model.TypeDaily})
	done, _ := e.AddTask(ctx, AddTaskInput{Title: "Weekly", Type: model.TypeWeekly})
	e.AddTask(ctx, AddTaskInput{Title: "Pages", Type: model.TypeGoal, Target: 30})
	e.ConfirmCompletion(ctx, done.ID, model.TypeWeekly, ChoiceCompleted)
	e.SetResetMode(ctx, store.ResetModeKeep)

	snap := e.ExportSnapshot()
	if snap.ExportDate.IsZero() {
		t.Fatal("snapshot should carry its export time")
	}

	fresh := newTestEngine(t, newMemRepo(), start)
	if err := fresh.ImportSnapshot(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	a, b := e.Store(), fresh.Store()
	if len(a.Daily) != len(b.Daily) || len(a.Weekly) != len(b.Weekly) ||
		len(a.GoalTasks) != len(b.GoalTasks) || len(a.Completed) != len(b.Completed) {
		t.Fatalf("bucket contents diverged: %#v vs %#v", a, b)
	}
	if b.DailyResetMode != store.ResetModeKeep {
		t.Fatalf("settings not imported: %s", b.DailyResetMode)
	}
	if len(fresh.RecentHistory(0)) != len(e.RecentHistory(0)) {
		t.Fatal("audit log not imported")
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	e := newTestEngine(t, repo, start)
	ctx := context.Background()

	task, err := e.AddTask(ctx, AddTaskInput{Title: "Persisted fine", Type: model.TypeDaily})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	repo.failKeys[storage.KeyCompleted] = true
	err = e.ConfirmCompletion(ctx, task.ID, model.TypeDaily, ChoiceCompleted)
	if err == nil {
		t.Fatal("expected persist error")
	}
	st := e.Store()
	if len(st.Daily) != 1 || st.Daily[0].Completed {
		t.Fatalf("failed persist must roll the bucket back: %#v", st.Daily)
	}
	if len(st.Completed) != 0 || len(st.TaskHistory.Daily.Completed) != 0 {
		t.Fatal("failed persist must roll the snapshots back")
	}
	if len(e.HistoryByAction(model.ActionCompleted, 0)) != 0 {
		t.Fatal("failed persist must roll the audit log back")
	}
}

func TestLoadToleratesCorruptValues(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	repo.data[storage.KeyDailyTasks] = "{not json"
	repo.data[storage.KeyWeeklyTasks] = `[{"id":"w1","title":"ok","type":"weekly","startDate":"2026-08-10","endDate":"2026-08-16","completed":false,"createdAt":"2026-08-10T09:00:00Z","lastUpdated":"2026-08-10T09:00:00Z"}]`
	repo.data[storage.KeyResetMode] = "sometimes"
	repo.data[storage.KeyLastResetDaily] = "not-a-time"

	e := newTestEngine(t, repo, start)
	e.Load(context.Background())
	st := e.Store()
	if len(st.Daily) != 0 {
		t.Fatalf("corrupt bucket should load empty: %#v", st.Daily)
	}
	if len(st.Weekly) != 1 || st.Weekly[0].ID != "w1" {
		t.Fatalf("intact bucket should load: %#v", st.Weekly)
	}
	if st.DailyResetMode != store.ResetModeRemove {
		t.Fatalf("invalid mode should fall back to remove: %s", st.DailyResetMode)
	}
	if !st.LastResetDaily.IsZero() {
		t.Fatal("malformed boundary should be treated as absent")
	}
}

func TestLoadDiscardsPartiallyDecodableBucket(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	// The first element decodes fine; the second fails mid-array. The whole
	// bucket must load empty, not with the valid prefix plus a zero task.
	repo.data[storage.KeyDailyTasks] = `[` +
		`{"id":"d1","title":"ok","type":"daily","startDate":"2026-08-10","endDate":"2026-08-10","completed":false,"createdAt":"2026-08-10T09:00:00Z","lastUpdated":"2026-08-10T09:00:00Z"},` +
		`{"id":7}]`

	e := newTestEngine(t, repo, start)
	e.Load(context.Background())
	if got := e.Store().Daily; len(got) != 0 {
		t.Fatalf("partially decodable bucket should load empty: %#v", got)
	}
}
