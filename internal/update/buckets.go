package update

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcycle/internal/engine"
	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/store"
	"github.com/sandeepkv93/taskcycle/internal/views"
)

func (m Model) currentBucketType() model.TaskType {
	if t, ok := bucketViews[m.CurrentView]; ok {
		return t
	}
	return model.TypeDaily
}

func (m Model) currentBucket() []model.Task {
	return *m.Engine.Store().Bucket(m.currentBucketType())
}

func (m Model) selectedTask() (model.Task, bool) {
	bucket := m.currentBucket()
	cursor := m.Cursors[m.CurrentView]
	if cursor < 0 || cursor >= len(bucket) {
		return model.Task{}, false
	}
	return bucket[cursor], true
}

func (m Model) handleBucketKey(msg tea.KeyMsg) Model {
	ctx := context.Background()
	switch msg.String() {
	case "j", "down":
		bucket := m.currentBucket()
		if m.Cursors[m.CurrentView] < len(bucket)-1 {
			m.Cursors[m.CurrentView]++
		}
	case "k", "up":
		if m.Cursors[m.CurrentView] > 0 {
			m.Cursors[m.CurrentView]--
		}
	case "a":
		m.QuickAdd.Active = true
		m.quickAddInput.Focus()
		m.quickAddInput.SetValue("")
		m.Status = StatusBar{Text: fmt.Sprintf("adding %s task", m.currentBucketType()), IsError: false}
	case " ", "enter":
		task, ok := m.selectedTask()
		if !ok {
			return m
		}
		result, err := m.Engine.Toggle(ctx, task.ID, m.currentBucketType())
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		switch result.Kind {
		case engine.ToggleChoose:
			m.Confirm = ConfirmState{Active: true, Task: result.Task, Overdue: result.Overdue, Choices: result.Choices}
		case engine.ToggleReverted:
			m.Status = StatusBar{Text: fmt.Sprintf("reverted: %s", result.Task.Title), IsError: false}
		case engine.ToggleNone:
			m.Status = StatusBar{Text: "task no longer exists", IsError: false}
			m = m.clampCursors()
		}
	case "d":
		task, ok := m.selectedTask()
		if !ok {
			return m
		}
		if err := m.Engine.DeleteTask(ctx, task.ID, m.currentBucketType()); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s", task.Title), IsError: false}
		m = m.clampCursors()
	case "+", "=":
		m = m.bumpGoalProgress(ctx, 1)
	case "-":
		m = m.bumpGoalProgress(ctx, -1)
	case "m":
		if m.CurrentView == ViewDaily {
			m = m.cycleResetMode(ctx)
		}
	}
	return m
}

func (m Model) bumpGoalProgress(ctx context.Context, delta int) Model {
	if m.CurrentView != ViewGoals {
		return m
	}
	task, ok := m.selectedTask()
	if !ok || !task.IsQuantifiable {
		return m
	}
	updated, err := m.Engine.UpdateGoalProgress(ctx, task.ID, task.Current+delta)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	if updated.ID == "" {
		m = m.clampCursors()
		return m
	}
	text := fmt.Sprintf("%s: %d/%d", updated.Title, updated.Current, updated.Target)
	if updated.Completed && !task.Completed {
		text += " - target reached"
		m.notify("Goal", text, "info")
	}
	m.Status = StatusBar{Text: text, IsError: false}
	return m
}

func (m Model) cycleResetMode(ctx context.Context) Model {
	next := store.ResetModeKeep
	if m.Engine.ResetMode() == store.ResetModeKeep {
		next = store.ResetModeRemove
	}
	if err := m.Engine.SetResetMode(ctx, next); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("daily reset mode: %s", next), IsError: false}
	return m
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) Model {
	choiceByKey := map[string]engine.Choice{
		"c": engine.ChoiceCompleted,
		"p": engine.ChoicePending,
		"x": engine.ChoiceCancelled,
	}
	key := msg.String()
	if key == "esc" {
		m.Confirm = ConfirmState{}
		m.Status = StatusBar{Text: "confirmation cancelled", IsError: false}
		return m
	}
	choice, ok := choiceByKey[key]
	if !ok {
		return m
	}
	offered := false
	for _, c := range m.Confirm.Choices {
		if c == choice {
			offered = true
			break
		}
	}
	if !offered {
		return m
	}

	task := m.Confirm.Task
	m.Confirm = ConfirmState{}
	if err := m.Engine.ConfirmCompletion(context.Background(), task.ID, task.Type, choice); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", choice, task.Title), IsError: false}
	m.notify("Task", m.Status.Text, "info")
	return m.clampCursors()
}

// handleQuickAddKey drives the inline add input. A goal view entry takes the
// form "title=target".
func (m Model) handleQuickAddKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.QuickAdd.Active = false
		m.quickAddInput.Blur()
		m.quickAddInput.SetValue("")
		return m
	case "enter":
		raw := strings.TrimSpace(m.quickAddInput.Value())
		m.QuickAdd.Active = false
		m.quickAddInput.Blur()
		m.quickAddInput.SetValue("")
		if raw == "" {
			return m
		}
		return m.quickAddTask(raw)
	default:
		var cmd tea.Cmd
		m.quickAddInput, cmd = m.quickAddInput.Update(msg)
		_ = cmd
		return m
	}
}

func (m Model) quickAddTask(raw string) Model {
	taskType := m.currentBucketType()
	input := engine.AddTaskInput{Title: raw, Type: taskType}
	if taskType == model.TypeGoal {
		eq := strings.LastIndex(raw, "=")
		if eq <= 0 {
			m.Status = StatusBar{Text: "goal tasks need a target, e.g. read pages=20", IsError: true}
			return m
		}
		target, err := strconv.Atoi(strings.TrimSpace(raw[eq+1:]))
		if err != nil || target <= 0 {
			m.Status = StatusBar{Text: "goal target must be a positive number", IsError: true}
			return m
		}
		input.Title = strings.TrimSpace(raw[:eq])
		input.Target = target
	}
	task, err := m.Engine.AddTask(context.Background(), input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("added: %s", task.Title), IsError: false}
	m.notify("Task", m.Status.Text, "info")
	return m
}

func (m Model) renderBucketView() string {
	taskType := m.currentBucketType()
	bucket := m.currentBucket()
	now := timeNow()

	items := make([]views.TaskItemData, 0, len(bucket))
	for _, task := range bucket {
		item := views.TaskItemData{
			ID:        task.ID,
			Title:     task.Title,
			Completed: task.Completed,
			Overdue:   task.IsOverdue(now),
			EndDate:   task.EndDate.String(),
		}
		if task.IsQuantifiable {
			item.Progress = fmt.Sprintf("(%d/%d)", task.Current, task.Target)
		}
		items = append(items, item)
	}

	quickAdd := ""
	if m.QuickAdd.Active {
		quickAdd = "add: " + m.quickAddInput.View()
	}
	resetMode := ""
	if m.CurrentView == ViewDaily {
		resetMode = string(m.Engine.ResetMode())
	}
	return views.RenderBucketPanel(views.BucketPanelData{
		Bucket:       string(taskType),
		QuickAddView: quickAdd,
		Items:        items,
		Cursor:       m.Cursors[m.CurrentView],
		ResetMode:    resetMode,
	})
}

func (m Model) renderConfirmIfActive() string {
	if !m.Confirm.Active {
		return ""
	}
	choices := make([]string, 0, len(m.Confirm.Choices))
	for _, c := range m.Confirm.Choices {
		choices = append(choices, string(c))
	}
	return views.RenderConfirm(views.ConfirmData{
		Title:   m.Confirm.Task.Title,
		Overdue: m.Confirm.Overdue,
		Choices: choices,
	})
}
