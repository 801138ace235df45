package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/views"
)

func (m Model) selectedGoal() (model.MonthlyGoal, bool) {
	active := m.Engine.Store().ActiveGoals
	cursor := m.Cursors[ViewMonthlyGoals]
	if cursor < 0 || cursor >= len(active) {
		return model.MonthlyGoal{}, false
	}
	return active[cursor], true
}

func (m Model) handleGoalsKey(msg tea.KeyMsg) Model {
	ctx := context.Background()
	switch msg.String() {
	case "j", "down":
		if m.Cursors[ViewMonthlyGoals] < len(m.Engine.Store().ActiveGoals)-1 {
			m.Cursors[ViewMonthlyGoals]++
			m.MilestoneCursor = 0
		}
	case "k", "up":
		if m.Cursors[ViewMonthlyGoals] > 0 {
			m.Cursors[ViewMonthlyGoals]--
			m.MilestoneCursor = 0
		}
	case "l", "right":
		if goal, ok := m.selectedGoal(); ok && m.MilestoneCursor < len(goal.Milestones)-1 {
			m.MilestoneCursor++
		}
	case "h", "left":
		if m.MilestoneCursor > 0 {
			m.MilestoneCursor--
		}
	case " ", "enter":
		goal, ok := m.selectedGoal()
		if !ok {
			return m
		}
		updated, err := m.Goals.ToggleMilestone(ctx, goal.ID, m.MilestoneCursor)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		if updated.ID == "" {
			m = m.clampCursors()
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%s: %d%%", updated.Title, updated.Progress), IsError: false}
		if updated.Completed && !goal.Completed {
			m.notify("Goal", fmt.Sprintf("goal completed: %s", updated.Title), "info")
		}
	case "A":
		goal, ok := m.selectedGoal()
		if !ok {
			return m
		}
		archived, err := m.Goals.ArchiveGoal(ctx, goal.ID)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		if archived.ID != "" {
			m.Status = StatusBar{Text: fmt.Sprintf("archived: %s", archived.Title), IsError: false}
		}
		m = m.clampCursors()
	case "d":
		goal, ok := m.selectedGoal()
		if !ok {
			return m
		}
		if err := m.Goals.DeleteGoal(ctx, goal.ID, false); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("deleted goal: %s", goal.Title), IsError: false}
		m = m.clampCursors()
	case "c":
		archived, err := m.Goals.CheckGoalStatus(ctx, timeNow())
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("goal check: %d archived", len(archived)), IsError: false}
		m = m.clampCursors()
	}
	return m
}

func (m Model) renderGoalsView() string {
	now := timeNow()
	st := m.Engine.Store()

	active := make([]views.GoalItemData, 0, len(st.ActiveGoals))
	for _, goal := range st.ActiveGoals {
		active = append(active, goalItemData(goal, now))
	}
	archived := make([]views.GoalItemData, 0, len(st.ArchivedGoals))
	for _, goal := range st.ArchivedGoals {
		archived = append(archived, goalItemData(goal, now))
	}
	return views.RenderGoalsPanel(views.GoalsPanelData{
		Active:          active,
		Archived:        archived,
		Cursor:          m.Cursors[ViewMonthlyGoals],
		MilestoneCursor: m.MilestoneCursor,
	})
}

func goalItemData(goal model.MonthlyGoal, now time.Time) views.GoalItemData {
	milestones := make([]views.MilestoneData, 0, len(goal.Milestones))
	for _, ms := range goal.Milestones {
		milestones = append(milestones, views.MilestoneData{
			Week:      ms.Week,
			Text:      ms.Text,
			Completed: ms.Completed,
			DueDate:   ms.DueDate.String(),
		})
	}
	return views.GoalItemData{
		ID:         goal.ID,
		Title:      goal.Title,
		Progress:   goal.Progress,
		Completed:  goal.Completed,
		Overdue:    goal.IsOverdue(now),
		EndDate:    goal.EndDate.String(),
		Milestones: milestones,
	}
}
