package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/views"
)

// historyFilterCycle orders the filter states the f key rotates through. The
// empty action means no filter.
var historyFilterCycle = []model.HistoryAction{
	"",
	model.ActionAdded,
	model.ActionCompleted,
	model.ActionCancelled,
	model.ActionMovedToPending,
	model.ActionDeleted,
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "f":
		for i, action := range historyFilterCycle {
			if action == m.HistoryFilter {
				m.HistoryFilter = historyFilterCycle[(i+1)%len(historyFilterCycle)]
				break
			}
		}
		m.Status = StatusBar{Text: fmt.Sprintf("history filter: %s", historyFilterLabel(m.HistoryFilter)), IsError: false}
	case "C":
		if err := m.Engine.ClearHistory(context.Background()); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		m.Status = StatusBar{Text: "history cleared", IsError: false}
	}
	return m
}

func (m Model) renderHistoryView() string {
	var entries []model.HistoryEntry
	if m.HistoryFilter == "" {
		entries = m.Engine.RecentHistory(0)
	} else {
		entries = m.Engine.HistoryByAction(m.HistoryFilter, 0)
	}

	items := make([]views.HistoryItemData, 0, len(entries))
	for _, entry := range entries {
		items = append(items, views.HistoryItemData{
			Action:    string(entry.Action),
			Title:     entry.Task.Title,
			Type:      string(entry.Task.Type),
			Timestamp: entry.Timestamp.Format("2006-01-02 15:04"),
			Details:   entry.Details,
		})
	}
	return views.RenderHistoryPanel(views.HistoryPanelData{
		Items:  items,
		Filter: string(m.HistoryFilter),
	})
}

func (m Model) renderStatsView() string {
	stats := m.Engine.Statistics()
	rows := make([]views.StatsRowData, 0, len(stats))
	for _, taskType := range model.TaskTypes() {
		s := stats[taskType]
		rows = append(rows, views.StatsRowData{
			Bucket:    string(taskType),
			Total:     s.Total,
			Completed: s.Completed,
			Pending:   s.Pending,
		})
	}
	overview := m.Goals.Overview(timeNow())
	return views.RenderStatsPanel(views.StatsPanelData{
		Rows:          rows,
		PendingTasks:  m.Engine.PendingCount(),
		GoalsActive:   overview.Active,
		GoalsOverdue:  overview.Overdue,
		GoalsArchived: overview.Archived,
	})
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func historyFilterLabel(action model.HistoryAction) string {
	if action == "" {
		return "all"
	}
	return fmt.Sprintf("%s only", action)
}
