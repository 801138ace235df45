package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcycle/internal/scheduler"
	"github.com/sandeepkv93/taskcycle/internal/sweeper"
	"github.com/sandeepkv93/taskcycle/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Boundary != nil {
		return waitForBoundaryCmd(m.Boundary.C())
	}
	return nil
}

func waitForBoundaryCmd(ch <-chan scheduler.BoundaryEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return BoundaryMsg{Event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)

	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil

	case BoundaryMsg:
		m = m.onBoundary(typed.Event)
		if m.Boundary != nil {
			return m, waitForBoundaryCmd(m.Boundary.C())
		}
		return m, nil

	case SweepDueMsg:
		return m.onSweepDue(typed.Kind), nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}

	if m.Palette.Active {
		return m.handlePaletteKey(msg), nil
	}
	if m.QuickAdd.Active {
		return m.handleQuickAddKey(msg), nil
	}
	if m.Confirm.Active {
		return m.handleConfirmKey(msg), nil
	}

	switch msg.String() {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.Focus()
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active", IsError: false}
		return m, nil
	case m.Keys.Daily:
		m.CurrentView = ViewDaily
		return m, nil
	case m.Keys.Weekly:
		m.CurrentView = ViewWeekly
		return m, nil
	case m.Keys.Monthly:
		m.CurrentView = ViewMonthly
		return m, nil
	case m.Keys.Goals:
		m.CurrentView = ViewGoals
		return m, nil
	case m.Keys.MonthlyGoals:
		m.CurrentView = ViewMonthlyGoals
		return m, nil
	case m.Keys.History:
		m.CurrentView = ViewHistory
		return m, nil
	case m.Keys.Stats:
		m.CurrentView = ViewStats
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	if _, ok := bucketViews[m.CurrentView]; ok {
		return m.handleBucketKey(msg), nil
	}
	if m.CurrentView == ViewMonthlyGoals {
		return m.handleGoalsKey(msg), nil
	}
	if m.CurrentView == ViewHistory {
		return m.handleHistoryKey(msg), nil
	}
	return m, nil
}

// onBoundary catches up every reset the passed boundary implies. The reset
// check is idempotent, so a daily and a monthly event firing back to back at
// month start do the work once.
func (m Model) onBoundary(ev scheduler.BoundaryEvent) Model {
	report, err := m.Engine.CheckAndReset(context.Background(), time.Now())
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Reset Failed", err.Error(), "error")
		return m
	}
	if report.Any() {
		text := fmt.Sprintf("%s boundary passed, buckets reset", ev.Kind)
		m.Status = StatusBar{Text: text, IsError: false}
		m.notify("Reset", text, "info")
		m = m.clampCursors()
	}
	return m
}

func (m Model) onSweepDue(kind sweeper.Kind) Model {
	ctx := context.Background()
	switch kind {
	case sweeper.KindOverdue:
		moved, err := m.Engine.SweepOverdue(ctx, time.Now())
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		if len(moved) > 0 {
			text := fmt.Sprintf("%d overdue task(s) moved to pending", len(moved))
			m.Status = StatusBar{Text: text, IsError: false}
			m.notify("Overdue", text, "warn")
			m = m.clampCursors()
		}
	case sweeper.KindGoals:
		archived, err := m.Goals.CheckGoalStatus(ctx, time.Now())
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		if len(archived) > 0 {
			text := fmt.Sprintf("%d overdue goal(s) archived", len(archived))
			m.Status = StatusBar{Text: text, IsError: false}
			m.notify("Goals", text, "warn")
			m = m.clampCursors()
		}
	}
	return m
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = fmt.Sprintf("status: %s", m.Status.Text)
	}

	main := ""
	switch m.CurrentView {
	case ViewDaily, ViewWeekly, ViewMonthly, ViewGoals:
		main = m.renderBucketView()
	case ViewMonthlyGoals:
		main = m.renderGoalsView()
	case ViewHistory:
		main = m.renderHistoryView()
	case ViewStats:
		main = m.renderStatsView()
	}
	overlay := m.renderConfirmIfActive() + views.RenderCommandPalette(m.Palette.Active, m.Palette.Input) + m.renderHelpIfVisible()

	notificationView := ""
	if n := len(m.Notifications); n > 0 {
		last := m.Notifications[n-1]
		notificationView = views.RenderNotification(last.Level, fmt.Sprintf("%s: %s", last.Title, last.Body))
	}

	return views.RenderApp(views.AppData{
		Header:        fmt.Sprintf("taskcycle | view: %s", m.CurrentView),
		Main:          main,
		Overlay:       overlay,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Notification:  notificationView,
		Footer: fmt.Sprintf("keys: %s-%s buckets | %s goals | %s history | %s stats | / cmd | %s help | %s quit",
			m.Keys.Daily, m.Keys.Goals, m.Keys.MonthlyGoals, m.Keys.History, m.Keys.Stats, m.Keys.Help, m.Keys.Quit),
	})
}

// clampCursors pulls every cursor back into range after a collection shrank
// underneath it.
func (m Model) clampCursors() Model {
	for view, taskType := range bucketViews {
		bucket := *m.Engine.Store().Bucket(taskType)
		if m.Cursors[view] >= len(bucket) {
			m.Cursors[view] = maxInt(0, len(bucket)-1)
		}
	}
	active := m.Engine.Store().ActiveGoals
	if m.Cursors[ViewMonthlyGoals] >= len(active) {
		m.Cursors[ViewMonthlyGoals] = maxInt(0, len(active)-1)
	}
	m.MilestoneCursor = 0
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
