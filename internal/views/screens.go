package views

import (
	"fmt"
	"strings"
)

type TaskItemData struct {
	ID        string
	Title     string
	Completed bool
	Overdue   bool
	EndDate   string
	Progress  string
}

type BucketPanelData struct {
	Bucket       string
	QuickAddView string
	Items        []TaskItemData
	Cursor       int
	ResetMode    string
}

type ConfirmData struct {
	Title   string
	Overdue bool
	Choices []string
}

type MilestoneData struct {
	Week      int
	Text      string
	Completed bool
	DueDate   string
}

type GoalItemData struct {
	ID         string
	Title      string
	Progress   int
	Completed  bool
	Overdue    bool
	EndDate    string
	Milestones []MilestoneData
}

type GoalsPanelData struct {
	Active          []GoalItemData
	Archived        []GoalItemData
	Cursor          int
	MilestoneCursor int
}

type HistoryItemData struct {
	Action    string
	Title     string
	Type      string
	Timestamp string
	Details   string
}

type HistoryPanelData struct {
	Items  []HistoryItemData
	Filter string
}

type StatsRowData struct {
	Bucket    string
	Total     int
	Completed int
	Pending   int
}

type StatsPanelData struct {
	Rows          []StatsRowData
	PendingTasks  int
	GoalsActive   int
	GoalsOverdue  int
	GoalsArchived int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderBucketPanel(data BucketPanelData) string {
	var b strings.Builder
	b.WriteString(data.Bucket + " tasks:\n")
	if data.ResetMode != "" {
		b.WriteString(fmt.Sprintf("reset-mode: %s\n", data.ResetMode))
	}
	if data.QuickAddView != "" {
		b.WriteString(data.QuickAddView + "\n")
	}
	b.WriteString("actions: [j/k]move [space]toggle [a]add [d]delete\n")
	if len(data.Items) == 0 {
		b.WriteString("  (empty)")
		return strings.TrimSpace(b.String())
	}
	for i, item := range data.Items {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		check := "[ ]"
		if item.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", cursor, check, item.Title)
		if item.Progress != "" {
			line += " " + item.Progress
		}
		if item.EndDate != "" {
			line += " until:" + item.EndDate
		}
		if item.Overdue {
			line = overdueStyle.Render(line + " OVERDUE")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderConfirm(data ConfirmData) string {
	var b strings.Builder
	b.WriteString("confirm:\n")
	b.WriteString(fmt.Sprintf("task: %s\n", data.Title))
	if data.Overdue {
		b.WriteString(overdueStyle.Render("this task is overdue") + "\n")
	}
	b.WriteString("choose: ")
	labels := make([]string, 0, len(data.Choices))
	for _, choice := range data.Choices {
		switch choice {
		case "completed":
			labels = append(labels, "[c]omplete")
		case "pending":
			labels = append(labels, "[p]ending")
		case "cancelled":
			labels = append(labels, "[x]cancel task")
		}
	}
	labels = append(labels, "[esc]back")
	b.WriteString(strings.Join(labels, " "))
	return b.String()
}

func RenderGoalsPanel(data GoalsPanelData) string {
	var b strings.Builder
	b.WriteString("monthly goals:\n")
	b.WriteString("actions: [j/k]goal [h/l]milestone [space]toggle [A]archive [d]delete\n")
	if len(data.Active) == 0 {
		b.WriteString("  (no active goals)\n")
	}
	for i, goal := range data.Active {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %s (%d%%)", cursor, goal.Title, goal.Progress)
		if goal.Completed {
			line += " DONE"
		}
		if goal.Overdue {
			line = overdueStyle.Render(line + " OVERDUE")
		}
		b.WriteString(line + "\n")
		if i != data.Cursor {
			continue
		}
		for j, ms := range goal.Milestones {
			msCursor := " "
			if j == data.MilestoneCursor {
				msCursor = ">"
			}
			check := "[ ]"
			if ms.Completed {
				check = "[x]"
			}
			b.WriteString(fmt.Sprintf("  %s %s week %d: %s (due %s)\n", msCursor, check, ms.Week, ms.Text, ms.DueDate))
		}
	}
	if len(data.Archived) > 0 {
		b.WriteString("\narchived:\n")
		for _, goal := range data.Archived {
			tag := "done"
			if !goal.Completed {
				tag = "pending"
			}
			b.WriteString(fmt.Sprintf("  %s (%d%%, %s)\n", goal.Title, goal.Progress, tag))
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderHistoryPanel(data HistoryPanelData) string {
	var b strings.Builder
	b.WriteString("history:\n")
	if data.Filter != "" {
		b.WriteString(fmt.Sprintf("filter: %s\n", data.Filter))
	}
	b.WriteString("actions: [f]cycle filter [C]clear log\n")
	if len(data.Items) == 0 {
		b.WriteString("  (no entries)")
		return b.String()
	}
	for _, item := range data.Items {
		b.WriteString(fmt.Sprintf("%s [%s] %s (%s)", item.Timestamp, strings.ToUpper(item.Action), item.Title, item.Type))
		if item.Details != "" {
			b.WriteString(" - " + item.Details)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("statistics:\n")
	for _, row := range data.Rows {
		b.WriteString(fmt.Sprintf("%-8s total:%-3d done:%-3d open:%-3d\n", row.Bucket, row.Total, row.Completed, row.Pending))
	}
	b.WriteString(fmt.Sprintf("\npending list: %d task(s)\n", data.PendingTasks))
	b.WriteString(fmt.Sprintf("goals: %d active, %d overdue, %d archived", data.GoalsActive, data.GoalsOverdue, data.GoalsArchived))
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
