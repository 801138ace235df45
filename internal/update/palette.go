package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskcycle/internal/commands"
	"github.com/sandeepkv93/taskcycle/internal/engine"
	"github.com/sandeepkv93/taskcycle/internal/goals"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	ctx := context.Background()
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.Engine.AddTask(ctx, engine.AddTaskInput{
				Title:  a.Title,
				Type:   a.Type,
				Target: a.Target,
			})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added %s task: %s", a.Type, task.Title)}, nil
		},
		Goal: func(a commands.GoalArgs) (commands.Result, error) {
			goal, err := m.Goals.AddGoal(ctx, goals.AddGoalInput{
				Title:       a.Title,
				Description: a.Description,
				WeekTexts:   a.WeekTexts,
			})
			if err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewMonthlyGoals
			return commands.Result{Message: fmt.Sprintf("added goal: %s (%d milestones)", goal.Title, len(goal.Milestones))}, nil
		},
		Mode: func(a commands.ModeArgs) (commands.Result, error) {
			if err := m.Engine.SetResetMode(ctx, a.Mode); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("daily reset mode: %s", a.Mode)}, nil
		},
		Progress: func(a commands.ProgressArgs) (commands.Result, error) {
			task, err := m.Engine.UpdateGoalProgress(ctx, a.ID, a.Value)
			if err != nil {
				return commands.Result{}, err
			}
			if task.ID == "" {
				return commands.Result{Message: "no such goal task"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("%s: %d/%d", task.Title, task.Current, task.Target)}, nil
		},
		History: func(a commands.HistoryArgs) (commands.Result, error) {
			m.HistoryFilter = a.Action
			m.CurrentView = ViewHistory
			return commands.Result{Message: fmt.Sprintf("history filter: %s", historyFilterLabel(a.Action))}, nil
		},
		Export: func(a commands.ExportArgs) (commands.Result, error) {
			if err := m.Engine.WriteSnapshotFile(a.Path); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("snapshot written to %s", a.Path)}, nil
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			if err := m.Engine.ReadSnapshotFile(ctx, a.Path); err != nil {
				return commands.Result{}, err
			}
			m = m.clampCursors()
			return commands.Result{Message: fmt.Sprintf("snapshot imported from %s", a.Path)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
		m.notify("Command", res.Message, "info")
	}

	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	return m
}
