// Package update holds the elm-style TUI model. All store mutations run on
// this single update loop; the scheduler and sweeper only send messages into
// it.
package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/taskcycle/internal/engine"
	"github.com/sandeepkv93/taskcycle/internal/goals"
	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/scheduler"
	"github.com/sandeepkv93/taskcycle/internal/sweeper"
)

type View string

const (
	ViewDaily        View = "Daily"
	ViewWeekly       View = "Weekly"
	ViewMonthly      View = "Monthly"
	ViewGoals        View = "Goals"
	ViewMonthlyGoals View = "MonthlyGoals"
	ViewHistory      View = "History"
	ViewStats        View = "Stats"
)

// bucketViews maps the four task views to their bucket type.
var bucketViews = map[View]model.TaskType{
	ViewDaily:   model.TypeDaily,
	ViewWeekly:  model.TypeWeekly,
	ViewMonthly: model.TypeMonthly,
	ViewGoals:   model.TypeGoal,
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Daily        string
	Weekly       string
	Monthly      string
	Goals        string
	MonthlyGoals string
	History      string
	Stats        string
	Help         string
	Quit         string
}

// ConfirmState holds an in-flight completion confirmation. Nothing is
// mutated until a choice key is pressed.
type ConfirmState struct {
	Active  bool
	Task    model.Task
	Overdue bool
	Choices []engine.Choice
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type QuickAddState struct {
	Active bool
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

const notificationCap = 20

type Model struct {
	Engine   *engine.Engine
	Goals    *goals.Manager
	Boundary *scheduler.Engine

	CurrentView     View
	Cursors         map[View]int
	MilestoneCursor int
	HistoryFilter   model.HistoryAction

	Confirm       ConfirmState
	Palette       CommandPaletteState
	QuickAdd      QuickAddState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	quickAddInput textinput.Model
	commandInput  textinput.Model
	helpModel     help.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// BoundaryMsg arrives when a calendar boundary passes.
type BoundaryMsg struct {
	Event scheduler.BoundaryEvent
}

// SweepDueMsg arrives when an interval check is due.
type SweepDueMsg struct {
	Kind sweeper.Kind
}

func NewModel(eng *engine.Engine, goalManager *goals.Manager, boundary *scheduler.Engine) Model {
	quickAdd := textinput.New()
	quickAdd.Placeholder = "task title (goal: title=target)"
	command := textinput.New()
	command.Placeholder = "add daily water the plants"

	m := Model{
		Engine:      eng,
		Goals:       goalManager,
		Boundary:    boundary,
		CurrentView: ViewDaily,
		Cursors: map[View]int{
			ViewDaily:        0,
			ViewWeekly:       0,
			ViewMonthly:      0,
			ViewGoals:        0,
			ViewMonthlyGoals: 0,
		},
		Keys: GlobalKeyMap{
			Daily:        "1",
			Weekly:       "2",
			Monthly:      "3",
			Goals:        "4",
			MonthlyGoals: "5",
			History:      "6",
			Stats:        "7",
			Help:         "?",
			Quit:         "q",
		},
		quickAddInput: quickAdd,
		commandInput:  command,
		helpModel:     help.New(),
	}
	return m
}

func (m *Model) notify(title, body, level string) {
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now(),
	})
	if len(m.Notifications) > notificationCap {
		m.Notifications = m.Notifications[len(m.Notifications)-notificationCap:]
	}
}

func levelFromError(isError bool) string {
	if isError {
		return "error"
	}
	return "info"
}

func isKnownView(v View) bool {
	switch v {
	case ViewDaily, ViewWeekly, ViewMonthly, ViewGoals, ViewMonthlyGoals, ViewHistory, ViewStats:
		return true
	default:
		return false
	}
}
