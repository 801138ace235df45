package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/taskcycle/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

const helpGuide = `# taskcycle

Tasks live in four buckets. Daily buckets reset at midnight, weekly on
Monday, monthly and goals on the first of the month. Tasks that pass their
end date move to the pending list; everything is recorded in the history log.`

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	plain := []string{views.RenderMarkdown(helpGuide)}
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Daily, Action: "daily tasks"},
		{Key: m.Keys.Weekly, Action: "weekly tasks"},
		{Key: m.Keys.Monthly, Action: "monthly tasks"},
		{Key: m.Keys.Goals, Action: "goal tasks"},
		{Key: m.Keys.MonthlyGoals, Action: "monthly goals"},
		{Key: m.Keys.History, Action: "history"},
		{Key: m.Keys.Stats, Action: "statistics"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewDaily, ViewWeekly, ViewMonthly:
		out := []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "space", Action: "toggle completion"},
			{Key: "a", Action: "quick add"},
			{Key: "d", Action: "delete task"},
		}
		if m.CurrentView == ViewDaily {
			out = append(out, KeyBinding{Key: "m", Action: "cycle reset mode"})
		}
		return out
	case ViewGoals:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "+/-", Action: "adjust progress"},
			{Key: "a", Action: "quick add (title=target)"},
			{Key: "d", Action: "delete task"},
		}
	case ViewMonthlyGoals:
		return []KeyBinding{
			{Key: "j/k", Action: "move goal cursor"},
			{Key: "h/l", Action: "move milestone cursor"},
			{Key: "space", Action: "toggle milestone"},
			{Key: "A", Action: "archive goal"},
			{Key: "c", Action: "check overdue goals"},
			{Key: "d", Action: "delete goal"},
		}
	case ViewHistory:
		return []KeyBinding{
			{Key: "f", Action: "cycle action filter"},
			{Key: "C", Action: "clear history"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
