// Package views renders the screens as plain strings. All state lives in the
// update package; functions here only format what they are handed.
package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// AppData is the full frame: one main pane for the current view, an overlay
// pane that exists only while a dialog, the palette or the help panel is
// open, and the status, notification and footer lines under them.
type AppData struct {
	Header        string
	Main          string
	Overlay       string
	StatusLine    string
	StatusIsError bool
	Notification  string
	Footer        string
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mainStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(64)
	overlayStyle = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1).Width(44)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func RenderApp(data AppData) string {
	body := mainStyle.Render(data.Main)
	if data.Overlay != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, overlayStyle.Render(data.Overlay))
	}

	status := statusStyle.Render(data.StatusLine)
	if data.StatusIsError {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		body,
		status,
	}
	if data.Notification != "" {
		lines = append(lines, noteStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
