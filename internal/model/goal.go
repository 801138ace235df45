package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const maxMilestoneWeeks = 4

var ErrInvalidMilestoneWeek = errors.New("model: milestone week outside 1-4")

// Milestone is one weekly step of a monthly goal.
type Milestone struct {
	Week      int    `json:"week"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	DueDate   Date   `json:"dueDate"`
}

// MonthlyGoal is a milestone-driven goal, distinct from the quantifiable
// goal task type. Progress is always recomputed from its milestones.
type MonthlyGoal struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartDate   Date        `json:"startDate"`
	EndDate     Date        `json:"endDate"`
	Milestones  []Milestone `json:"milestones"`
	Progress    int         `json:"progress"`
	Completed   bool        `json:"completed"`

	Status        string     `json:"status,omitempty"`
	PendingReason string     `json:"pendingReason,omitempty"`
	ArchivedAt    *time.Time `json:"archivedAt,omitempty"`

	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (g MonthlyGoal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return errors.New("model: goal id is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		return errors.New("model: goal title is required")
	}
	if strings.TrimSpace(g.Description) == "" {
		return errors.New("model: goal description is required")
	}
	if g.EndDate.Before(g.StartDate) {
		return fmt.Errorf("%w: start %s, end %s", ErrInvalidRange, g.StartDate, g.EndDate)
	}
	for _, m := range g.Milestones {
		if m.Week < 1 || m.Week > maxMilestoneWeeks {
			return fmt.Errorf("%w: %d", ErrInvalidMilestoneWeek, m.Week)
		}
	}
	return nil
}

// BuildMilestones turns up to four week texts into milestones whose due dates
// land one week apart after the goal's start date. Blank weeks are skipped.
func BuildMilestones(start Date, weekTexts []string) []Milestone {
	out := make([]Milestone, 0, maxMilestoneWeeks)
	for i, text := range weekTexts {
		if i >= maxMilestoneWeeks {
			break
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		week := i + 1
		out = append(out, Milestone{
			Week:    week,
			Text:    text,
			DueDate: start.AddDays(7 * week),
		})
	}
	return out
}

// RecalcProgress recomputes progress as the rounded completed-milestone
// percentage and derives the completed flag from it.
func (g *MonthlyGoal) RecalcProgress() {
	if len(g.Milestones) == 0 {
		g.Progress = 0
		g.Completed = false
		return
	}
	done := 0
	for _, m := range g.Milestones {
		if m.Completed {
			done++
		}
	}
	g.Progress = int(math.Round(100 * float64(done) / float64(len(g.Milestones))))
	g.Completed = g.Progress == 100
}

// IsOverdue reports whether the goal's inclusive end date has fully passed
// without completion.
func (g MonthlyGoal) IsOverdue(now time.Time) bool {
	if g.Completed {
		return false
	}
	return now.After(g.EndDate.Next().Time)
}
