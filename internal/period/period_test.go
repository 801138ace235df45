package period

import (
	"testing"
	"time"

	"github.com/sandeepkv93/taskcycle/internal/model"
)

func TestWeekStartMondayAnchor(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		// Wednesday
		{time.Date(2026, 8, 12, 15, 30, 0, 0, time.UTC), time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)},
		// Sunday belongs to the week starting the previous Monday
		{time.Date(2026, 8, 16, 1, 0, 0, 0, time.UTC), time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)},
		// Monday is its own week start
		{time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := WeekStart(tc.in); !got.Equal(tc.want) {
			t.Fatalf("WeekStart(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestMonthBoundaries(t *testing.T) {
	now := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	if got := MonthStart(now); !got.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month start: %s", got)
	}
	if got := MonthEnd(now); !got.Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month end: %s", got)
	}
	if got := NextMonthStart(now); !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next month start: %s", got)
	}
}

func TestNextDayStart(t *testing.T) {
	now := time.Date(2026, 8, 10, 23, 59, 59, 0, time.UTC)
	if got := NextDayStart(now); !got.Equal(time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next day start: %s", got)
	}
}

func TestDefaultRangePerType(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	start, end := DefaultRange(model.TypeDaily, now)
	if start.String() != "2026-08-10" || end.String() != "2026-08-10" {
		t.Fatalf("unexpected daily range: %s - %s", start, end)
	}

	start, end = DefaultRange(model.TypeWeekly, now)
	if start.String() != "2026-08-10" || end.String() != "2026-08-16" {
		t.Fatalf("unexpected weekly range: %s - %s", start, end)
	}

	start, end = DefaultRange(model.TypeGoal, now)
	if start.String() != "2026-08-10" || end.String() != "2026-08-31" {
		t.Fatalf("unexpected goal range: %s - %s", start, end)
	}
}
