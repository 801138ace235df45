package views

import (
	"strings"
	"testing"
)

func TestRenderAppOverlayOnlyWhenPresent(t *testing.T) {
	base := AppData{
		Header:     "taskcycle | view: Daily",
		Main:       "daily tasks:",
		StatusLine: "status: ready",
		Footer:     "keys",
	}

	plain := RenderApp(base)
	if !strings.Contains(plain, "daily tasks:") {
		t.Fatalf("main pane missing:\n%s", plain)
	}

	base.Overlay = "confirm:\ntask: Water plants"
	withOverlay := RenderApp(base)
	if !strings.Contains(withOverlay, "Water plants") {
		t.Fatalf("overlay pane missing:\n%s", withOverlay)
	}
	if len(withOverlay) <= len(plain) {
		t.Fatal("overlay should widen the frame")
	}
}

func TestRenderAppNotificationLine(t *testing.T) {
	out := RenderApp(AppData{
		Header:       "h",
		Main:         "m",
		Notification: "notification: [INFO] Task: added",
	})
	if !strings.Contains(out, "notification: [INFO] Task: added") {
		t.Fatalf("notification line missing:\n%s", out)
	}
}

func TestRenderBucketPanelMarkers(t *testing.T) {
	out := RenderBucketPanel(BucketPanelData{
		Bucket: "daily",
		Items: []TaskItemData{
			{Title: "done one", Completed: true},
			{Title: "late one", Overdue: true, EndDate: "2026-08-01"},
		},
		Cursor: 1,
	})
	if !strings.Contains(out, "[x] done one") {
		t.Fatalf("completed marker missing:\n%s", out)
	}
	if !strings.Contains(out, "> [ ] late one") {
		t.Fatalf("cursor marker missing:\n%s", out)
	}
	if !strings.Contains(out, "OVERDUE") {
		t.Fatalf("overdue tag missing:\n%s", out)
	}
}

func TestRenderConfirmChoiceLabels(t *testing.T) {
	out := RenderConfirm(ConfirmData{
		Title:   "Water plants",
		Overdue: true,
		Choices: []string{"completed", "pending", "cancelled"},
	})
	for _, label := range []string{"[c]omplete", "[p]ending", "[x]cancel task", "[esc]back"} {
		if !strings.Contains(out, label) {
			t.Fatalf("missing %q in:\n%s", label, out)
		}
	}
}
