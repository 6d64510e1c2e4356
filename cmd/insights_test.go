package cmd

import (
	"strings"
	"testing"

	"github.com/chris-regnier/focusflow/internal/analytics"
)

func TestInsightsJSON(t *testing.T) {
	setupTestEnv(t)

	mustRun(t, "task", "add", "Open")
	var done struct{ ID string }
	runJSON(t, &done, "task", "add", "Finished")
	mustRun(t, "task", "done", done.ID)
	mustRun(t, "timer", "log", "--duration", "25m", "--at", "today 00:00")
	mustRun(t, "note", "new", "Idea", "--pin")

	var d analytics.Dashboard
	runJSON(t, &d, "insights", "--days", "14")
	if d.Days != 14 || len(d.Focus.Daily) != 14 {
		t.Errorf("days = %d, series = %d, want 14", d.Days, len(d.Focus.Daily))
	}
	if d.Tasks.Total != 2 || d.Tasks.Done != 1 {
		t.Errorf("tasks = %+v", d.Tasks)
	}
	if d.Focus.TodayMinutes != 25 || d.Focus.GoalMinutes != 120 {
		t.Errorf("focus today = %d/%d, want 25/120", d.Focus.TodayMinutes, d.Focus.GoalMinutes)
	}
	if d.Notes.Total != 1 || d.Notes.Pinned != 1 {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestBareRootShowsDashboard(t *testing.T) {
	setupTestEnv(t)

	out := mustRun(t)
	if strings.TrimSpace(out) == "" {
		t.Fatal("expected dashboard output")
	}
	if !strings.Contains(strings.ToLower(out), "focus") {
		t.Errorf("dashboard output:\n%s", out)
	}
}

func TestInsightsUsesStoredGoal(t *testing.T) {
	setupTestEnv(t)

	mustRun(t, "settings", "set", "focus.daily_goal_minutes", "45")
	var d analytics.Dashboard
	runJSON(t, &d, "insights")
	if d.Focus.GoalMinutes != 45 {
		t.Errorf("goal = %d, want 45", d.Focus.GoalMinutes)
	}
}
