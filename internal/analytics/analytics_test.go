package analytics

import (
	"testing"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/task"
	"github.com/google/go-cmp/cmp"
)

var now = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

func focus(start time.Time, minutes int, completed bool) pomodoro.Session {
	d := time.Duration(minutes) * time.Minute
	return pomodoro.NewSession(pomodoro.PhaseFocus, "", start, start.Add(d), 25*time.Minute, d, completed)
}

func day(offset int, hour int) time.Time {
	return time.Date(2025, 6, 10+offset, hour, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestTaskStats(t *testing.T) {
	tasks := []task.Task{
		{Title: "a", Status: task.StatusTodo, Priority: task.PriorityHigh, Due: ptr(day(-2, 9))},
		{Title: "b", Status: task.StatusInProgress, Priority: task.PriorityMedium, Due: ptr(day(0, 18))},
		{Title: "c", Status: task.StatusDone, Priority: task.PriorityHigh, CompletedAt: ptr(day(-1, 10)), Due: ptr(day(-5, 9))},
		{Title: "d", Status: task.StatusDone, Priority: task.PriorityLow, CompletedAt: ptr(day(-30, 10))},
	}
	got := Build(Input{Tasks: tasks, Now: now, Days: 3}).Tasks

	if got.Total != 4 || got.Open != 2 || got.InProgress != 1 || got.Done != 2 {
		t.Errorf("counts = %+v", got)
	}
	if got.Overdue != 1 {
		t.Errorf("Overdue = %d, want 1 (done tasks are never overdue)", got.Overdue)
	}
	if got.DueToday != 1 {
		t.Errorf("DueToday = %d, want 1", got.DueToday)
	}
	if got.CompletionRate != 0.5 {
		t.Errorf("CompletionRate = %v, want 0.5", got.CompletionRate)
	}
	wantPriority := map[task.Priority]int{task.PriorityHigh: 2, task.PriorityMedium: 1, task.PriorityLow: 1}
	if diff := cmp.Diff(wantPriority, got.ByPriority); diff != "" {
		t.Errorf("ByPriority mismatch (-want +got):\n%s", diff)
	}
	wantDays := []Day{{Date: "2025-06-08"}, {Date: "2025-06-09", Count: 1}, {Date: "2025-06-10"}}
	if diff := cmp.Diff(wantDays, got.CompletedPerDay); diff != "" {
		t.Errorf("CompletedPerDay mismatch (-want +got):\n%s", diff)
	}
}

func TestFocusStats(t *testing.T) {
	sessions := []pomodoro.Session{
		focus(day(0, 9), 25, true),
		focus(day(0, 10), 25, true),
		focus(day(0, 11), 10, false),
		focus(day(-1, 9), 25, true),
		focus(day(-2, 9), 50, true),
		focus(day(-20, 9), 25, true),
		focus(day(-19, 9), 25, true),
		focus(day(-18, 9), 25, true),
		focus(day(-17, 9), 25, true),
		pomodoro.NewSession(pomodoro.PhaseShortBreak, "", day(0, 9).Add(25*time.Minute), day(0, 9).Add(30*time.Minute), 5*time.Minute, 5*time.Minute, true),
	}
	got := Build(Input{Sessions: sessions, Now: now, Days: 7, DailyGoalMinutes: 100}).Focus

	if got.Sessions != 4 || got.Minutes != 125 {
		t.Errorf("Sessions = %d, Minutes = %d, want 4 and 125", got.Sessions, got.Minutes)
	}
	if got.Interrupted != 1 || got.BreakMinutes != 5 {
		t.Errorf("Interrupted = %d, BreakMinutes = %d", got.Interrupted, got.BreakMinutes)
	}
	if got.CurrentStreak != 3 || got.LongestStreak != 4 {
		t.Errorf("streaks = %d current, %d longest; want 3 and 4", got.CurrentStreak, got.LongestStreak)
	}
	if got.BestDay.Date != "2025-06-08" || got.BestDay.Minutes != 50 {
		t.Errorf("BestDay = %+v", got.BestDay)
	}
	if got.TodayMinutes != 50 || got.GoalProgress != 0.5 {
		t.Errorf("TodayMinutes = %d, GoalProgress = %v", got.TodayMinutes, got.GoalProgress)
	}
	if want := 125.0 / 3; got.AveragePerActiveDay != want {
		t.Errorf("AveragePerActiveDay = %v, want %v", got.AveragePerActiveDay, want)
	}
	if len(got.Daily) != 7 || got.Daily[6].Date != "2025-06-10" || got.Daily[6].Count != 2 {
		t.Errorf("Daily = %+v", got.Daily)
	}
}

func TestCurrentStreak(t *testing.T) {
	today := day(0, 12)
	tests := []struct {
		name   string
		active []string
		want   int
	}{
		{"none", nil, 0},
		{"today only", []string{"2025-06-10"}, 1},
		{"ends yesterday", []string{"2025-06-09", "2025-06-08"}, 2},
		{"gap before yesterday", []string{"2025-06-08"}, 0},
		{"through today", []string{"2025-06-10", "2025-06-09", "2025-06-08", "2025-06-06"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active := make(map[string]bool)
			for _, d := range tt.active {
				active[d] = true
			}
			if got := CurrentStreak(active, today); got != tt.want {
				t.Errorf("CurrentStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNoteStats(t *testing.T) {
	folders := []note.Folder{{ID: "f1", Name: "Work"}, {ID: "f2", Name: "Meetings", ParentID: "f1"}}
	notes := []note.Note{
		{Title: "a", Content: "one two three", FolderID: "f2", Pinned: true},
		{Title: "b", Content: "four", FolderID: "f2"},
		{Title: "c", Content: "", FolderID: ""},
	}
	got := Build(Input{Notes: notes, Folders: folders, Now: now}).Notes
	if got.Total != 3 || got.Pinned != 1 || got.Words != 4 {
		t.Errorf("NoteStats = %+v", got)
	}
	want := map[string]int{"Work/Meetings": 2, "/": 1}
	if diff := cmp.Diff(want, got.ByFolder); diff != "" {
		t.Errorf("ByFolder mismatch (-want +got):\n%s", diff)
	}
}

func TestCalendarStats(t *testing.T) {
	events := []event.Event{
		{ID: "1", Title: "earlier today", Start: day(0, 9), End: day(0, 10), GoogleID: "g1"},
		{ID: "2", Title: "later today", Start: day(0, 17), End: day(0, 18)},
		{ID: "3", Title: "next week", Start: day(6, 9), End: day(6, 10)},
		{ID: "4", Title: "far", Start: day(30, 9), End: day(30, 10), GoogleID: "g4"},
	}
	got := Build(Input{Events: events, Now: now}).Calendar
	if got.Today != 2 || got.Upcoming != 2 || got.Synced != 2 || got.Local != 2 {
		t.Errorf("CalendarStats = %+v", got)
	}
	if got.Next == nil || got.Next.ID != "2" {
		t.Errorf("Next = %+v, want later today", got.Next)
	}
}

func TestBuildDefaults(t *testing.T) {
	d := Build(Input{Now: now})
	if d.Days != DefaultDays || len(d.Focus.Daily) != DefaultDays {
		t.Errorf("Days = %d, series length %d", d.Days, len(d.Focus.Daily))
	}
	if d.Tasks.CompletionRate != 0 || d.Focus.GoalProgress != 0 {
		t.Errorf("empty dashboard has non-zero rates: %+v", d)
	}
}
