package task

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 30, 15, 500, time.UTC)
	tk, err := New("  Write report ", now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tk.Title != "Write report" {
		t.Errorf("title = %q", tk.Title)
	}
	if tk.Status != StatusTodo || tk.Priority != PriorityMedium {
		t.Errorf("status/priority = %s/%s", tk.Status, tk.Priority)
	}
	if !tk.CreatedAt.Equal(now.Truncate(time.Second)) {
		t.Errorf("created_at = %v", tk.CreatedAt)
	}
	if _, err := New("   ", now); err == nil {
		t.Error("expected error for blank title")
	}
	if _, err := New(strings.Repeat("x", 201), now); err == nil {
		t.Error("expected error for long title")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"todo", StatusTodo, false},
		{"Doing", StatusInProgress, false},
		{"in-progress", StatusInProgress, false},
		{"DONE", StatusDone, false},
		{"blocked", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPriorityRank(t *testing.T) {
	for i := 1; i < len(Priorities); i++ {
		if Priorities[i-1].Rank() <= Priorities[i].Rank() {
			t.Errorf("%s should outrank %s", Priorities[i-1], Priorities[i])
		}
	}
	if _, err := ParsePriority("critical"); err == nil {
		t.Error("expected error for unknown priority")
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	tk, _ := New("a", time.Now())
	first := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	tk.Complete(first)
	tk.Complete(first.Add(time.Hour))
	if tk.Status != StatusDone {
		t.Fatalf("status = %s", tk.Status)
	}
	if !tk.CompletedAt.Equal(first) {
		t.Errorf("completed_at = %v, want %v", tk.CompletedAt, first)
	}
	tk.Reopen()
	if tk.Status != StatusTodo || tk.CompletedAt != nil {
		t.Errorf("reopen left %s/%v", tk.Status, tk.CompletedAt)
	}
}

func TestIsOverdue(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	now := time.Date(2026, 5, 10, 8, 0, 0, 0, loc)
	yesterday := time.Date(2026, 5, 9, 23, 0, 0, 0, loc)
	today := time.Date(2026, 5, 10, 0, 0, 0, 0, loc)

	tk, _ := New("a", now)
	if tk.IsOverdue(now) {
		t.Error("task without due date is never overdue")
	}
	tk.Due = &today
	if tk.IsOverdue(now) {
		t.Error("task due today is not overdue")
	}
	if !tk.DueOn(now) {
		t.Error("expected DueOn today")
	}
	tk.Due = &yesterday
	if !tk.IsOverdue(now) {
		t.Error("task due yesterday should be overdue")
	}
	tk.Complete(now)
	if tk.IsOverdue(now) {
		t.Error("done task is never overdue")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := ParseTags(" Work, home,work,, Errands ")
	want := []string{"errands", "home", "work"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if ParseTags("  ") != nil {
		t.Error("expected nil for empty tag list")
	}
}

func TestPreview(t *testing.T) {
	tk := Task{Title: "a very long task title indeed"}
	tests := []struct {
		maxLen int
		want   string
	}{
		{100, tk.Title},
		{10, "a very ..."},
		{4, "a..."},
		{3, "a v"},
		{2, "a "},
		{0, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := tk.Preview(tt.maxLen); got != tt.want {
			t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
		}
	}
}
