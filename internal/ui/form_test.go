package ui

import (
	"testing"
	"time"

	"github.com/chris-regnier/focusflow/internal/task"
	"github.com/google/go-cmp/cmp"
)

func TestTaskFormApply(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f := &TaskForm{
		Title:       "  Write report ",
		Description: "quarterly",
		Priority:    "HIGH",
		Project:     "work",
		Tags:        "Writing, q2, writing",
		Due:         "tomorrow 14:30",
		Estimate:    "3",
	}
	var got task.Task
	if err := f.Apply(&got, now); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	due := time.Date(2025, 6, 3, 14, 30, 0, 0, time.UTC)
	want := task.Task{
		Title:              "Write report",
		Description:        "quarterly",
		Priority:           task.PriorityHigh,
		Project:            "work",
		Tags:               []string{"q2", "writing"},
		Due:                &due,
		EstimatedPomodoros: 3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskFormApplyClearsOptionalFields(t *testing.T) {
	due := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	tk := task.Task{Title: "x", Priority: task.PriorityLow, Due: &due, EstimatedPomodoros: 2, Tags: []string{"a"}}
	f := &TaskForm{Title: "x", Priority: "low"}
	if err := f.Apply(&tk, due); err != nil {
		t.Fatal(err)
	}
	if tk.Due != nil || tk.EstimatedPomodoros != 0 || tk.Tags != nil {
		t.Errorf("optional fields not cleared: %+v", tk)
	}
}

func TestTaskFormApplyRejectsInvalid(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	cases := map[string]TaskForm{
		"empty title":  {Title: " ", Priority: "low"},
		"bad priority": {Title: "x", Priority: "someday"},
		"bad estimate": {Title: "x", Priority: "low", Estimate: "-1"},
		"bad due":      {Title: "x", Priority: "low", Due: "the 5th of never"},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			var tk task.Task
			if err := f.Apply(&tk, now); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewTaskFormPrefills(t *testing.T) {
	tk := task.Task{Title: "Plan", Priority: task.PriorityUrgent, Tags: []string{"a", "b"}, EstimatedPomodoros: 4}
	f := NewTaskForm(tk)
	if f.Title != "Plan" || f.Priority != "urgent" || f.Tags != "a, b" || f.Estimate != "4" || f.Due != "" {
		t.Errorf("NewTaskForm = %+v", f)
	}
	if NewTaskForm(task.Task{}).Priority != "medium" {
		t.Error("blank task should default to medium priority")
	}
	if f.Form("Edit task") == nil {
		t.Error("Form returned nil")
	}
}
