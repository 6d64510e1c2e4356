// Package task defines the task record and its lifecycle rules.
package task

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chris-regnier/focusflow/internal/ids"
)

const maxTitleLen = 200

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority orders tasks within a status.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank returns a sortable weight; urgent is highest.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Priorities lists all priorities from highest to lowest.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// Task is a single unit of work.
type Task struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Status             Status     `json:"status"`
	Priority           Priority   `json:"priority"`
	Project            string     `json:"project,omitempty"`
	Tags               []string   `json:"tags,omitempty"`
	Due                *time.Time `json:"due,omitempty"`
	EstimatedPomodoros int        `json:"estimated_pomodoros,omitempty"`
	CompletedPomodoros int        `json:"completed_pomodoros,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// New builds a todo task with medium priority and a fresh ID.
func New(title string, now time.Time) (Task, error) {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return Task{}, err
	}
	id, err := ids.NewID()
	if err != nil {
		return Task{}, fmt.Errorf("generating task ID: %w", err)
	}
	now = now.UTC().Truncate(time.Second)
	return Task{
		ID:        id,
		Title:     title,
		Status:    StatusTodo,
		Priority:  PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateTitle checks that a title is non-blank and not overly long.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("task title must be at most %d characters", maxTitleLen)
	}
	return nil
}

// Validate checks every field that storage relies on.
func (t *Task) Validate() error {
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return err
	}
	if _, err := ParsePriority(string(t.Priority)); err != nil {
		return err
	}
	if t.EstimatedPomodoros < 0 || t.CompletedPomodoros < 0 {
		return fmt.Errorf("pomodoro counts must not be negative")
	}
	return nil
}

// ParseStatus accepts the canonical names plus a few aliases.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "open":
		return StatusTodo, nil
	case "in_progress", "in-progress", "doing", "started":
		return StatusInProgress, nil
	case "done", "completed", "complete":
		return StatusDone, nil
	}
	return "", fmt.Errorf("invalid status %q (use todo, in_progress or done)", s)
}

// ParsePriority accepts the canonical names case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p.Rank() == 0 {
		return "", fmt.Errorf("invalid priority %q (use low, medium, high or urgent)", s)
	}
	return p, nil
}

// Complete marks the task done. Completing a done task keeps the original CompletedAt.
func (t *Task) Complete(now time.Time) {
	if t.Status == StatusDone && t.CompletedAt != nil {
		return
	}
	at := now.UTC().Truncate(time.Second)
	t.Status = StatusDone
	t.CompletedAt = &at
}

// Start moves a todo task into progress.
func (t *Task) Start() {
	if t.Status == StatusTodo {
		t.Status = StatusInProgress
	}
}

// Reopen returns the task to todo.
func (t *Task) Reopen() {
	t.Status = StatusTodo
	t.CompletedAt = nil
}

// IsOverdue reports whether the due date lies before the day containing now.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Due == nil || t.Status == StatusDone {
		return false
	}
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return t.Due.Before(startOfDay)
}

// DueOn reports whether the task is due on the same calendar day as day.
func (t *Task) DueOn(day time.Time) bool {
	if t.Due == nil {
		return false
	}
	due := t.Due.In(day.Location())
	y1, m1, d1 := due.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// HasTag reports whether the task carries tag (case-insensitive).
func (t *Task) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// NormalizeTags trims, lowercases, dedups and sorts tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// ParseTags splits a comma separated tag list.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeTags(strings.Split(s, ","))
}

// Preview returns the title truncated to maxLen.
func (t *Task) Preview(maxLen int) string {
	title := strings.ReplaceAll(t.Title, "\n", " ")
	if utf8.RuneCountInString(title) <= maxLen {
		return title
	}
	r := []rune(title)
	switch {
	case maxLen <= 0:
		return ""
	case maxLen <= 3:
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
