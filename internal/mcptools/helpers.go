package mcptools

import (
	"fmt"
	"time"

	"github.com/chris-regnier/focusflow/internal/task"
)

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func taskResult(t task.Task, now time.Time) TaskResult {
	r := TaskResult{
		ID:       t.ID,
		Title:    t.Title,
		Status:   string(t.Status),
		Priority: string(t.Priority),
		Project:  t.Project,
		Tags:     t.Tags,
		Overdue:  t.IsOverdue(now),
	}
	if t.Due != nil {
		r.Due = t.Due.Local().Format(time.RFC3339)
	}
	if t.EstimatedPomodoros > 0 || t.CompletedPomodoros > 0 {
		r.Pomodoros = fmt.Sprintf("%d/%d", t.CompletedPomodoros, t.EstimatedPomodoros)
	}
	return r
}
