package shell

import (
	"time"

	"github.com/chris-regnier/focusflow/internal/analytics"
	"github.com/chris-regnier/focusflow/internal/focus"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/task"
)

// streakWindow bounds how far back sessions are read for the streak.
const streakWindow = 366

// ComputeStatus queries the storage backend and builds the prompt status:
// the saved timer phase, today's focus minutes against the goal, the
// current focus streak and the open task counts.
func ComputeStatus(store storage.Storage, settings pomodoro.Settings, goal int, now time.Time) (*PromptCache, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	c := &PromptCache{
		State:       pomodoro.StateIdle,
		GoalMinutes: goal,
		TodayDate:   today.Format("2006-01-02"),
		UpdatedAt:   now,
	}

	snap, ok, err := focus.LoadSnapshot(store)
	if err != nil {
		return nil, err
	}
	if ok && snap.State != pomodoro.StateIdle {
		t := pomodoro.NewTimer(settings)
		if err := t.Restore(snap); err != nil {
			return nil, err
		}
		c.Phase = t.Phase()
		c.State = t.State()
		remaining := t.Remaining(now)
		if c.State == pomodoro.StateRunning {
			end := now.Add(remaining).Truncate(time.Second)
			c.PhaseEndsAt = &end
		} else {
			c.Remaining = remaining
		}
	}

	start := today.AddDate(0, 0, -streakWindow)
	sessions, err := store.ListSessions(storage.SessionListOptions{
		StartDate: &start,
		Phase:     pomodoro.PhaseFocus,
	})
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if !s.StartedAt.Before(today) {
			c.TodayMinutes += s.Minutes()
		}
	}
	c.Streak = analytics.CurrentStreak(analytics.ActiveDays(sessions, now.Location()), today)

	open, err := store.ListTasks(storage.TaskListOptions{
		Statuses: []task.Status{task.StatusTodo, task.StatusInProgress},
	})
	if err != nil {
		return nil, err
	}
	c.OpenTasks = len(open)
	for i := range open {
		if open[i].DueOn(today) || open[i].IsOverdue(now) {
			c.DueToday++
		}
	}
	return c, nil
}
