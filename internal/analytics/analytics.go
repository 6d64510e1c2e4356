// Package analytics computes the insights dashboard from stored records.
package analytics

import (
	"sort"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/task"
)

const dateLayout = "2006-01-02"

// DefaultDays is the length of the daily series when Input.Days is unset.
const DefaultDays = 7

// Input is everything the dashboard is computed from.
type Input struct {
	Tasks    []task.Task
	Sessions []pomodoro.Session
	Notes    []note.Note
	Folders  []note.Folder
	Events   []event.Event
	Now      time.Time
	// Days is the length of the daily series, ending today.
	Days int
	// Location defines day boundaries; defaults to Now's location.
	Location         *time.Location
	DailyGoalMinutes int
}

// Day is one entry of a daily series.
type Day struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Minutes int    `json:"minutes,omitempty"`
}

// TaskStats summarizes tasks.
type TaskStats struct {
	Total           int                   `json:"total"`
	Open            int                   `json:"open"`
	InProgress      int                   `json:"in_progress"`
	Done            int                   `json:"done"`
	Overdue         int                   `json:"overdue"`
	DueToday        int                   `json:"due_today"`
	CompletionRate  float64               `json:"completion_rate"`
	ByPriority      map[task.Priority]int `json:"by_priority"`
	CompletedPerDay []Day                 `json:"completed_per_day"`
}

// FocusStats summarizes pomodoro sessions. Totals cover the series window;
// streaks cover all sessions.
type FocusStats struct {
	Sessions            int     `json:"sessions"`
	Minutes             int     `json:"minutes"`
	Interrupted         int     `json:"interrupted"`
	BreakMinutes        int     `json:"break_minutes"`
	Daily               []Day   `json:"daily"`
	CurrentStreak       int     `json:"current_streak"`
	LongestStreak       int     `json:"longest_streak"`
	BestDay             Day     `json:"best_day"`
	AveragePerActiveDay float64 `json:"average_minutes_per_active_day"`
	TodayMinutes        int     `json:"today_minutes"`
	GoalMinutes         int     `json:"goal_minutes"`
	GoalProgress        float64 `json:"goal_progress"`
}

// NoteStats summarizes notes.
type NoteStats struct {
	Total    int            `json:"total"`
	Pinned   int            `json:"pinned"`
	Words    int            `json:"words"`
	ByFolder map[string]int `json:"by_folder"` // keyed by folder path, "/" for the root
}

// CalendarStats summarizes events.
type CalendarStats struct {
	Today    int          `json:"today"`
	Upcoming int          `json:"upcoming"` // starting within the next 7 days
	Synced   int          `json:"synced"`
	Local    int          `json:"local"`
	Next     *event.Event `json:"next,omitempty"`
}

// Dashboard is the computed insights view.
type Dashboard struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Days        int           `json:"days"`
	Tasks       TaskStats     `json:"tasks"`
	Focus       FocusStats    `json:"focus"`
	Notes       NoteStats     `json:"notes"`
	Calendar    CalendarStats `json:"calendar"`
}

// Build computes the dashboard.
func Build(in Input) Dashboard {
	if in.Days <= 0 {
		in.Days = DefaultDays
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	loc := in.Location
	if loc == nil {
		loc = in.Now.Location()
	}
	now := in.Now.In(loc)
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(in.Days - 1))

	return Dashboard{
		GeneratedAt: in.Now,
		Days:        in.Days,
		Tasks:       taskStats(in.Tasks, now, first, in.Days),
		Focus:       focusStats(in.Sessions, today, first, in.Days, in.DailyGoalMinutes),
		Notes:       noteStats(in.Notes, in.Folders),
		Calendar:    calendarStats(in.Events, now),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// series returns an empty daily series and an index from date to position.
func series(first time.Time, days int) ([]Day, map[string]int) {
	out := make([]Day, days)
	idx := make(map[string]int, days)
	for i := range out {
		date := first.AddDate(0, 0, i).Format(dateLayout)
		out[i].Date = date
		idx[date] = i
	}
	return out, idx
}

func taskStats(tasks []task.Task, now, first time.Time, days int) TaskStats {
	st := TaskStats{ByPriority: make(map[task.Priority]int)}
	var idx map[string]int
	st.CompletedPerDay, idx = series(first, days)
	for _, t := range tasks {
		st.Total++
		st.ByPriority[t.Priority]++
		switch t.Status {
		case task.StatusDone:
			st.Done++
			if t.CompletedAt != nil {
				if i, ok := idx[t.CompletedAt.In(now.Location()).Format(dateLayout)]; ok {
					st.CompletedPerDay[i].Count++
				}
			}
		case task.StatusInProgress:
			st.InProgress++
			st.Open++
		default:
			st.Open++
		}
		if t.IsOverdue(now) {
			st.Overdue++
		}
		if t.Status != task.StatusDone && t.DueOn(now) {
			st.DueToday++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = float64(st.Done) / float64(st.Total)
	}
	return st
}

func focusStats(sessions []pomodoro.Session, today, first time.Time, days, goal int) FocusStats {
	st := FocusStats{GoalMinutes: goal}
	var idx map[string]int
	st.Daily, idx = series(first, days)

	for _, s := range sessions {
		date := s.StartedAt.In(today.Location()).Format(dateLayout)
		i, inWindow := idx[date]
		if !s.IsFocus() {
			if inWindow {
				st.BreakMinutes += s.Minutes()
			}
			continue
		}
		if !s.Completed {
			if inWindow {
				st.Interrupted++
			}
			continue
		}
		if inWindow {
			st.Sessions++
			st.Minutes += s.Minutes()
			st.Daily[i].Count++
			st.Daily[i].Minutes += s.Minutes()
		}
	}

	activeInWindow := 0
	for _, d := range st.Daily {
		if d.Count > 0 {
			activeInWindow++
		}
		if d.Minutes > st.BestDay.Minutes {
			st.BestDay = d
		}
	}
	if activeInWindow > 0 {
		st.AveragePerActiveDay = float64(st.Minutes) / float64(activeInWindow)
	}
	st.TodayMinutes = st.Daily[len(st.Daily)-1].Minutes
	if goal > 0 {
		st.GoalProgress = float64(st.TodayMinutes) / float64(goal)
	}
	active := ActiveDays(sessions, today.Location())
	st.CurrentStreak = CurrentStreak(active, today)
	st.LongestStreak = longestStreak(active)
	return st
}

// CurrentStreak counts consecutive active days ending today, or ending
// yesterday when today has no activity yet. Keys of active are YYYY-MM-DD.
func CurrentStreak(active map[string]bool, today time.Time) int {
	check := startOfDay(today)
	if !active[check.Format(dateLayout)] {
		check = check.AddDate(0, 0, -1)
	}
	streak := 0
	for active[check.Format(dateLayout)] {
		streak++
		check = check.AddDate(0, 0, -1)
	}
	return streak
}

func longestStreak(active map[string]bool) int {
	dates := make([]time.Time, 0, len(active))
	for d := range active {
		t, err := time.Parse(dateLayout, d)
		if err == nil {
			dates = append(dates, t)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	best, run := 0, 0
	for i, d := range dates {
		if i > 0 && dates[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// ActiveDays returns the days with at least one completed focus session.
func ActiveDays(sessions []pomodoro.Session, loc *time.Location) map[string]bool {
	active := make(map[string]bool)
	for _, s := range sessions {
		if s.IsFocus() && s.Completed {
			active[s.StartedAt.In(loc).Format(dateLayout)] = true
		}
	}
	return active
}

func noteStats(notes []note.Note, folders []note.Folder) NoteStats {
	st := NoteStats{ByFolder: make(map[string]int)}
	for _, n := range notes {
		st.Total++
		if n.Pinned {
			st.Pinned++
		}
		st.Words += n.WordCount()
		st.ByFolder[note.FolderPath(folders, n.FolderID)]++
	}
	return st
}

func calendarStats(events []event.Event, now time.Time) CalendarStats {
	var st CalendarStats
	horizon := now.AddDate(0, 0, 7)
	for i := range events {
		e := events[i]
		if e.Linked() {
			st.Synced++
		} else {
			st.Local++
		}
		if e.OnDay(now) {
			st.Today++
		}
		if e.Start.After(now) && !e.Start.After(horizon) {
			st.Upcoming++
			if st.Next == nil || e.Start.Before(st.Next.Start) {
				st.Next = &events[i]
			}
		}
	}
	return st
}
