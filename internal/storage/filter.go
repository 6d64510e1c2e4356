package storage

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/task"
)

// The helpers below give the document-style backends (markdown, appwrite)
// the same filtering and ordering semantics the sqlite backend gets from SQL.

var settingKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// ValidateSettingKey checks that a settings key is short, lowercase and
// safe to use as a document ID or file key.
func ValidateSettingKey(key string) error {
	if !settingKeyPattern.MatchString(key) {
		return fmt.Errorf("%w: invalid setting key %q (lowercase letters, digits, '.', '_' and '-')", ErrValidation, key)
	}
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// MatchTask reports whether t satisfies opts (pagination is ignored).
func MatchTask(t task.Task, opts TaskListOptions) bool {
	if len(opts.Statuses) > 0 {
		ok := false
		for _, s := range opts.Statuses {
			if t.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if opts.Priority != "" && t.Priority != opts.Priority {
		return false
	}
	if opts.Project != "" && !strings.EqualFold(t.Project, opts.Project) {
		return false
	}
	if opts.Tag != "" && !t.HasTag(opts.Tag) {
		return false
	}
	if opts.DueBefore != nil && (t.Due == nil || t.Due.After(*opts.DueBefore)) {
		return false
	}
	if opts.DueAfter != nil && (t.Due == nil || t.Due.Before(*opts.DueAfter)) {
		return false
	}
	if opts.Query != "" && !containsFold(t.Title, opts.Query) && !containsFold(t.Description, opts.Query) {
		return false
	}
	return true
}

func statusRank(s task.Status) int {
	switch s {
	case task.StatusInProgress:
		return 0
	case task.StatusTodo:
		return 1
	}
	return 2
}

// SortTasks orders tasks: in progress, then todo, then done; within a status
// by priority (highest first), due date (soonest first, undated last) and
// creation time (newest first).
func SortTasks(tasks []task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
			return ra < rb
		}
		if pa, pb := a.Priority.Rank(), b.Priority.Rank(); pa != pb {
			return pa > pb
		}
		switch {
		case a.Due != nil && b.Due == nil:
			return true
		case a.Due == nil && b.Due != nil:
			return false
		case a.Due != nil && b.Due != nil && !a.Due.Equal(*b.Due):
			return a.Due.Before(*b.Due)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// FilterTasks applies opts to tasks, sorts and paginates the result.
func FilterTasks(tasks []task.Task, opts TaskListOptions) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if MatchTask(t, opts) {
			out = append(out, t)
		}
	}
	SortTasks(out)
	return Paginate(out, opts.Offset, opts.Limit)
}

// MatchNote reports whether n satisfies opts.
func MatchNote(n note.Note, opts NoteListOptions) bool {
	if opts.FolderID != nil && n.FolderID != *opts.FolderID {
		return false
	}
	if opts.Tag != "" && !n.HasTag(opts.Tag) {
		return false
	}
	if opts.PinnedOnly && !n.Pinned {
		return false
	}
	if opts.Query != "" && !containsFold(n.Title, opts.Query) && !containsFold(n.Content, opts.Query) {
		return false
	}
	return true
}

// SortNotes orders pinned notes first, then by last update (newest first).
func SortNotes(notes []note.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}

// FilterNotes applies opts to notes, sorts and paginates the result.
func FilterNotes(notes []note.Note, opts NoteListOptions) []note.Note {
	out := make([]note.Note, 0, len(notes))
	for _, n := range notes {
		if MatchNote(n, opts) {
			out = append(out, n)
		}
	}
	SortNotes(out)
	return Paginate(out, opts.Offset, opts.Limit)
}

// SortFolders orders folders by name, case-insensitively.
func SortFolders(folders []note.Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		a, b := strings.ToLower(folders[i].Name), strings.ToLower(folders[j].Name)
		if a != b {
			return a < b
		}
		return folders[i].ID < folders[j].ID
	})
}

// MatchSession reports whether s satisfies opts.
func MatchSession(s pomodoro.Session, opts SessionListOptions) bool {
	if opts.StartDate != nil && s.StartedAt.Before(*opts.StartDate) {
		return false
	}
	if opts.EndDate != nil && !s.StartedAt.Before(*opts.EndDate) {
		return false
	}
	if opts.Phase != "" && s.Phase != opts.Phase {
		return false
	}
	if opts.TaskID != "" && s.TaskID != opts.TaskID {
		return false
	}
	if opts.CompletedOnly && !s.Completed {
		return false
	}
	return true
}

// FilterSessions applies opts and orders sessions by start time.
func FilterSessions(sessions []pomodoro.Session, opts SessionListOptions) []pomodoro.Session {
	out := make([]pomodoro.Session, 0, len(sessions))
	for _, s := range sessions {
		if MatchSession(s, opts) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].Key < out[j].Key
	})
	return Paginate(out, 0, opts.Limit)
}

// MatchEvent reports whether e satisfies opts.
func MatchEvent(e event.Event, opts EventListOptions) bool {
	if opts.To != nil && !e.Start.Before(*opts.To) {
		return false
	}
	if opts.From != nil && e.End.Before(*opts.From) {
		return false
	}
	if opts.Source != "" && e.Source != opts.Source {
		return false
	}
	if opts.Linked != nil && e.Linked() != *opts.Linked {
		return false
	}
	return true
}

// FilterEvents applies opts and orders events by start time.
func FilterEvents(events []event.Event, opts EventListOptions) []event.Event {
	out := make([]event.Event, 0, len(events))
	for _, e := range events {
		if MatchEvent(e, opts) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return Paginate(out, 0, opts.Limit)
}

// Paginate applies an offset and limit (0 = unlimited) to a sorted slice.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
