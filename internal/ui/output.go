package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/calsync"
	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/task"
	"github.com/dustin/go-humanize"
)

const (
	stampLayout = "2006-01-02 15:04"
	dayLayout   = "Mon 2006-01-02"
)

// FormatJSON writes any value as indented JSON.
func FormatJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DeleteResult is the JSON output of delete commands.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// relative renders t relative to now, e.g. "3 hours ago" or "2 days from now".
func relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatCreated prints a creation confirmation.
func FormatCreated(w io.Writer, kind, id, label string) {
	fmt.Fprintf(w, "Created %s %s (%s)\n", kind, id, label)
}

// FormatUpdated prints an update confirmation.
func FormatUpdated(w io.Writer, kind, id string) {
	fmt.Fprintf(w, "Updated %s %s.\n", kind, id)
}

// FormatDeleted prints a deletion confirmation.
func FormatDeleted(w io.Writer, kind, id string) {
	fmt.Fprintf(w, "Deleted %s %s.\n", kind, id)
}

// FormatTaskList prints one line per task.
func FormatTaskList(w io.Writer, tasks []task.Task, theme Theme, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	for _, t := range tasks {
		line := fmt.Sprintf("%s %s  %-6s  %s",
			StatusMark(t.Status), t.ID, theme.PriorityStyle(t.Priority).Render(string(t.Priority)), t.Preview(60))
		var extra []string
		if t.Project != "" {
			extra = append(extra, "+"+t.Project)
		}
		if t.Due != nil && t.Status != task.StatusDone {
			due := "due " + relative(*t.Due, now)
			if t.IsOverdue(now) {
				due = theme.Alert().UnsetBackground().Render("overdue " + relative(*t.Due, now))
			}
			extra = append(extra, due)
		}
		if t.EstimatedPomodoros > 0 || t.CompletedPomodoros > 0 {
			extra = append(extra, fmt.Sprintf("%d/%d 🍅", t.CompletedPomodoros, t.EstimatedPomodoros))
		}
		if len(extra) > 0 {
			line += "  " + strings.Join(extra, "  ")
		}
		fmt.Fprintln(w, line)
	}
}

// FormatTaskFull prints every field of a task.
func FormatTaskFull(w io.Writer, t task.Task, now time.Time) {
	fmt.Fprintf(w, "Task: %s\n", t.ID)
	fmt.Fprintf(w, "Title: %s\n", t.Title)
	fmt.Fprintf(w, "Status: %s\n", t.Status)
	fmt.Fprintf(w, "Priority: %s\n", t.Priority)
	if t.Project != "" {
		fmt.Fprintf(w, "Project: %s\n", t.Project)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(t.Tags, ", "))
	}
	if t.Due != nil {
		fmt.Fprintf(w, "Due: %s (%s)\n", t.Due.Local().Format(stampLayout), relative(*t.Due, now))
	}
	fmt.Fprintf(w, "Pomodoros: %d/%d\n", t.CompletedPomodoros, t.EstimatedPomodoros)
	fmt.Fprintf(w, "Created: %s\n", t.CreatedAt.Local().Format(stampLayout))
	fmt.Fprintf(w, "Modified: %s\n", t.UpdatedAt.Local().Format(stampLayout))
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "Completed: %s\n", t.CompletedAt.Local().Format(stampLayout))
	}
	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Description)
	}
}

// FormatNoteList prints one line per note with its folder path.
func FormatNoteList(w io.Writer, notes []note.Note, folders []note.Folder, now time.Time) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes found.")
		return
	}
	for _, n := range notes {
		pin := " "
		if n.Pinned {
			pin = "*"
		}
		fmt.Fprintf(w, "%s %s  %-20s  %s  (%s)\n",
			pin, n.ID, note.FolderPath(folders, n.FolderID), n.Title, relative(n.UpdatedAt, now))
	}
}

// FormatNoteFull prints a note's metadata followed by its rendered content.
func FormatNoteFull(w io.Writer, n note.Note, folders []note.Folder, markdownStyle string) {
	fmt.Fprintf(w, "Note: %s\n", n.ID)
	fmt.Fprintf(w, "Title: %s\n", n.Title)
	fmt.Fprintf(w, "Folder: %s\n", note.FolderPath(folders, n.FolderID))
	if len(n.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(n.Tags, ", "))
	}
	if n.Pinned {
		fmt.Fprintln(w, "Pinned: yes")
	}
	fmt.Fprintf(w, "Created: %s\n", n.CreatedAt.Local().Format(stampLayout))
	fmt.Fprintf(w, "Modified: %s\n", n.UpdatedAt.Local().Format(stampLayout))
	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderMarkdown(n.Content, DefaultWidth, markdownStyle))
}

// FormatFolderTree prints folders as an indented tree with note counts.
func FormatFolderTree(w io.Writer, folders []note.Folder, counts map[string]int) {
	fmt.Fprintf(w, "/ (%d)\n", counts[""])
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, f := range note.Children(folders, parent) {
			fmt.Fprintf(w, "%s%s  %s (%d)\n", strings.Repeat("  ", depth), f.ID, f.Name, counts[f.ID])
			walk(f.ID, depth+1)
		}
	}
	walk("", 1)
}

// FormatEventList prints events grouped by day.
func FormatEventList(w io.Writer, events []event.Event, loc *time.Location) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}
	sorted := append([]event.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	current := ""
	for _, e := range sorted {
		start := e.Start.In(loc)
		if day := start.Format(dayLayout); day != current {
			if current != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "── %s ──────────\n", day)
			current = day
		}
		when := "all day    "
		if !e.AllDay {
			when = start.Format("15:04") + "-" + e.End.In(loc).Format("15:04")
		}
		sync := "local"
		if e.Linked() {
			sync = "google"
			if e.Dirty() {
				sync = "google*"
			}
		}
		line := fmt.Sprintf("  %s  %s  %-7s  %s", e.ID, when, sync, e.Title)
		if e.Location != "" {
			line += " @ " + e.Location
		}
		fmt.Fprintln(w, line)
	}
}

// FormatSessionList prints pomodoro sessions, newest first as given.
func FormatSessionList(w io.Writer, sessions []pomodoro.Session, theme Theme) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return
	}
	for _, s := range sessions {
		state := "done"
		if !s.Completed {
			state = "interrupted"
		}
		line := fmt.Sprintf("%s  %s  %-11s  %3dm  %s",
			s.StartedAt.Local().Format(stampLayout),
			theme.PhaseStyle(s.Phase).Render(fmt.Sprintf("%-11s", s.Phase.Label())),
			state, s.Minutes(), s.ID)
		if s.TaskID != "" {
			line += "  task " + s.TaskID
		}
		fmt.Fprintln(w, line)
	}
}

// FormatSettings prints settings sorted by key.
func FormatSettings(w io.Writer, settings map[string]string) {
	if len(settings) == 0 {
		fmt.Fprintln(w, "No settings stored.")
		return
	}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s = %s\n", k, settings[k])
	}
}

// FormatSyncResult prints the counters of a sync run.
func FormatSyncResult(w io.Writer, res calsync.Result) {
	prefix := "Synced"
	if res.DryRun {
		prefix = "Dry run"
	}
	fmt.Fprintf(w, "%s in %s: %d imported, %d updated, %d exported, %d pushed, %d linked, %d removed, %d deleted remotely",
		prefix, res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond),
		res.Imported, res.Updated, res.Exported, res.Pushed, res.Linked, res.Removed, res.Deleted)
	if res.Conflicts > 0 {
		fmt.Fprintf(w, ", %d conflicts", res.Conflicts)
	}
	fmt.Fprintln(w, ".")
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  failed: %s\n", e.Error())
	}
}

// FormatSyncStatus prints when the calendar was last synced.
func FormatSyncStatus(w io.Writer, authorized bool, last *calsync.Result, pending int, now time.Time) {
	if authorized {
		fmt.Fprintln(w, "Google Calendar: connected")
	} else {
		fmt.Fprintln(w, "Google Calendar: not connected (run `focusflow cal auth`)")
	}
	if last == nil {
		fmt.Fprintln(w, "Last sync: never")
	} else {
		fmt.Fprintf(w, "Last sync: %s (%s)\n", last.FinishedAt.Local().Format(stampLayout), relative(last.FinishedAt, now))
		fmt.Fprint(w, "  ")
		FormatSyncResult(w, *last)
	}
	if pending > 0 {
		fmt.Fprintf(w, "Pending remote deletions: %d\n", pending)
	}
}
