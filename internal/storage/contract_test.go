package storage_test

import (
	"errors"
	"testing"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/storage/appwrite"
	"github.com/chris-regnier/focusflow/internal/storage/appwrite/appwritetest"
	"github.com/chris-regnier/focusflow/internal/storage/markdown"
	"github.com/chris-regnier/focusflow/internal/storage/sqlite"
	"github.com/chris-regnier/focusflow/internal/task"
	"github.com/google/go-cmp/cmp"
)

type storageFactory func(t *testing.T) storage.Storage

func markdownFactory(t *testing.T) storage.Storage {
	t.Helper()
	dir := t.TempDir()
	s, err := markdown.New(dir)
	if err != nil {
		t.Fatalf("creating markdown storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sqliteFactory(driver string) storageFactory {
	return func(t *testing.T) storage.Storage {
		t.Helper()
		dir := t.TempDir()
		s, err := sqlite.NewWithDriver(dir, driver)
		if err != nil {
			t.Fatalf("creating sqlite storage: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	}
}

func appwriteFactory(t *testing.T) storage.Storage {
	t.Helper()
	srv := appwritetest.New(t)
	s, err := appwrite.New(appwrite.Config{
		Endpoint:   srv.Endpoint(),
		ProjectID:  srv.ProjectID,
		APIKey:     srv.APIKey,
		DatabaseID: srv.DatabaseID,
	})
	if err != nil {
		t.Fatalf("creating appwrite storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// base is a fixed instant well in the past so UpdatedAt stamps from
// Update* calls always sort after it.
var base = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func makeTask(t *testing.T, title string, at time.Time) task.Task {
	t.Helper()
	tk, err := task.New(title, at)
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	return tk
}

func makeNote(t *testing.T, title, content, folderID string, at time.Time) note.Note {
	t.Helper()
	n, err := note.New(title, content, folderID, at)
	if err != nil {
		t.Fatalf("note.New: %v", err)
	}
	return n
}

func makeFolder(t *testing.T, name, parentID string) note.Folder {
	t.Helper()
	f, err := note.NewFolder(name, parentID, base)
	if err != nil {
		t.Fatalf("note.NewFolder: %v", err)
	}
	return f
}

func makeEvent(t *testing.T, title string, start time.Time, d time.Duration) event.Event {
	t.Helper()
	e, err := event.New(title, start, start.Add(d), base)
	if err != nil {
		t.Fatalf("event.New: %v", err)
	}
	return e
}

func ptr[T any](v T) *T { return &v }

func taskIDs(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, tk := range tasks {
		out[i] = tk.ID
	}
	return out
}

func noteIDs(notes []note.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func runContractTests(t *testing.T, name string, factory storageFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Tasks", func(t *testing.T) { runTaskContract(t, factory) })
		t.Run("Folders", func(t *testing.T) { runFolderContract(t, factory) })
		t.Run("Notes", func(t *testing.T) { runNoteContract(t, factory) })
		t.Run("Sessions", func(t *testing.T) { runSessionContract(t, factory) })
		t.Run("Events", func(t *testing.T) { runEventContract(t, factory) })
		t.Run("Settings", func(t *testing.T) { runSettingsContract(t, factory) })
	})
}

func runTaskContract(t *testing.T, factory storageFactory) {
	t.Run("Create and Get", func(t *testing.T) {
		s := factory(t)
		tk := makeTask(t, "Write report", base)
		tk.Description = "Quarterly numbers\n\n- revenue\n- churn\n"
		tk.Priority = task.PriorityHigh
		tk.Project = "Work"
		tk.Tags = []string{"q1", "writing"}
		tk.Due = ptr(base.Add(48 * time.Hour))
		tk.EstimatedPomodoros = 4
		if err := s.CreateTask(tk); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		got, err := s.GetTask(tk.ID)
		if err != nil {
			t.Fatalf("GetTask: %v", err)
		}
		if diff := cmp.Diff(tk, got); diff != "" {
			t.Errorf("task mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Create duplicate ID", func(t *testing.T) {
		s := factory(t)
		tk := makeTask(t, "once", base)
		if err := s.CreateTask(tk); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		if err := s.CreateTask(tk); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict, got: %v", err)
		}
	})

	t.Run("Create invalid", func(t *testing.T) {
		s := factory(t)
		tk := makeTask(t, "valid", base)
		tk.Title = "   "
		if err := s.CreateTask(tk); !errors.Is(err, storage.ErrValidation) {
			t.Errorf("expected ErrValidation, got: %v", err)
		}
		tk = makeTask(t, "valid", base)
		tk.Priority = "whenever"
		if err := s.CreateTask(tk); !errors.Is(err, storage.ErrValidation) {
			t.Errorf("expected ErrValidation for priority, got: %v", err)
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		s := factory(t)
		if _, err := s.GetTask("nonexist"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
		if _, err := s.GetTask("../../etc"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for malformed ID, got: %v", err)
		}
	})

	t.Run("List empty", func(t *testing.T) {
		s := factory(t)
		tasks, err := s.ListTasks(storage.TaskListOptions{})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected empty list, got %d tasks", len(tasks))
		}
	})

	t.Run("List order", func(t *testing.T) {
		s := factory(t)
		done := makeTask(t, "done", base)
		done.Complete(base)
		low := makeTask(t, "low", base)
		low.Priority = task.PriorityLow
		urgent := makeTask(t, "urgent", base)
		urgent.Priority = task.PriorityUrgent
		dueSoon := makeTask(t, "due soon", base)
		dueSoon.Due = ptr(base.Add(24 * time.Hour))
		dueLater := makeTask(t, "due later", base)
		dueLater.Due = ptr(base.Add(72 * time.Hour))
		newer := makeTask(t, "newer undated", base.Add(time.Hour))
		active := makeTask(t, "active", base)
		active.Start()

		for _, tk := range []task.Task{done, low, urgent, dueSoon, dueLater, newer, active} {
			if err := s.CreateTask(tk); err != nil {
				t.Fatalf("CreateTask %s: %v", tk.Title, err)
			}
		}
		tasks, err := s.ListTasks(storage.TaskListOptions{})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		want := []string{active.ID, urgent.ID, dueSoon.ID, dueLater.ID, newer.ID, low.ID, done.ID}
		if diff := cmp.Diff(want, taskIDs(tasks)); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("List filters", func(t *testing.T) {
		s := factory(t)
		a := makeTask(t, "Draft proposal", base)
		a.Project = "Work"
		a.Tags = []string{"writing"}
		a.Due = ptr(base.Add(24 * time.Hour))
		b := makeTask(t, "Buy milk", base)
		b.Project = "home"
		b.Description = "and a PROPOSAL for dinner"
		c := makeTask(t, "Ship release", base)
		c.Project = "work"
		c.Priority = task.PriorityUrgent
		c.Complete(base)
		for _, tk := range []task.Task{a, b, c} {
			if err := s.CreateTask(tk); err != nil {
				t.Fatalf("CreateTask: %v", err)
			}
		}

		tests := []struct {
			name string
			opts storage.TaskListOptions
			want []string
		}{
			{"status open", storage.TaskListOptions{Statuses: []task.Status{task.StatusTodo, task.StatusInProgress}}, []string{a.ID, b.ID}},
			{"status done", storage.TaskListOptions{Statuses: []task.Status{task.StatusDone}}, []string{c.ID}},
			{"priority", storage.TaskListOptions{Priority: task.PriorityUrgent}, []string{c.ID}},
			{"project case-insensitive", storage.TaskListOptions{Project: "WORK"}, []string{a.ID, c.ID}},
			{"tag", storage.TaskListOptions{Tag: "writing"}, []string{a.ID}},
			{"query matches description", storage.TaskListOptions{Query: "proposal"}, []string{a.ID, b.ID}},
			{"due before", storage.TaskListOptions{DueBefore: ptr(base.Add(48 * time.Hour))}, []string{a.ID}},
			{"due after excludes undated", storage.TaskListOptions{DueAfter: ptr(base)}, []string{a.ID}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tasks, err := s.ListTasks(tt.opts)
				if err != nil {
					t.Fatalf("ListTasks: %v", err)
				}
				got := taskIDs(tasks)
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("List pagination", func(t *testing.T) {
		s := factory(t)
		var all []string
		for i := 0; i < 5; i++ {
			tk := makeTask(t, "task", base.Add(time.Duration(i)*time.Minute))
			if err := s.CreateTask(tk); err != nil {
				t.Fatalf("CreateTask: %v", err)
			}
			all = append([]string{tk.ID}, all...) // newest first
		}
		page, err := s.ListTasks(storage.TaskListOptions{Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if diff := cmp.Diff(all[1:3], taskIDs(page)); diff != "" {
			t.Errorf("page mismatch (-want +got):\n%s", diff)
		}
		rest, err := s.ListTasks(storage.TaskListOptions{Offset: 4})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(rest) != 1 {
			t.Errorf("offset 4: got %d tasks, want 1", len(rest))
		}
		none, err := s.ListTasks(storage.TaskListOptions{Offset: 10})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("offset past end: got %d tasks", len(none))
		}
	})

	t.Run("Update", func(t *testing.T) {
		s := factory(t)
		tk := makeTask(t, "original", base)
		if err := s.CreateTask(tk); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		tk.Title = "renamed"
		tk.Complete(base.Add(time.Hour))
		tk.CompletedPomodoros = 3
		before := time.Now().UTC().Truncate(time.Second)
		got, err := s.UpdateTask(tk)
		if err != nil {
			t.Fatalf("UpdateTask: %v", err)
		}
		if got.Title != "renamed" || got.Status != task.StatusDone || got.CompletedPomodoros != 3 {
			t.Errorf("unexpected task after update: %+v", got)
		}
		if got.CompletedAt == nil || !got.CompletedAt.Equal(base.Add(time.Hour)) {
			t.Errorf("completed_at = %v", got.CompletedAt)
		}
		if got.UpdatedAt.Before(before) {
			t.Errorf("updated_at %v not stamped (before %v)", got.UpdatedAt, before)
		}
		if !got.CreatedAt.Equal(base) {
			t.Errorf("created_at changed to %v", got.CreatedAt)
		}

		got.Reopen()
		reopened, err := s.UpdateTask(got)
		if err != nil {
			t.Fatalf("UpdateTask reopen: %v", err)
		}
		if reopened.CompletedAt != nil {
			t.Errorf("completed_at should be cleared, got %v", reopened.CompletedAt)
		}
	})

	t.Run("Update not found", func(t *testing.T) {
		s := factory(t)
		tk := makeTask(t, "ghost", base)
		if _, err := s.UpdateTask(tk); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := factory(t)
		tk := makeTask(t, "doomed", base)
		if err := s.CreateTask(tk); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		if err := s.DeleteTask(tk.ID); err != nil {
			t.Fatalf("DeleteTask: %v", err)
		}
		if _, err := s.GetTask(tk.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got: %v", err)
		}
		if err := s.DeleteTask(tk.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got: %v", err)
		}
	})
}

func runFolderContract(t *testing.T, factory storageFactory) {
	t.Run("Create, Get and List", func(t *testing.T) {
		s := factory(t)
		work := makeFolder(t, "work", "")
		personal := makeFolder(t, "Personal", "")
		meetings := makeFolder(t, "Meetings", work.ID)
		for _, f := range []note.Folder{work, personal, meetings} {
			if err := s.CreateFolder(f); err != nil {
				t.Fatalf("CreateFolder %s: %v", f.Name, err)
			}
		}
		got, err := s.GetFolder(meetings.ID)
		if err != nil {
			t.Fatalf("GetFolder: %v", err)
		}
		if diff := cmp.Diff(meetings, got); diff != "" {
			t.Errorf("folder mismatch (-want +got):\n%s", diff)
		}
		folders, err := s.ListFolders()
		if err != nil {
			t.Fatalf("ListFolders: %v", err)
		}
		var names []string
		for _, f := range folders {
			names = append(names, f.Name)
		}
		if diff := cmp.Diff([]string{"Meetings", "Personal", "work"}, names); diff != "" {
			t.Errorf("folder order (-want +got):\n%s", diff)
		}
		if path := note.FolderPath(folders, meetings.ID); path != "work/Meetings" {
			t.Errorf("FolderPath = %q", path)
		}
	})

	t.Run("Create with missing parent", func(t *testing.T) {
		s := factory(t)
		f := makeFolder(t, "orphan", "nonexist")
		if err := s.CreateFolder(f); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("Rename and move", func(t *testing.T) {
		s := factory(t)
		a := makeFolder(t, "a", "")
		b := makeFolder(t, "b", "")
		if err := s.CreateFolder(a); err != nil {
			t.Fatalf("CreateFolder: %v", err)
		}
		if err := s.CreateFolder(b); err != nil {
			t.Fatalf("CreateFolder: %v", err)
		}
		b.Name = "beta"
		b.ParentID = a.ID
		got, err := s.UpdateFolder(b)
		if err != nil {
			t.Fatalf("UpdateFolder: %v", err)
		}
		if got.Name != "beta" || got.ParentID != a.ID {
			t.Errorf("unexpected folder: %+v", got)
		}

		a.ParentID = b.ID
		if _, err := s.UpdateFolder(a); !errors.Is(err, storage.ErrValidation) {
			t.Errorf("expected ErrValidation for cycle, got: %v", err)
		}
	})

	t.Run("Delete reparents children", func(t *testing.T) {
		s := factory(t)
		top := makeFolder(t, "top", "")
		mid := makeFolder(t, "mid", top.ID)
		leaf := makeFolder(t, "leaf", mid.ID)
		for _, f := range []note.Folder{top, mid, leaf} {
			if err := s.CreateFolder(f); err != nil {
				t.Fatalf("CreateFolder: %v", err)
			}
		}
		n := makeNote(t, "inside", "body", mid.ID, base)
		if err := s.CreateNote(n); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}

		if err := s.DeleteFolder(mid.ID); err != nil {
			t.Fatalf("DeleteFolder: %v", err)
		}
		if _, err := s.GetFolder(mid.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got: %v", err)
		}
		gotLeaf, err := s.GetFolder(leaf.ID)
		if err != nil {
			t.Fatalf("GetFolder leaf: %v", err)
		}
		if gotLeaf.ParentID != top.ID {
			t.Errorf("leaf parent = %q, want %q", gotLeaf.ParentID, top.ID)
		}
		gotNote, err := s.GetNote(n.ID)
		if err != nil {
			t.Fatalf("GetNote: %v", err)
		}
		if gotNote.FolderID != top.ID {
			t.Errorf("note folder = %q, want %q", gotNote.FolderID, top.ID)
		}
	})

	t.Run("Delete not found", func(t *testing.T) {
		s := factory(t)
		if err := s.DeleteFolder("nonexist"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func runNoteContract(t *testing.T, factory storageFactory) {
	t.Run("Create and Get", func(t *testing.T) {
		s := factory(t)
		n := makeNote(t, "Ideas", "# Ideas\n\n- one\n- two\n", "", base)
		n.Tags = []string{"brainstorm"}
		if err := s.CreateNote(n); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
		got, err := s.GetNote(n.ID)
		if err != nil {
			t.Fatalf("GetNote: %v", err)
		}
		if diff := cmp.Diff(n, got); diff != "" {
			t.Errorf("note mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Create in missing folder", func(t *testing.T) {
		s := factory(t)
		n := makeNote(t, "lost", "", "nonexist", base)
		if err := s.CreateNote(n); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("List order and filters", func(t *testing.T) {
		s := factory(t)
		f := makeFolder(t, "journal", "")
		if err := s.CreateFolder(f); err != nil {
			t.Fatalf("CreateFolder: %v", err)
		}
		old := makeNote(t, "old", "apples", "", base)
		recent := makeNote(t, "recent", "bananas", f.ID, base.Add(time.Hour))
		pinned := makeNote(t, "pinned", "APPLES again", "", base.Add(-time.Hour))
		pinned.Pinned = true
		tagged := makeNote(t, "tagged", "", f.ID, base.Add(30*time.Minute))
		tagged.Tags = []string{"todo"}
		for _, n := range []note.Note{old, recent, pinned, tagged} {
			if err := s.CreateNote(n); err != nil {
				t.Fatalf("CreateNote: %v", err)
			}
		}

		tests := []struct {
			name string
			opts storage.NoteListOptions
			want []string
		}{
			{"all", storage.NoteListOptions{}, []string{pinned.ID, recent.ID, tagged.ID, old.ID}},
			{"root only", storage.NoteListOptions{FolderID: ptr("")}, []string{pinned.ID, old.ID}},
			{"folder", storage.NoteListOptions{FolderID: ptr(f.ID)}, []string{recent.ID, tagged.ID}},
			{"pinned", storage.NoteListOptions{PinnedOnly: true}, []string{pinned.ID}},
			{"tag", storage.NoteListOptions{Tag: "todo"}, []string{tagged.ID}},
			{"query", storage.NoteListOptions{Query: "apples"}, []string{pinned.ID, old.ID}},
			{"limit", storage.NoteListOptions{Limit: 1, Offset: 1}, []string{recent.ID}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				notes, err := s.ListNotes(tt.opts)
				if err != nil {
					t.Fatalf("ListNotes: %v", err)
				}
				if diff := cmp.Diff(tt.want, noteIDs(notes)); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("Update moves and pins", func(t *testing.T) {
		s := factory(t)
		f := makeFolder(t, "archive", "")
		if err := s.CreateFolder(f); err != nil {
			t.Fatalf("CreateFolder: %v", err)
		}
		n := makeNote(t, "draft", "v1", "", base)
		if err := s.CreateNote(n); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
		n.Content = "v2"
		n.FolderID = f.ID
		n.Pinned = true
		got, err := s.UpdateNote(n)
		if err != nil {
			t.Fatalf("UpdateNote: %v", err)
		}
		if got.Content != "v2" || got.FolderID != f.ID || !got.Pinned {
			t.Errorf("unexpected note: %+v", got)
		}
		if !got.UpdatedAt.After(base) {
			t.Errorf("updated_at not stamped: %v", got.UpdatedAt)
		}

		n.FolderID = "nonexist"
		if _, err := s.UpdateNote(n); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing folder, got: %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := factory(t)
		n := makeNote(t, "bye", "", "", base)
		if err := s.CreateNote(n); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
		if err := s.DeleteNote(n.ID); err != nil {
			t.Fatalf("DeleteNote: %v", err)
		}
		if err := s.DeleteNote(n.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func runSessionContract(t *testing.T, factory storageFactory) {
	focusAt := func(start time.Time, completed bool, taskID string) pomodoro.Session {
		elapsed := 25 * time.Minute
		if !completed {
			elapsed = 10 * time.Minute
		}
		return pomodoro.NewSession(pomodoro.PhaseFocus, taskID, start, start.Add(elapsed), 25*time.Minute, elapsed, completed)
	}

	t.Run("Log and List", func(t *testing.T) {
		s := factory(t)
		ps := focusAt(base, true, "task0001")
		if err := s.LogSession(ps); err != nil {
			t.Fatalf("LogSession: %v", err)
		}
		sessions, err := s.ListSessions(storage.SessionListOptions{})
		if err != nil {
			t.Fatalf("ListSessions: %v", err)
		}
		if len(sessions) != 1 {
			t.Fatalf("got %d sessions, want 1", len(sessions))
		}
		if diff := cmp.Diff(ps, sessions[0]); diff != "" {
			t.Errorf("session mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Duplicate key", func(t *testing.T) {
		s := factory(t)
		ps := focusAt(base, true, "")
		if err := s.LogSession(ps); err != nil {
			t.Fatalf("LogSession: %v", err)
		}
		again := ps
		again.Elapsed = time.Minute
		if err := s.LogSession(again); !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got: %v", err)
		}
		sessions, err := s.ListSessions(storage.SessionListOptions{})
		if err != nil {
			t.Fatalf("ListSessions: %v", err)
		}
		if len(sessions) != 1 || sessions[0].Elapsed != ps.Elapsed {
			t.Errorf("stored session was modified: %+v", sessions)
		}
	})

	t.Run("Filters", func(t *testing.T) {
		s := factory(t)
		day1 := focusAt(base, true, "aaaaaaaa")
		day1b := focusAt(base.Add(2*time.Hour), false, "aaaaaaaa")
		brk := pomodoro.NewSession(pomodoro.PhaseShortBreak, "", base.Add(30*time.Minute), base.Add(35*time.Minute), 5*time.Minute, 5*time.Minute, true)
		day2 := focusAt(base.Add(24*time.Hour), true, "bbbbbbbb")
		day4 := focusAt(base.Add(72*time.Hour), true, "")
		for _, ps := range []pomodoro.Session{day4, day1b, day2, brk, day1} {
			if err := s.LogSession(ps); err != nil {
				t.Fatalf("LogSession: %v", err)
			}
		}

		keys := func(sessions []pomodoro.Session) []string {
			var out []string
			for _, ps := range sessions {
				out = append(out, ps.Key)
			}
			return out
		}
		tests := []struct {
			name string
			opts storage.SessionListOptions
			want []pomodoro.Session
		}{
			{"all ordered", storage.SessionListOptions{}, []pomodoro.Session{day1, brk, day1b, day2, day4}},
			{"range", storage.SessionListOptions{StartDate: ptr(base.Add(time.Hour)), EndDate: ptr(base.Add(48 * time.Hour))}, []pomodoro.Session{day1b, day2}},
			{"end exclusive", storage.SessionListOptions{EndDate: ptr(base.Add(24 * time.Hour))}, []pomodoro.Session{day1, brk, day1b}},
			{"phase", storage.SessionListOptions{Phase: pomodoro.PhaseShortBreak}, []pomodoro.Session{brk}},
			{"task", storage.SessionListOptions{TaskID: "aaaaaaaa"}, []pomodoro.Session{day1, day1b}},
			{"completed focus", storage.SessionListOptions{Phase: pomodoro.PhaseFocus, CompletedOnly: true}, []pomodoro.Session{day1, day2, day4}},
			{"limit", storage.SessionListOptions{Limit: 2}, []pomodoro.Session{day1, brk}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.ListSessions(tt.opts)
				if err != nil {
					t.Fatalf("ListSessions: %v", err)
				}
				if diff := cmp.Diff(keys(tt.want), keys(got)); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("Invalid phase", func(t *testing.T) {
		s := factory(t)
		ps := focusAt(base, true, "")
		ps.Phase = "nap"
		if err := s.LogSession(ps); !errors.Is(err, storage.ErrValidation) {
			t.Errorf("expected ErrValidation, got: %v", err)
		}
	})
}

func runEventContract(t *testing.T, factory storageFactory) {
	t.Run("Create and Get", func(t *testing.T) {
		s := factory(t)
		e := makeEvent(t, "Standup", base.Add(time.Hour), 15*time.Minute)
		e.Location = "Room 4"
		e.Description = "daily sync"
		if err := s.CreateEvent(e); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		got, err := s.GetEvent(e.ID)
		if err != nil {
			t.Fatalf("GetEvent: %v", err)
		}
		if diff := cmp.Diff(e, got); diff != "" {
			t.Errorf("event mismatch (-want +got):\n%s", diff)
		}
		if !got.Dirty() {
			t.Error("new event should be dirty")
		}
	})

	t.Run("Invalid range", func(t *testing.T) {
		s := factory(t)
		e := makeEvent(t, "Backwards", base, time.Hour)
		e.End = base.Add(-time.Hour)
		if err := s.CreateEvent(e); !errors.Is(err, storage.ErrValidation) {
			t.Errorf("expected ErrValidation, got: %v", err)
		}
	})

	t.Run("Google ID lookup and uniqueness", func(t *testing.T) {
		s := factory(t)
		a := makeEvent(t, "Imported", base, time.Hour)
		a.Source = event.SourceGoogle
		a.GoogleID = "g-123"
		if err := s.CreateEvent(a); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		got, err := s.GetEventByGoogleID("g-123")
		if err != nil {
			t.Fatalf("GetEventByGoogleID: %v", err)
		}
		if got.ID != a.ID {
			t.Errorf("got %s, want %s", got.ID, a.ID)
		}
		if _, err := s.GetEventByGoogleID("g-999"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
		if _, err := s.GetEventByGoogleID(""); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for empty ID, got: %v", err)
		}

		b := makeEvent(t, "Clash", base, time.Hour)
		b.GoogleID = "g-123"
		if err := s.CreateEvent(b); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict for duplicate google ID, got: %v", err)
		}
	})

	t.Run("List window and filters", func(t *testing.T) {
		s := factory(t)
		before := makeEvent(t, "before", base.Add(-3*time.Hour), time.Hour)
		spanning := makeEvent(t, "spanning", base.Add(-time.Hour), 2*time.Hour)
		inside := makeEvent(t, "inside", base.Add(2*time.Hour), time.Hour)
		after := makeEvent(t, "after", base.Add(10*time.Hour), time.Hour)
		inside.GoogleID = "g-inside"
		inside.Source = event.SourceGoogle
		for _, e := range []event.Event{after, inside, spanning, before} {
			if err := s.CreateEvent(e); err != nil {
				t.Fatalf("CreateEvent: %v", err)
			}
		}
		ids := func(events []event.Event) []string {
			var out []string
			for _, e := range events {
				out = append(out, e.ID)
			}
			return out
		}
		tests := []struct {
			name string
			opts storage.EventListOptions
			want []string
		}{
			{"all ordered", storage.EventListOptions{}, []string{before.ID, spanning.ID, inside.ID, after.ID}},
			{"window", storage.EventListOptions{From: ptr(base), To: ptr(base.Add(10 * time.Hour))}, []string{spanning.ID, inside.ID}},
			{"linked", storage.EventListOptions{Linked: ptr(true)}, []string{inside.ID}},
			{"unlinked", storage.EventListOptions{Linked: ptr(false)}, []string{before.ID, spanning.ID, after.ID}},
			{"source", storage.EventListOptions{Source: event.SourceGoogle}, []string{inside.ID}},
			{"limit", storage.EventListOptions{Limit: 1}, []string{before.ID}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.ListEvents(tt.opts)
				if err != nil {
					t.Fatalf("ListEvents: %v", err)
				}
				if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("Mark synced then update", func(t *testing.T) {
		s := factory(t)
		e := makeEvent(t, "Review", base.Add(time.Hour), time.Hour)
		if err := s.CreateEvent(e); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		syncedAt := base.Add(2 * time.Hour)
		if err := s.MarkEventSynced(e.ID, "g-review", `"etag-1"`, syncedAt); err != nil {
			t.Fatalf("MarkEventSynced: %v", err)
		}
		got, err := s.GetEvent(e.ID)
		if err != nil {
			t.Fatalf("GetEvent: %v", err)
		}
		if got.GoogleID != "g-review" || got.ETag != `"etag-1"` {
			t.Errorf("sync fields not stored: %+v", got)
		}
		if got.SyncedAt == nil || !got.SyncedAt.Equal(syncedAt) {
			t.Errorf("synced_at = %v, want %v", got.SyncedAt, syncedAt)
		}
		if !got.UpdatedAt.Equal(e.UpdatedAt) {
			t.Errorf("MarkEventSynced touched updated_at: %v", got.UpdatedAt)
		}
		if got.Dirty() {
			t.Error("event should be clean after sync")
		}

		got.Title = "Review (moved)"
		updated, err := s.UpdateEvent(got)
		if err != nil {
			t.Fatalf("UpdateEvent: %v", err)
		}
		if !updated.Dirty() {
			t.Error("event should be dirty after a local edit")
		}
		if updated.GoogleID != "g-review" {
			t.Errorf("google ID lost on update: %q", updated.GoogleID)
		}

		if err := s.MarkEventSynced("nonexist", "g-x", "", syncedAt); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := factory(t)
		e := makeEvent(t, "gone", base, time.Hour)
		if err := s.CreateEvent(e); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		if err := s.DeleteEvent(e.ID); err != nil {
			t.Fatalf("DeleteEvent: %v", err)
		}
		if _, err := s.GetEvent(e.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func runSettingsContract(t *testing.T, factory storageFactory) {
	t.Run("Set Get Delete", func(t *testing.T) {
		s := factory(t)
		if _, err := s.GetSetting("pomodoro.focus"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
		if err := s.SetSetting("pomodoro.focus", "50m"); err != nil {
			t.Fatalf("SetSetting: %v", err)
		}
		if err := s.SetSetting("pomodoro.focus", "45m"); err != nil {
			t.Fatalf("SetSetting overwrite: %v", err)
		}
		if err := s.SetSetting("calendar.pending_deletes", `["a","b"]`); err != nil {
			t.Fatalf("SetSetting: %v", err)
		}
		v, err := s.GetSetting("pomodoro.focus")
		if err != nil {
			t.Fatalf("GetSetting: %v", err)
		}
		if v != "45m" {
			t.Errorf("value = %q, want 45m", v)
		}
		all, err := s.ListSettings()
		if err != nil {
			t.Fatalf("ListSettings: %v", err)
		}
		want := map[string]string{"pomodoro.focus": "45m", "calendar.pending_deletes": `["a","b"]`}
		if diff := cmp.Diff(want, all); diff != "" {
			t.Errorf("settings mismatch (-want +got):\n%s", diff)
		}
		if err := s.DeleteSetting("pomodoro.focus"); err != nil {
			t.Fatalf("DeleteSetting: %v", err)
		}
		if err := s.DeleteSetting("pomodoro.focus"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got: %v", err)
		}
	})

	t.Run("Invalid key", func(t *testing.T) {
		s := factory(t)
		for _, key := range []string{"", "Has Space", "../escape", "UPPER"} {
			if err := s.SetSetting(key, "x"); !errors.Is(err, storage.ErrValidation) {
				t.Errorf("SetSetting(%q): expected ErrValidation, got: %v", key, err)
			}
		}
	})
}

func TestMarkdownStorage(t *testing.T) {
	runContractTests(t, "Markdown", markdownFactory)
}

func TestSQLiteStorage(t *testing.T) {
	runContractTests(t, "SQLite", sqliteFactory(sqlite.DriverLibSQL))
}

func TestSQLiteModernCStorage(t *testing.T) {
	runContractTests(t, "SQLiteModernC", sqliteFactory(sqlite.DriverModernC))
}

func TestAppwriteStorage(t *testing.T) {
	runContractTests(t, "Appwrite", appwriteFactory)
}
