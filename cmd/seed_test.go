package cmd

import (
	"testing"

	"github.com/chris-regnier/focusflow/internal/storage"
)

func TestSeedProfiles(t *testing.T) {
	for _, name := range profileNames() {
		t.Run(name, func(t *testing.T) {
			setupTestEnv(t)

			var res seedResult
			runJSON(t, &res, "seed", name, "--seed", "7")
			if res.Profile != name {
				t.Errorf("profile = %q", res.Profile)
			}
			if res.Tasks == 0 || res.Sessions == 0 || res.Notes == 0 || res.Events == 0 {
				t.Errorf("result = %+v, want every kind of record", res)
			}

			tasks, err := store.ListTasks(storage.TaskListOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if len(tasks) != res.Tasks {
				t.Errorf("stored tasks = %d, reported %d", len(tasks), res.Tasks)
			}
			notes, err := store.ListNotes(storage.NoteListOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if len(notes) != res.Notes {
				t.Errorf("stored notes = %d, reported %d", len(notes), res.Notes)
			}
		})
	}
}

func TestSeedUnknownProfile(t *testing.T) {
	setupTestEnv(t)

	if _, err := runCmd(t, "seed", "astronaut"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestSeedList(t *testing.T) {
	setupTestEnv(t)

	out := mustRun(t, "seed", "--list")
	for _, name := range profileNames() {
		if !containsLine(out, name) {
			t.Errorf("profile %q not listed:\n%s", name, out)
		}
	}
}
