package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris-regnier/focusflow/internal/focus"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/task"
)

func TestTimerLogCreditsTask(t *testing.T) {
	setupTestEnv(t)

	var tk task.Task
	runJSON(t, &tk, "task", "add", "Deep work")

	var s pomodoro.Session
	runJSON(t, &s, "timer", "log", "--task", tk.ID, "--duration", "25m")
	if s.Phase != pomodoro.PhaseFocus || !s.Completed || s.TaskID != tk.ID {
		t.Errorf("session = %+v", s)
	}
	if s.Elapsed != 25*time.Minute {
		t.Errorf("elapsed = %s, want 25m", s.Elapsed)
	}

	got, err := store.GetTask(tk.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.CompletedPomodoros != 1 {
		t.Errorf("completed pomodoros = %d, want 1", got.CompletedPomodoros)
	}

	// Interrupted sessions are logged but do not count.
	runJSON(t, &s, "timer", "log", "--task", tk.ID, "--duration", "10m", "--at", "today 06:00", "--interrupted")
	got, _ = store.GetTask(tk.ID)
	if got.CompletedPomodoros != 1 {
		t.Errorf("completed pomodoros after interrupted session = %d, want 1", got.CompletedPomodoros)
	}
}

func TestTimerLogValidation(t *testing.T) {
	setupTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad phase", []string{"timer", "log", "--phase", "nap"}},
		{"zero duration", []string{"timer", "log", "--duration", "0s"}},
		{"unknown task", []string{"timer", "log", "--task", "zzzzzzzz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCmd(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTimerHistory(t *testing.T) {
	setupTestEnv(t)

	mustRun(t, "timer", "log", "--duration", "25m")
	mustRun(t, "timer", "log", "--phase", "short", "--duration", "5m", "--at", "today 05:00")
	mustRun(t, "timer", "log", "--duration", "7m", "--at", "today 04:00", "--interrupted")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"completed", nil, 2},
		{"all", []string{"--all"}, 3},
		{"focus only", []string{"--phase", "focus"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []pomodoro.Session
			runJSON(t, &got, append([]string{"timer", "history"}, tt.args...)...)
			if len(got) != tt.want {
				t.Errorf("sessions = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestTimerStartHeadlessSavesSnapshot(t *testing.T) {
	setupTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runCmdContext(t, ctx, "timer", "start", "--headless", "--phase", "short"); err != nil {
		t.Fatalf("timer start: %v", err)
	}

	snap, ok, err := focus.LoadSnapshot(store)
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot = %v, %v", ok, err)
	}
	if snap.Phase != pomodoro.PhaseShortBreak || snap.State != pomodoro.StateRunning {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestTimerResumeCatchesUp(t *testing.T) {
	setupTestEnv(t)

	var tk task.Task
	runJSON(t, &tk, "task", "add", "Catch up")

	settings, err := pomodoroSettings()
	if err != nil {
		t.Fatal(err)
	}
	timer := pomodoro.NewTimer(settings)
	timer.SetTaskID(tk.ID)
	if err := timer.Start(time.Now().Add(-27 * time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := focus.SaveSnapshot(store, timer.Snapshot()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runCmdContext(t, ctx, "timer", "resume", "--headless"); err != nil {
		t.Fatalf("timer resume: %v", err)
	}

	sessions, err := store.ListSessions(storage.SessionListOptions{Phase: pomodoro.PhaseFocus})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || !sessions[0].Completed {
		t.Fatalf("focus sessions = %+v, want one completed", sessions)
	}
	got, _ := store.GetTask(tk.ID)
	if got.CompletedPomodoros != 1 {
		t.Errorf("completed pomodoros = %d, want 1", got.CompletedPomodoros)
	}
}

func TestTimerResumeWithoutSnapshot(t *testing.T) {
	setupTestEnv(t)

	_, err := runCmd(t, "timer", "resume")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
