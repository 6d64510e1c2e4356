package pomodoro

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)

func TestStartPauseResume(t *testing.T) {
	tm := NewTimer(DefaultSettings())
	if err := tm.Pause(t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Pause on idle = %v, want ErrInvalidTransition", err)
	}
	if err := tm.Start(t0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := tm.Start(t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double Start = %v", err)
	}
	if err := tm.Pause(t0.Add(10 * time.Minute)); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	// Time spent paused does not count.
	if got := tm.Elapsed(t0.Add(time.Hour)); got != 10*time.Minute {
		t.Errorf("elapsed while paused = %v", got)
	}
	if err := tm.Resume(t0.Add(time.Hour)); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := tm.Remaining(t0.Add(time.Hour + 5*time.Minute)); got != 10*time.Minute {
		t.Errorf("remaining = %v, want 10m", got)
	}
	if got := tm.Progress(t0.Add(time.Hour + 5*time.Minute)); got != 0.6 {
		t.Errorf("progress = %v, want 0.6", got)
	}
}

func TestTickCompletesFocusAtExactEnd(t *testing.T) {
	tm := NewTimer(DefaultSettings())
	tm.SetTaskID("task0001")
	_ = tm.Start(t0)
	if s := tm.Tick(t0.Add(24 * time.Minute)); s != nil {
		t.Fatalf("tick before end returned %+v", s)
	}
	s := tm.Tick(t0.Add(26 * time.Minute))
	if s == nil {
		t.Fatal("expected completed session")
	}
	if !s.Completed || s.Phase != PhaseFocus || s.TaskID != "task0001" {
		t.Errorf("session = %+v", s)
	}
	if !s.EndedAt.Equal(t0.Add(25 * time.Minute)) {
		t.Errorf("ended_at = %v", s.EndedAt)
	}
	if s.Key != SessionKey(PhaseFocus, t0) {
		t.Errorf("key = %q", s.Key)
	}
	if tm.Phase() != PhaseShortBreak || tm.State() != StateIdle {
		t.Errorf("after focus: %s/%s", tm.Phase(), tm.State())
	}
	if tm.CompletedFocus() != 1 {
		t.Errorf("completed focus = %d", tm.CompletedFocus())
	}
}

func TestLongBreakEveryInterval(t *testing.T) {
	s := DefaultSettings()
	s.AutoStartBreaks = true
	s.AutoStartFocus = true
	tm := NewTimer(s)
	_ = tm.Start(t0)

	// Catch up four full cycles in one go.
	now := t0.Add(4*25*time.Minute + 3*5*time.Minute + time.Second)
	var phases []Phase
	for sess := tm.Tick(now); sess != nil; sess = tm.Tick(now) {
		phases = append(phases, sess.Phase)
	}
	want := []Phase{PhaseFocus, PhaseShortBreak, PhaseFocus, PhaseShortBreak, PhaseFocus, PhaseShortBreak, PhaseFocus}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phases = %v, want %v", phases, want)
		}
	}
	if tm.Phase() != PhaseLongBreak || tm.State() != StateRunning {
		t.Errorf("after fourth focus: %s/%s", tm.Phase(), tm.State())
	}
}

func TestBreakSessionsCarryNoTask(t *testing.T) {
	s := DefaultSettings()
	s.AutoStartBreaks = true
	tm := NewTimer(s)
	tm.SetTaskID("task0001")
	_ = tm.Start(t0)
	_ = tm.Tick(t0.Add(25 * time.Minute))
	brk := tm.Tick(t0.Add(30 * time.Minute))
	if brk == nil || brk.Phase != PhaseShortBreak {
		t.Fatalf("expected short break session, got %+v", brk)
	}
	if brk.TaskID != "" {
		t.Errorf("break session task = %q", brk.TaskID)
	}
	if tm.Phase() != PhaseFocus || tm.State() != StateIdle {
		t.Errorf("after break: %s/%s", tm.Phase(), tm.State())
	}
}

func TestSkip(t *testing.T) {
	tm := NewTimer(DefaultSettings())
	if s := tm.Skip(t0); s != nil {
		t.Errorf("skip while idle recorded %+v", s)
	}
	if tm.Phase() != PhaseShortBreak {
		t.Fatalf("phase after skipping focus = %s", tm.Phase())
	}
	_ = tm.SetPhase(PhaseFocus)
	_ = tm.Start(t0)
	s := tm.Skip(t0.Add(7 * time.Minute))
	if s == nil || s.Completed || s.Elapsed != 7*time.Minute {
		t.Fatalf("skip session = %+v", s)
	}
	if tm.CompletedFocus() != 0 {
		t.Errorf("skipped focus counted: %d", tm.CompletedFocus())
	}
}

func TestSnapshotRestore(t *testing.T) {
	tm := NewTimer(DefaultSettings())
	tm.SetTaskID("abc")
	_ = tm.Start(t0)
	_ = tm.Pause(t0.Add(3 * time.Minute))
	snap := tm.Snapshot()

	other := NewTimer(DefaultSettings())
	if err := other.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if other.State() != StatePaused || other.TaskID() != "abc" {
		t.Errorf("restored %s/%s", other.State(), other.TaskID())
	}
	if got := other.Elapsed(t0.Add(time.Hour)); got != 3*time.Minute {
		t.Errorf("restored elapsed = %v", got)
	}
	if err := other.Restore(Snapshot{Phase: "nap", State: StateIdle}); err == nil {
		t.Error("expected error for invalid phase")
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	s := DefaultSettings()
	s.LongBreakInterval = 0
	if err := s.Validate(); err == nil {
		t.Error("expected error for zero interval")
	}
}
