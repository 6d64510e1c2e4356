package pomodoro

import (
	"fmt"
	"time"
)

// Snapshot is the serializable state of a Timer.
type Snapshot struct {
	Phase          Phase         `json:"phase"`
	State          State         `json:"state"`
	StartedAt      time.Time     `json:"started_at,omitempty"`
	ResumedAt      time.Time     `json:"resumed_at,omitempty"`
	Elapsed        time.Duration `json:"elapsed"`
	CompletedFocus int           `json:"completed_focus"`
	TaskID         string        `json:"task_id,omitempty"`
}

// Timer is the focus timer state machine. It never reads the clock itself;
// every operation takes the current time. A Timer is not safe for concurrent use.
type Timer struct {
	settings       Settings
	phase          Phase
	state          State
	startedAt      time.Time
	resumedAt      time.Time
	elapsed        time.Duration
	completedFocus int
	taskID         string
}

// NewTimer returns an idle timer positioned at a focus phase.
func NewTimer(s Settings) *Timer {
	return &Timer{settings: s, phase: PhaseFocus, state: StateIdle}
}

func (t *Timer) Settings() Settings     { return t.settings }
func (t *Timer) Phase() Phase           { return t.phase }
func (t *Timer) State() State           { return t.state }
func (t *Timer) CompletedFocus() int    { return t.completedFocus }
func (t *Timer) TaskID() string         { return t.taskID }
func (t *Timer) Planned() time.Duration { return t.settings.Duration(t.phase) }

// SetTaskID links subsequent focus sessions to a task.
func (t *Timer) SetTaskID(id string) { t.taskID = id }

// SetPhase moves an idle timer to another phase.
func (t *Timer) SetPhase(p Phase) error {
	if t.state != StateIdle {
		return fmt.Errorf("%w: cannot change phase while %s", ErrInvalidTransition, t.state)
	}
	t.phase = p
	t.elapsed = 0
	return nil
}

// Elapsed returns the time spent in the current phase, capped at the planned duration.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	e := t.elapsed
	if t.state == StateRunning {
		e += now.Sub(t.resumedAt)
	}
	if e < 0 {
		e = 0
	}
	if p := t.Planned(); e > p {
		e = p
	}
	return e
}

// Remaining returns the time left in the current phase.
func (t *Timer) Remaining(now time.Time) time.Duration {
	return t.Planned() - t.Elapsed(now)
}

// Progress returns the fraction of the phase that has elapsed, in [0,1].
func (t *Timer) Progress(now time.Time) float64 {
	p := t.Planned()
	if p <= 0 {
		return 0
	}
	return float64(t.Elapsed(now)) / float64(p)
}

// Start begins the current phase.
func (t *Timer) Start(now time.Time) error {
	if t.state != StateIdle {
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidTransition, t.state)
	}
	t.state = StateRunning
	t.startedAt = now
	t.resumedAt = now
	t.elapsed = 0
	return nil
}

// Pause stops the clock, keeping the elapsed time.
func (t *Timer) Pause(now time.Time) error {
	if t.state != StateRunning {
		return fmt.Errorf("%w: cannot pause while %s", ErrInvalidTransition, t.state)
	}
	t.elapsed = t.Elapsed(now)
	t.state = StatePaused
	return nil
}

// Resume restarts the clock after a pause.
func (t *Timer) Resume(now time.Time) error {
	if t.state != StatePaused {
		return fmt.Errorf("%w: cannot resume while %s", ErrInvalidTransition, t.state)
	}
	t.resumedAt = now
	t.state = StateRunning
	return nil
}

// Toggle pauses a running timer, resumes a paused one and starts an idle one.
func (t *Timer) Toggle(now time.Time) error {
	switch t.state {
	case StateRunning:
		return t.Pause(now)
	case StatePaused:
		return t.Resume(now)
	}
	return t.Start(now)
}

// Reset abandons the current phase without recording anything.
func (t *Timer) Reset() {
	t.state = StateIdle
	t.elapsed = 0
	t.startedAt = time.Time{}
	t.resumedAt = time.Time{}
}

// Skip ends the current phase early. If any time was spent, the returned
// session records the interruption; skipped phases never count toward the
// long break cycle.
func (t *Timer) Skip(now time.Time) *Session {
	var s *Session
	if t.state != StateIdle {
		if elapsed := t.Elapsed(now); elapsed > 0 {
			rec := NewSession(t.phase, t.sessionTaskID(), t.startedAt, now, t.Planned(), elapsed, false)
			s = &rec
		}
	}
	next := PhaseFocus
	if t.phase == PhaseFocus {
		next = PhaseShortBreak
	}
	t.advance(next, now)
	return s
}

// Tick completes the current phase if its planned duration has elapsed and
// returns the completed session. It completes at most one phase per call;
// callers catching up on a long gap should call Tick until it returns nil.
func (t *Timer) Tick(now time.Time) *Session {
	if t.state != StateRunning {
		return nil
	}
	planned := t.Planned()
	if t.elapsed+now.Sub(t.resumedAt) < planned {
		return nil
	}
	end := t.resumedAt.Add(planned - t.elapsed)
	rec := NewSession(t.phase, t.sessionTaskID(), t.startedAt, end, planned, planned, true)

	next := PhaseFocus
	if t.phase == PhaseFocus {
		t.completedFocus++
		next = PhaseShortBreak
		if t.completedFocus%t.settings.LongBreakInterval == 0 {
			next = PhaseLongBreak
		}
	}
	t.advance(next, end)
	return &rec
}

func (t *Timer) sessionTaskID() string {
	if t.phase == PhaseFocus {
		return t.taskID
	}
	return ""
}

// advance moves to the next phase, starting it at `at` when the matching
// auto-start flag is set.
func (t *Timer) advance(next Phase, at time.Time) {
	t.Reset()
	t.phase = next
	auto := t.settings.AutoStartFocus
	if next != PhaseFocus {
		auto = t.settings.AutoStartBreaks
	}
	if auto {
		_ = t.Start(at)
	}
}

// Snapshot captures the timer state for persistence.
func (t *Timer) Snapshot() Snapshot {
	return Snapshot{
		Phase:          t.phase,
		State:          t.state,
		StartedAt:      t.startedAt,
		ResumedAt:      t.resumedAt,
		Elapsed:        t.elapsed,
		CompletedFocus: t.completedFocus,
		TaskID:         t.taskID,
	}
}

// Restore loads a snapshot taken by Snapshot.
func (t *Timer) Restore(s Snapshot) error {
	switch s.Phase {
	case PhaseFocus, PhaseShortBreak, PhaseLongBreak:
	default:
		return fmt.Errorf("snapshot has invalid phase %q", s.Phase)
	}
	switch s.State {
	case StateIdle, StateRunning, StatePaused:
	default:
		return fmt.Errorf("snapshot has invalid state %q", s.State)
	}
	t.phase = s.Phase
	t.state = s.State
	t.startedAt = s.StartedAt
	t.resumedAt = s.ResumedAt
	t.elapsed = s.Elapsed
	t.completedFocus = s.CompletedFocus
	t.taskID = s.TaskID
	return nil
}
