// Package pomodoro implements the focus timer: a small state machine that
// alternates focus phases with short and long breaks and emits a Session
// record whenever a phase ends.
package pomodoro

import (
	"errors"
	"fmt"
	"time"

	"github.com/chris-regnier/focusflow/internal/ids"
)

// Phase is the kind of interval the timer is counting.
type Phase string

const (
	PhaseFocus      Phase = "focus"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// Label returns a human readable phase name.
func (p Phase) Label() string {
	switch p {
	case PhaseFocus:
		return "Focus"
	case PhaseShortBreak:
		return "Short break"
	case PhaseLongBreak:
		return "Long break"
	}
	return string(p)
}

// ParsePhase accepts the canonical names and short aliases.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "focus", "work", "pomodoro":
		return PhaseFocus, nil
	case "short_break", "short-break", "short":
		return PhaseShortBreak, nil
	case "long_break", "long-break", "long":
		return PhaseLongBreak, nil
	}
	return "", fmt.Errorf("invalid phase %q (use focus, short_break or long_break)", s)
}

// State is the run state of the timer.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// ErrInvalidTransition is returned when an operation is not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid timer transition")

// Settings configures phase lengths and auto-start behaviour.
type Settings struct {
	Focus             time.Duration `json:"focus"`
	ShortBreak        time.Duration `json:"short_break"`
	LongBreak         time.Duration `json:"long_break"`
	LongBreakInterval int           `json:"long_break_interval"`
	AutoStartBreaks   bool          `json:"auto_start_breaks"`
	AutoStartFocus    bool          `json:"auto_start_focus"`
}

// DefaultSettings returns the classic 25/5/15 cycle with a long break every fourth focus.
func DefaultSettings() Settings {
	return Settings{
		Focus:             25 * time.Minute,
		ShortBreak:        5 * time.Minute,
		LongBreak:         15 * time.Minute,
		LongBreakInterval: 4,
	}
}

// Validate rejects non-positive durations and intervals.
func (s Settings) Validate() error {
	if s.Focus <= 0 || s.ShortBreak <= 0 || s.LongBreak <= 0 {
		return fmt.Errorf("pomodoro durations must be positive")
	}
	if s.LongBreakInterval < 1 {
		return fmt.Errorf("long break interval must be at least 1")
	}
	return nil
}

// Duration returns the planned length of a phase.
func (s Settings) Duration(p Phase) time.Duration {
	switch p {
	case PhaseShortBreak:
		return s.ShortBreak
	case PhaseLongBreak:
		return s.LongBreak
	}
	return s.Focus
}

// Session is the persisted record of one phase.
type Session struct {
	ID        string        `json:"id"`
	Key       string        `json:"key"`
	Phase     Phase         `json:"phase"`
	TaskID    string        `json:"task_id,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Planned   time.Duration `json:"planned"`
	Elapsed   time.Duration `json:"elapsed"`
	Completed bool          `json:"completed"`
}

// SessionKey is the dedup key for a session: logging the same phase run
// twice yields the same key.
func SessionKey(p Phase, startedAt time.Time) string {
	return string(p) + ":" + startedAt.UTC().Format(time.RFC3339)
}

// NewSession builds a session record with its key and derived ID filled in.
func NewSession(p Phase, taskID string, startedAt, endedAt time.Time, planned, elapsed time.Duration, completed bool) Session {
	startedAt = startedAt.UTC().Truncate(time.Second)
	key := SessionKey(p, startedAt)
	return Session{
		ID:        ids.FromKey(key),
		Key:       key,
		Phase:     p,
		TaskID:    taskID,
		StartedAt: startedAt,
		EndedAt:   endedAt.UTC().Truncate(time.Second),
		Planned:   planned,
		Elapsed:   elapsed.Truncate(time.Second),
		Completed: completed,
	}
}

// IsFocus reports whether the session was a focus phase.
func (s *Session) IsFocus() bool {
	return s.Phase == PhaseFocus
}

// Minutes returns the elapsed time in whole minutes.
func (s *Session) Minutes() int {
	return int(s.Elapsed / time.Minute)
}
