package storage

import (
	"fmt"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/ids"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/task"
)

// Now returns the current time as stored by every backend: UTC, whole seconds.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// ValidateTask checks a task before it is written.
func ValidateTask(t task.Task) error {
	if err := ids.Validate(t.ID); err != nil {
		return invalid(err)
	}
	if err := t.Validate(); err != nil {
		return invalid(err)
	}
	return nil
}

// ValidateFolder checks a folder before it is written.
func ValidateFolder(f note.Folder) error {
	if err := ids.Validate(f.ID); err != nil {
		return invalid(err)
	}
	if err := note.ValidateFolderName(f.Name); err != nil {
		return invalid(err)
	}
	if f.ParentID == f.ID {
		return invalid(fmt.Errorf("folder %s cannot be its own parent", f.ID))
	}
	return nil
}

// ValidateNote checks a note before it is written.
func ValidateNote(n note.Note) error {
	if err := ids.Validate(n.ID); err != nil {
		return invalid(err)
	}
	if err := note.ValidateTitle(n.Title); err != nil {
		return invalid(err)
	}
	return nil
}

// ValidateSession checks a session before it is logged.
func ValidateSession(s pomodoro.Session) error {
	if s.Key == "" {
		return invalid(fmt.Errorf("session key must not be empty"))
	}
	if _, err := pomodoro.ParsePhase(string(s.Phase)); err != nil {
		return invalid(err)
	}
	if s.EndedAt.Before(s.StartedAt) {
		return invalid(fmt.Errorf("session ends before it starts"))
	}
	return nil
}

// ValidateEvent checks an event before it is written.
func ValidateEvent(e event.Event) error {
	if err := ids.Validate(e.ID); err != nil {
		return invalid(err)
	}
	if err := e.Validate(); err != nil {
		return invalid(err)
	}
	return nil
}
