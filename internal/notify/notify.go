// Package notify sends desktop notifications when a timer phase ends.
package notify

import (
	"fmt"
	"strings"

	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/gen2brain/beeep"
)

// Notifier delivers a short message to the user.
type Notifier interface {
	Notify(title, message string) error
}

// Desktop sends notifications through the OS notification center. With
// Alert set, notifications also play the system alert sound.
type Desktop struct {
	Alert bool
}

func init() {
	beeep.AppName = "focusflow"
}

// Notify shows a desktop notification.
func (d Desktop) Notify(title, message string) error {
	if d.Alert {
		return beeep.Alert(title, message, "")
	}
	return beeep.Notify(title, message, "")
}

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(string, string) error { return nil }

// PhaseMessage builds the notification shown when s ends and next begins.
func PhaseMessage(s pomodoro.Session, next pomodoro.Phase) (string, string) {
	if !s.Completed {
		return s.Phase.Label() + " skipped", fmt.Sprintf("Up next: %s.", next.Label())
	}
	switch s.Phase {
	case pomodoro.PhaseFocus:
		return "Focus complete", fmt.Sprintf("%d minutes of focus logged. Time for a %s.",
			s.Minutes(), strings.ToLower(next.Label()))
	default:
		return s.Phase.Label() + " over", "Back to focus."
	}
}
