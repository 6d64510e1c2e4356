// Package calsync reconciles local calendar events with a remote calendar.
// Synchronization is best effort: per-event failures are collected in the
// result and never abort the run.
package calsync

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
)

// Errors a Remote reports so the engine can decide what to do next.
var (
	// ErrRemoteNotFound means the remote event does not exist (or was deleted).
	ErrRemoteNotFound = errors.New("remote event not found")
	// ErrTransient marks failures worth retrying: rate limits, 5xx, timeouts.
	ErrTransient = errors.New("transient remote error")
)

// RemoteEvent is the remote calendar's view of an event.
type RemoteEvent struct {
	ID          string
	ETag        string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Updated     time.Time
}

// Remote is a calendar service the engine synchronizes with.
type Remote interface {
	// ListEvents returns the events overlapping [from, to), with recurring
	// events expanded and cancelled events omitted.
	ListEvents(ctx context.Context, from, to time.Time) ([]RemoteEvent, error)
	GetEvent(ctx context.Context, id string) (RemoteEvent, error)
	InsertEvent(ctx context.Context, e event.Event) (RemoteEvent, error)
	UpdateEvent(ctx context.Context, id string, e event.Event) (RemoteEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// untitled stands in for a blank remote summary, which local events forbid.
const untitled = "(no title)"

func (r RemoteEvent) title() string {
	if strings.TrimSpace(r.Title) == "" {
		return untitled
	}
	return r.Title
}

func (r RemoteEvent) end() time.Time {
	if r.End.Before(r.Start) {
		return r.Start
	}
	return r.End
}

// MatchKey mirrors event.Event.MatchKey for a remote event.
func (r RemoteEvent) MatchKey() string {
	e := event.Event{Title: r.title(), Start: r.Start}
	return e.MatchKey()
}

// apply copies the remote fields onto a local event, normalizing values a
// local event cannot hold.
func (r RemoteEvent) apply(e *event.Event) {
	e.Title = r.title()
	e.Description = r.Description
	e.Location = r.Location
	e.Start = r.Start
	e.End = r.end()
	e.AllDay = r.AllDay
}

// toLocal builds a new local event from a remote one.
func (r RemoteEvent) toLocal(now time.Time) (event.Event, error) {
	e, err := event.New(r.title(), r.Start, r.end(), now)
	if err != nil {
		return event.Event{}, err
	}
	r.apply(&e)
	e.Source = event.SourceGoogle
	return e, nil
}
