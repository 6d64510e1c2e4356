// Package event defines calendar events and the matching rules used when
// reconciling them with Google Calendar.
package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/ids"
)

// Source records where an event was first created.
type Source string

const (
	SourceLocal  Source = "local"
	SourceGoogle Source = "google"
)

// Event is a calendar entry. GoogleID is set once the event is linked to a
// Google Calendar event.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	AllDay      bool       `json:"all_day,omitempty"`
	Color       string     `json:"color,omitempty"`
	Source      Source     `json:"source"`
	GoogleID    string     `json:"google_id,omitempty"`
	ETag        string     `json:"etag,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
}

// New builds a local event with a fresh ID.
func New(title string, start, end time.Time, now time.Time) (Event, error) {
	id, err := ids.NewID()
	if err != nil {
		return Event{}, fmt.Errorf("generating event ID: %w", err)
	}
	now = now.UTC().Truncate(time.Second)
	e := Event{
		ID:        id,
		Title:     strings.TrimSpace(title),
		Start:     start,
		End:       end,
		Source:    SourceLocal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Validate checks the title and time range.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("event title must not be empty")
	}
	if e.Start.IsZero() {
		return fmt.Errorf("event start must be set")
	}
	if e.End.Before(e.Start) {
		return fmt.Errorf("event end %s is before start %s",
			e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
	}
	return nil
}

// MatchKey identifies an event by title and start minute. Two events with
// equal keys are treated as the same event when one of them has not yet been
// linked to Google Calendar.
func (e *Event) MatchKey() string {
	return strings.ToLower(strings.TrimSpace(e.Title)) + "|" +
		e.Start.UTC().Truncate(time.Minute).Format("2006-01-02T15:04Z")
}

// Dirty reports whether the event changed locally since its last sync.
func (e *Event) Dirty() bool {
	if e.SyncedAt == nil {
		return true
	}
	return e.UpdatedAt.After(*e.SyncedAt)
}

// Linked reports whether the event is linked to a Google Calendar event.
func (e *Event) Linked() bool {
	return e.GoogleID != ""
}

// Duration returns End - Start.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Overlaps reports whether the two events share any instant.
func (e *Event) Overlaps(other Event) bool {
	return e.Start.Before(other.End) && other.Start.Before(e.End)
}

// OnDay reports whether any part of the event falls on the calendar day of day.
func (e *Event) OnDay(day time.Time) bool {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	if e.Start.Equal(e.End) {
		return !e.Start.Before(start) && e.Start.Before(end)
	}
	return e.Start.Before(end) && start.Before(e.End)
}
