package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/storage"
)

const sessionColumns = "id, key, phase, task_id, started_at, ended_at, planned_seconds, elapsed_seconds, completed"

func scanSession(row scanner) (pomodoro.Session, error) {
	var (
		ps                 pomodoro.Session
		phase              string
		startedAt, endedAt string
		planned, elapsed   int64
		completed          int
	)
	if err := row.Scan(&ps.ID, &ps.Key, &phase, &ps.TaskID, &startedAt, &endedAt, &planned, &elapsed, &completed); err != nil {
		return pomodoro.Session{}, err
	}
	ps.Phase = pomodoro.Phase(phase)
	ps.Planned = time.Duration(planned) * time.Second
	ps.Elapsed = time.Duration(elapsed) * time.Second
	ps.Completed = completed != 0
	var err error
	if ps.StartedAt, err = parseTime(startedAt); err != nil {
		return pomodoro.Session{}, err
	}
	if ps.EndedAt, err = parseTime(endedAt); err != nil {
		return pomodoro.Session{}, err
	}
	return ps, nil
}

// LogSession records a finished pomodoro phase. A second session with the
// same key is ignored and reported as storage.ErrDuplicate.
func (s *Store) LogSession(ps pomodoro.Session) error {
	if err := storage.ValidateSession(ps); err != nil {
		return err
	}
	result, err := s.db.Exec(
		"INSERT OR IGNORE INTO sessions ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		ps.ID, ps.Key, string(ps.Phase), ps.TaskID, formatTime(ps.StartedAt), formatTime(ps.EndedAt),
		int64(ps.Planned/time.Second), int64(ps.Elapsed/time.Second), boolInt(ps.Completed),
	)
	if err != nil {
		return fmt.Errorf("%w: logging session: %v", storage.ErrStorage, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", storage.ErrStorage, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: session %s", storage.ErrDuplicate, ps.Key)
	}
	return nil
}

// ListSessions returns sessions matching the filter, oldest first.
func (s *Store) ListSessions(opts storage.SessionListOptions) ([]pomodoro.Session, error) {
	var (
		where []string
		args  []any
	)
	if opts.StartDate != nil {
		where = append(where, "started_at >= ?")
		args = append(args, formatTime(*opts.StartDate))
	}
	if opts.EndDate != nil {
		where = append(where, "started_at < ?")
		args = append(args, formatTime(*opts.EndDate))
	}
	if opts.Phase != "" {
		where = append(where, "phase = ?")
		args = append(args, string(opts.Phase))
	}
	if opts.TaskID != "" {
		where = append(where, "task_id = ?")
		args = append(args, opts.TaskID)
	}
	if opts.CompletedOnly {
		where = append(where, "completed = 1")
	}

	query := "SELECT " + sessionColumns + " FROM sessions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at ASC, key ASC"
	query, args = withPaging(query, args, opts.Limit, 0)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing sessions: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	var sessions []pomodoro.Session
	for rows.Next() {
		ps, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning session: %v", storage.ErrStorage, err)
		}
		sessions = append(sessions, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sessions: %v", storage.ErrStorage, err)
	}
	return sessions, nil
}

const eventColumns = `id, title, description, location, start_at, end_at, all_day, color, source,
	google_id, etag, created_at, updated_at, synced_at`

func scanEvent(row scanner) (event.Event, error) {
	var (
		e                      event.Event
		startAt, endAt, source string
		createdAt, updatedAt   string
		allDay                 int
		googleID, syncedAt     sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &startAt, &endAt, &allDay, &e.Color, &source,
		&googleID, &e.ETag, &createdAt, &updatedAt, &syncedAt); err != nil {
		return event.Event{}, err
	}
	e.AllDay = allDay != 0
	e.Source = event.Source(source)
	e.GoogleID = googleID.String
	var err error
	if e.Start, err = parseTime(startAt); err != nil {
		return event.Event{}, err
	}
	if e.End, err = parseTime(endAt); err != nil {
		return event.Event{}, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return event.Event{}, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return event.Event{}, err
	}
	if e.SyncedAt, err = parseTimePtr(syncedAt); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

// CreateEvent persists a new event. GoogleIDs are unique across events.
func (s *Store) CreateEvent(e event.Event) error {
	if err := storage.ValidateEvent(e); err != nil {
		return err
	}
	_, err := s.db.Exec(
		"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Title, e.Description, e.Location, formatTime(e.Start), formatTime(e.End), boolInt(e.AllDay),
		e.Color, string(e.Source), nullable(e.GoogleID), e.ETag,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt), formatTimePtr(e.SyncedAt),
	)
	if err != nil {
		return insertErr("event", e.ID, err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(id string) (event.Event, error) {
	e, err := scanEvent(s.db.QueryRow("SELECT "+eventColumns+" FROM events WHERE id = ?", id))
	if err != nil {
		return event.Event{}, notFoundOr(err, "event")
	}
	return e, nil
}

// GetEventByGoogleID retrieves the event linked to a Google Calendar event.
func (s *Store) GetEventByGoogleID(googleID string) (event.Event, error) {
	if googleID == "" {
		return event.Event{}, storage.ErrNotFound
	}
	e, err := scanEvent(s.db.QueryRow("SELECT "+eventColumns+" FROM events WHERE google_id = ?", googleID))
	if err != nil {
		return event.Event{}, notFoundOr(err, "event")
	}
	return e, nil
}

// ListEvents returns events overlapping the window, ordered by start.
func (s *Store) ListEvents(opts storage.EventListOptions) ([]event.Event, error) {
	var (
		where []string
		args  []any
	)
	if opts.To != nil {
		where = append(where, "start_at < ?")
		args = append(args, formatTime(*opts.To))
	}
	if opts.From != nil {
		where = append(where, "end_at >= ?")
		args = append(args, formatTime(*opts.From))
	}
	if opts.Source != "" {
		where = append(where, "source = ?")
		args = append(args, string(opts.Source))
	}
	if opts.Linked != nil {
		if *opts.Linked {
			where = append(where, "google_id IS NOT NULL")
		} else {
			where = append(where, "google_id IS NULL")
		}
	}

	query := "SELECT " + eventColumns + " FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_at ASC, id ASC"
	query, args = withPaging(query, args, opts.Limit, 0)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing events: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning event: %v", storage.ErrStorage, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating events: %v", storage.ErrStorage, err)
	}
	return events, nil
}

// UpdateEvent replaces a stored event and stamps UpdatedAt. Sync metadata
// (GoogleID, ETag, SyncedAt) is written as given.
func (s *Store) UpdateEvent(e event.Event) (event.Event, error) {
	if err := storage.ValidateEvent(e); err != nil {
		return event.Event{}, err
	}
	e.UpdatedAt = storage.Now()
	err := execOne(s.db, "updating event",
		`UPDATE events SET title = ?, description = ?, location = ?, start_at = ?, end_at = ?, all_day = ?,
			color = ?, source = ?, google_id = ?, etag = ?, updated_at = ?, synced_at = ?
		 WHERE id = ?`,
		e.Title, e.Description, e.Location, formatTime(e.Start), formatTime(e.End), boolInt(e.AllDay),
		e.Color, string(e.Source), nullable(e.GoogleID), e.ETag, formatTime(e.UpdatedAt), formatTimePtr(e.SyncedAt),
		e.ID,
	)
	if err != nil {
		return event.Event{}, err
	}
	return s.GetEvent(e.ID)
}

// MarkEventSynced links an event to Google Calendar without touching UpdatedAt.
func (s *Store) MarkEventSynced(id, googleID, etag string, at time.Time) error {
	return execOne(s.db, "marking event synced",
		"UPDATE events SET google_id = ?, etag = ?, synced_at = ? WHERE id = ?",
		nullable(googleID), etag, formatTime(at), id,
	)
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(id string) error {
	return execOne(s.db, "deleting event", "DELETE FROM events WHERE id = ?", id)
}
