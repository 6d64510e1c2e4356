package markdown

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/storage"
)

type sessionFrontMatter struct {
	ID        string `yaml:"id"`
	Key       string `yaml:"key"`
	Phase     string `yaml:"phase"`
	TaskID    string `yaml:"task_id,omitempty"`
	StartedAt string `yaml:"started_at"`
	EndedAt   string `yaml:"ended_at"`
	Planned   int64  `yaml:"planned_seconds"`
	Elapsed   int64  `yaml:"elapsed_seconds"`
	Completed bool   `yaml:"completed"`
}

// sessionPath files sessions by start date: sessions/YYYY/MM/DD/<id>.md.
func (s *Store) sessionPath(ps pomodoro.Session) string {
	t := ps.StartedAt.UTC()
	return filepath.Join(s.baseDir, sessionsDir, t.Format("2006"), t.Format("01"), t.Format("02"), ps.ID+".md")
}

func readSession(path string) (pomodoro.Session, error) {
	var fm sessionFrontMatter
	if _, err := readDoc(path, &fm); err != nil {
		return pomodoro.Session{}, err
	}
	ps := pomodoro.Session{
		ID:        fm.ID,
		Key:       fm.Key,
		Phase:     pomodoro.Phase(fm.Phase),
		TaskID:    fm.TaskID,
		Planned:   time.Duration(fm.Planned) * time.Second,
		Elapsed:   time.Duration(fm.Elapsed) * time.Second,
		Completed: fm.Completed,
	}
	var err error
	if ps.StartedAt, err = parseTime("started_at", fm.StartedAt); err != nil {
		return pomodoro.Session{}, err
	}
	if ps.EndedAt, err = parseTime("ended_at", fm.EndedAt); err != nil {
		return pomodoro.Session{}, err
	}
	return ps, nil
}

// LogSession records a finished pomodoro phase. Session IDs derive from the
// key, so a repeated key resolves to an existing file.
func (s *Store) LogSession(ps pomodoro.Session) error {
	if err := storage.ValidateSession(ps); err != nil {
		return err
	}
	if !validID(ps.ID) {
		return fmt.Errorf("%w: invalid session ID %q", storage.ErrValidation, ps.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.sessionPath(ps)
	if exists(path) {
		return fmt.Errorf("%w: session %s", storage.ErrDuplicate, ps.Key)
	}
	fm := sessionFrontMatter{
		ID:        ps.ID,
		Key:       ps.Key,
		Phase:     string(ps.Phase),
		TaskID:    ps.TaskID,
		StartedAt: formatTime(ps.StartedAt),
		EndedAt:   formatTime(ps.EndedAt),
		Planned:   int64(ps.Planned / time.Second),
		Elapsed:   int64(ps.Elapsed / time.Second),
		Completed: ps.Completed,
	}
	return s.writeDoc(path, fm, "")
}

// ListSessions returns sessions matching the filter, oldest first. Day
// directories outside the requested range are not read.
func (s *Store) ListSessions(opts storage.SessionListOptions) ([]pomodoro.Session, error) {
	var sessions []pomodoro.Session
	err := s.walkDocs(sessionsDir, func(path string) error {
		if !s.dayInRange(path, opts) {
			return nil
		}
		ps, err := readSession(path)
		if err != nil {
			return nil // skip malformed files
		}
		sessions = append(sessions, ps)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return storage.FilterSessions(sessions, opts), nil
}

// dayInRange reports whether the YYYY/MM/DD directory of path can hold
// sessions inside the requested window.
func (s *Store) dayInRange(path string, opts storage.SessionListOptions) bool {
	rel, err := filepath.Rel(filepath.Join(s.baseDir, sessionsDir), filepath.Dir(path))
	if err != nil {
		return true
	}
	day, err := time.Parse("2006"+string(os.PathSeparator)+"01"+string(os.PathSeparator)+"02", rel)
	if err != nil {
		return true
	}
	if opts.StartDate != nil && day.AddDate(0, 0, 1).Before(opts.StartDate.UTC()) {
		return false
	}
	if opts.EndDate != nil && !day.Before(opts.EndDate.UTC()) {
		return false
	}
	return true
}

type eventFrontMatter struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Location  string `yaml:"location,omitempty"`
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	AllDay    bool   `yaml:"all_day,omitempty"`
	Color     string `yaml:"color,omitempty"`
	Source    string `yaml:"source"`
	GoogleID  string `yaml:"google_id,omitempty"`
	ETag      string `yaml:"etag,omitempty"`
	CreatedAt string `yaml:"created_at"`
	UpdatedAt string `yaml:"updated_at"`
	SyncedAt  string `yaml:"synced_at,omitempty"`
}

func (s *Store) writeEvent(e event.Event) error {
	fm := eventFrontMatter{
		ID:        e.ID,
		Title:     e.Title,
		Location:  e.Location,
		Start:     formatTime(e.Start),
		End:       formatTime(e.End),
		AllDay:    e.AllDay,
		Color:     e.Color,
		Source:    string(e.Source),
		GoogleID:  e.GoogleID,
		ETag:      e.ETag,
		CreatedAt: formatTime(e.CreatedAt),
		UpdatedAt: formatTime(e.UpdatedAt),
		SyncedAt:  formatTimePtr(e.SyncedAt),
	}
	return s.writeDoc(s.flatPath(eventsDir, e.ID), fm, e.Description)
}

func readEvent(path string) (event.Event, error) {
	var fm eventFrontMatter
	body, err := readDoc(path, &fm)
	if err != nil {
		return event.Event{}, err
	}
	e := event.Event{
		ID:          fm.ID,
		Title:       fm.Title,
		Description: body,
		Location:    fm.Location,
		AllDay:      fm.AllDay,
		Color:       fm.Color,
		Source:      event.Source(fm.Source),
		GoogleID:    fm.GoogleID,
		ETag:        fm.ETag,
	}
	if e.Start, err = parseTime("start", fm.Start); err != nil {
		return event.Event{}, err
	}
	if e.End, err = parseTime("end", fm.End); err != nil {
		return event.Event{}, err
	}
	if e.CreatedAt, err = parseTime("created_at", fm.CreatedAt); err != nil {
		return event.Event{}, err
	}
	if e.UpdatedAt, err = parseTime("updated_at", fm.UpdatedAt); err != nil {
		return event.Event{}, err
	}
	if e.SyncedAt, err = parseTimePtr("synced_at", fm.SyncedAt); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (s *Store) allEvents() ([]event.Event, error) {
	var events []event.Event
	err := s.walkDocs(eventsDir, func(path string) error {
		e, err := readEvent(path)
		if err != nil {
			return nil // skip malformed files
		}
		events = append(events, e)
		return nil
	})
	return events, err
}

// checkGoogleID rejects a GoogleID already linked to another event.
func (s *Store) checkGoogleID(id, googleID string) error {
	if googleID == "" {
		return nil
	}
	other, err := s.findByGoogleID(googleID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != id {
		return fmt.Errorf("%w: google event %s is already linked to %s", storage.ErrConflict, googleID, other.ID)
	}
	return nil
}

func (s *Store) findByGoogleID(googleID string) (event.Event, error) {
	events, err := s.allEvents()
	if err != nil {
		return event.Event{}, err
	}
	for _, e := range events {
		if e.GoogleID == googleID {
			return e, nil
		}
	}
	return event.Event{}, storage.ErrNotFound
}

// CreateEvent persists a new event as events/<id>.md.
func (s *Store) CreateEvent(e event.Event) error {
	if err := storage.ValidateEvent(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if exists(s.flatPath(eventsDir, e.ID)) {
		return fmt.Errorf("%w: event %s already exists", storage.ErrConflict, e.ID)
	}
	if err := s.checkGoogleID(e.ID, e.GoogleID); err != nil {
		return err
	}
	return s.writeEvent(e)
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(id string) (event.Event, error) {
	if !validID(id) {
		return event.Event{}, storage.ErrNotFound
	}
	return readEvent(s.flatPath(eventsDir, id))
}

// GetEventByGoogleID retrieves the event linked to a Google Calendar event.
func (s *Store) GetEventByGoogleID(googleID string) (event.Event, error) {
	if googleID == "" {
		return event.Event{}, storage.ErrNotFound
	}
	return s.findByGoogleID(googleID)
}

// ListEvents returns events overlapping the window, ordered by start.
func (s *Store) ListEvents(opts storage.EventListOptions) ([]event.Event, error) {
	events, err := s.allEvents()
	if err != nil {
		return nil, err
	}
	return storage.FilterEvents(events, opts), nil
}

// UpdateEvent replaces a stored event and stamps UpdatedAt.
func (s *Store) UpdateEvent(e event.Event) (event.Event, error) {
	if err := storage.ValidateEvent(e); err != nil {
		return event.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.GetEvent(e.ID)
	if err != nil {
		return event.Event{}, err
	}
	if err := s.checkGoogleID(e.ID, e.GoogleID); err != nil {
		return event.Event{}, err
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = storage.Now()
	if err := s.writeEvent(e); err != nil {
		return event.Event{}, err
	}
	return s.GetEvent(e.ID)
}

// MarkEventSynced links an event to Google Calendar without touching UpdatedAt.
func (s *Store) MarkEventSynced(id, googleID, etag string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.GetEvent(id)
	if err != nil {
		return err
	}
	if err := s.checkGoogleID(id, googleID); err != nil {
		return err
	}
	synced := at.UTC().Truncate(time.Second)
	e.GoogleID = googleID
	e.ETag = etag
	e.SyncedAt = &synced
	return s.writeEvent(e)
}

// DeleteEvent removes an event file.
func (s *Store) DeleteEvent(id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFile(s.flatPath(eventsDir, id))
}
