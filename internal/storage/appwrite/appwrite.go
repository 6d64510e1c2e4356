package appwrite

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/appwrite/sdk-for-go/query"
	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/ids"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/task"
)

// Collection IDs expected in the Appwrite database.
const (
	CollectionTasks    = "tasks"
	CollectionFolders  = "folders"
	CollectionNotes    = "notes"
	CollectionSessions = "sessions"
	CollectionEvents   = "events"
	CollectionSettings = "settings"
)

// Store implements storage.Storage against an Appwrite database.
type Store struct {
	c *client
}

// New creates an Appwrite storage backend.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{c: newClient(cfg)}, nil
}

// Close is a no-op; the HTTP client holds no dedicated resources.
func (s *Store) Close() error {
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := formatTime(*t)
	return &v
}

func parseTime(field, v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing %s: %v", storage.ErrStorage, field, err)
	}
	return t, nil
}

func parseTimePtr(field string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := parseTime(field, *v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func emptyNil(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// --- tasks ---

type taskDoc struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Status             string   `json:"status"`
	Priority           string   `json:"priority"`
	Project            string   `json:"project"`
	Tags               []string `json:"tags"`
	Due                *string  `json:"due"`
	EstimatedPomodoros int      `json:"estimated_pomodoros"`
	CompletedPomodoros int      `json:"completed_pomodoros"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
	CompletedAt        *string  `json:"completed_at"`
}

type taskRecord struct {
	ID string `json:"$id"`
	taskDoc
}

func toTaskDoc(t task.Task) taskDoc {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return taskDoc{
		Title:              t.Title,
		Description:        t.Description,
		Status:             string(t.Status),
		Priority:           string(t.Priority),
		Project:            t.Project,
		Tags:               tags,
		Due:                formatTimePtr(t.Due),
		EstimatedPomodoros: t.EstimatedPomodoros,
		CompletedPomodoros: t.CompletedPomodoros,
		CreatedAt:          formatTime(t.CreatedAt),
		UpdatedAt:          formatTime(t.UpdatedAt),
		CompletedAt:        formatTimePtr(t.CompletedAt),
	}
}

func (r taskRecord) toTask() (task.Task, error) {
	t := task.Task{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		Status:             task.Status(r.Status),
		Priority:           task.Priority(r.Priority),
		Project:            r.Project,
		Tags:               emptyNil(r.Tags),
		EstimatedPomodoros: r.EstimatedPomodoros,
		CompletedPomodoros: r.CompletedPomodoros,
	}
	var err error
	if t.CreatedAt, err = parseTime("created_at", r.CreatedAt); err != nil {
		return task.Task{}, err
	}
	if t.UpdatedAt, err = parseTime("updated_at", r.UpdatedAt); err != nil {
		return task.Task{}, err
	}
	if t.Due, err = parseTimePtr("due", r.Due); err != nil {
		return task.Task{}, err
	}
	if t.CompletedAt, err = parseTimePtr("completed_at", r.CompletedAt); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// CreateTask persists a new task document.
func (s *Store) CreateTask(t task.Task) error {
	if err := storage.ValidateTask(t); err != nil {
		return err
	}
	return mapErr(s.c.create(CollectionTasks, t.ID, toTaskDoc(t)), storage.ErrConflict)
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(id string) (task.Task, error) {
	if ids.Validate(id) != nil {
		return task.Task{}, storage.ErrNotFound
	}
	var r taskRecord
	if err := s.c.get(CollectionTasks, id, &r); err != nil {
		return task.Task{}, mapErr(err, storage.ErrConflict)
	}
	return r.toTask()
}

// ListTasks fetches every task and filters client-side so ordering matches
// the other backends.
func (s *Store) ListTasks(opts storage.TaskListOptions) ([]task.Task, error) {
	var tasks []task.Task
	err := s.c.list(CollectionTasks, nil, func(raw json.RawMessage) error {
		var r taskRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("%w: decoding task: %v", storage.ErrStorage, err)
		}
		t, err := r.toTask()
		if err != nil {
			return err
		}
		tasks = append(tasks, t)
		return nil
	})
	if err != nil {
		return nil, mapErr(err, storage.ErrConflict)
	}
	return storage.FilterTasks(tasks, opts), nil
}

// UpdateTask replaces a stored task and stamps UpdatedAt.
func (s *Store) UpdateTask(t task.Task) (task.Task, error) {
	if err := storage.ValidateTask(t); err != nil {
		return task.Task{}, err
	}
	existing, err := s.GetTask(t.ID)
	if err != nil {
		return task.Task{}, err
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = storage.Now()
	var r taskRecord
	if err := s.c.update(CollectionTasks, t.ID, toTaskDoc(t), &r); err != nil {
		return task.Task{}, mapErr(err, storage.ErrConflict)
	}
	return r.toTask()
}

// DeleteTask removes a task document.
func (s *Store) DeleteTask(id string) error {
	if ids.Validate(id) != nil {
		return storage.ErrNotFound
	}
	return mapErr(s.c.delete(CollectionTasks, id), storage.ErrConflict)
}

// --- folders ---

type folderDoc struct {
	Name      string `json:"name"`
	ParentID  string `json:"parent_id"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type folderRecord struct {
	ID string `json:"$id"`
	folderDoc
}

func toFolderDoc(f note.Folder) folderDoc {
	return folderDoc{
		Name:      f.Name,
		ParentID:  f.ParentID,
		Color:     f.Color,
		CreatedAt: formatTime(f.CreatedAt),
		UpdatedAt: formatTime(f.UpdatedAt),
	}
}

func (r folderRecord) toFolder() (note.Folder, error) {
	f := note.Folder{ID: r.ID, Name: r.Name, ParentID: r.ParentID, Color: r.Color}
	var err error
	if f.CreatedAt, err = parseTime("created_at", r.CreatedAt); err != nil {
		return note.Folder{}, err
	}
	if f.UpdatedAt, err = parseTime("updated_at", r.UpdatedAt); err != nil {
		return note.Folder{}, err
	}
	return f, nil
}

// CreateFolder persists a new folder document.
func (s *Store) CreateFolder(f note.Folder) error {
	if err := storage.ValidateFolder(f); err != nil {
		return err
	}
	if f.ParentID != "" {
		if _, err := s.GetFolder(f.ParentID); err != nil {
			return fmt.Errorf("parent folder %s: %w", f.ParentID, err)
		}
	}
	return mapErr(s.c.create(CollectionFolders, f.ID, toFolderDoc(f)), storage.ErrConflict)
}

// GetFolder retrieves a folder by ID.
func (s *Store) GetFolder(id string) (note.Folder, error) {
	if ids.Validate(id) != nil {
		return note.Folder{}, storage.ErrNotFound
	}
	var r folderRecord
	if err := s.c.get(CollectionFolders, id, &r); err != nil {
		return note.Folder{}, mapErr(err, storage.ErrConflict)
	}
	return r.toFolder()
}

// ListFolders returns every folder ordered by name.
func (s *Store) ListFolders() ([]note.Folder, error) {
	var folders []note.Folder
	err := s.c.list(CollectionFolders, nil, func(raw json.RawMessage) error {
		var r folderRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("%w: decoding folder: %v", storage.ErrStorage, err)
		}
		f, err := r.toFolder()
		if err != nil {
			return err
		}
		folders = append(folders, f)
		return nil
	})
	if err != nil {
		return nil, mapErr(err, storage.ErrConflict)
	}
	storage.SortFolders(folders)
	return folders, nil
}

// UpdateFolder renames or moves a folder.
func (s *Store) UpdateFolder(f note.Folder) (note.Folder, error) {
	if err := storage.ValidateFolder(f); err != nil {
		return note.Folder{}, err
	}
	existing, err := s.GetFolder(f.ID)
	if err != nil {
		return note.Folder{}, err
	}
	folders, err := s.ListFolders()
	if err != nil {
		return note.Folder{}, err
	}
	if err := note.CheckMove(folders, f.ID, f.ParentID); err != nil {
		return note.Folder{}, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	f.CreatedAt = existing.CreatedAt
	f.UpdatedAt = storage.Now()
	var r folderRecord
	if err := s.c.update(CollectionFolders, f.ID, toFolderDoc(f), &r); err != nil {
		return note.Folder{}, mapErr(err, storage.ErrConflict)
	}
	return r.toFolder()
}

// DeleteFolder removes a folder and reparents its notes and subfolders.
func (s *Store) DeleteFolder(id string) error {
	f, err := s.GetFolder(id)
	if err != nil {
		return err
	}
	noteIDs, err := s.c.listIDs(CollectionNotes, query.Equal("folder_id", id))
	if err != nil {
		return mapErr(err, storage.ErrConflict)
	}
	childIDs, err := s.c.listIDs(CollectionFolders, query.Equal("parent_id", id))
	if err != nil {
		return mapErr(err, storage.ErrConflict)
	}

	now := formatTime(storage.Now())
	for _, nid := range noteIDs {
		patch := map[string]any{"folder_id": f.ParentID, "updated_at": now}
		if err := s.c.update(CollectionNotes, nid, patch, nil); err != nil {
			return mapErr(err, storage.ErrConflict)
		}
	}
	for _, cid := range childIDs {
		patch := map[string]any{"parent_id": f.ParentID, "updated_at": now}
		if err := s.c.update(CollectionFolders, cid, patch, nil); err != nil {
			return mapErr(err, storage.ErrConflict)
		}
	}

	return mapErr(s.c.delete(CollectionFolders, id), storage.ErrConflict)
}

// --- notes ---

type noteDoc struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	FolderID  string   `json:"folder_id"`
	Tags      []string `json:"tags"`
	Pinned    bool     `json:"pinned"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type noteRecord struct {
	ID string `json:"$id"`
	noteDoc
}

func toNoteDoc(n note.Note) noteDoc {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return noteDoc{
		Title:     n.Title,
		Content:   n.Content,
		FolderID:  n.FolderID,
		Tags:      tags,
		Pinned:    n.Pinned,
		CreatedAt: formatTime(n.CreatedAt),
		UpdatedAt: formatTime(n.UpdatedAt),
	}
}

func (r noteRecord) toNote() (note.Note, error) {
	n := note.Note{
		ID:       r.ID,
		Title:    r.Title,
		Content:  r.Content,
		FolderID: r.FolderID,
		Tags:     emptyNil(r.Tags),
		Pinned:   r.Pinned,
	}
	var err error
	if n.CreatedAt, err = parseTime("created_at", r.CreatedAt); err != nil {
		return note.Note{}, err
	}
	if n.UpdatedAt, err = parseTime("updated_at", r.UpdatedAt); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (s *Store) checkNoteFolder(folderID string) error {
	if folderID == "" {
		return nil
	}
	if _, err := s.GetFolder(folderID); err != nil {
		return fmt.Errorf("folder %s: %w", folderID, err)
	}
	return nil
}

// CreateNote persists a new note document.
func (s *Store) CreateNote(n note.Note) error {
	if err := storage.ValidateNote(n); err != nil {
		return err
	}
	if err := s.checkNoteFolder(n.FolderID); err != nil {
		return err
	}
	return mapErr(s.c.create(CollectionNotes, n.ID, toNoteDoc(n)), storage.ErrConflict)
}

// GetNote retrieves a note by ID.
func (s *Store) GetNote(id string) (note.Note, error) {
	if ids.Validate(id) != nil {
		return note.Note{}, storage.ErrNotFound
	}
	var r noteRecord
	if err := s.c.get(CollectionNotes, id, &r); err != nil {
		return note.Note{}, mapErr(err, storage.ErrConflict)
	}
	return r.toNote()
}

// ListNotes returns notes matching the filter. A folder filter is pushed
// down to the server; the rest is applied client-side.
func (s *Store) ListNotes(opts storage.NoteListOptions) ([]note.Note, error) {
	var filters []string
	if opts.FolderID != nil {
		filters = append(filters, query.Equal("folder_id", *opts.FolderID))
	}
	var notes []note.Note
	err := s.c.list(CollectionNotes, filters, func(raw json.RawMessage) error {
		var r noteRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("%w: decoding note: %v", storage.ErrStorage, err)
		}
		n, err := r.toNote()
		if err != nil {
			return err
		}
		notes = append(notes, n)
		return nil
	})
	if err != nil {
		return nil, mapErr(err, storage.ErrConflict)
	}
	return storage.FilterNotes(notes, opts), nil
}

// UpdateNote replaces a stored note and stamps UpdatedAt.
func (s *Store) UpdateNote(n note.Note) (note.Note, error) {
	if err := storage.ValidateNote(n); err != nil {
		return note.Note{}, err
	}
	existing, err := s.GetNote(n.ID)
	if err != nil {
		return note.Note{}, err
	}
	if err := s.checkNoteFolder(n.FolderID); err != nil {
		return note.Note{}, err
	}
	n.CreatedAt = existing.CreatedAt
	n.UpdatedAt = storage.Now()
	var r noteRecord
	if err := s.c.update(CollectionNotes, n.ID, toNoteDoc(n), &r); err != nil {
		return note.Note{}, mapErr(err, storage.ErrConflict)
	}
	return r.toNote()
}

// DeleteNote removes a note document.
func (s *Store) DeleteNote(id string) error {
	if ids.Validate(id) != nil {
		return storage.ErrNotFound
	}
	return mapErr(s.c.delete(CollectionNotes, id), storage.ErrConflict)
}

// --- sessions ---

type sessionDoc struct {
	Key       string `json:"key"`
	Phase     string `json:"phase"`
	TaskID    string `json:"task_id"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at"`
	Planned   int64  `json:"planned_seconds"`
	Elapsed   int64  `json:"elapsed_seconds"`
	Completed bool   `json:"completed"`
}

type sessionRecord struct {
	ID string `json:"$id"`
	sessionDoc
}

func (r sessionRecord) toSession() (pomodoro.Session, error) {
	ps := pomodoro.Session{
		ID:        r.ID,
		Key:       r.Key,
		Phase:     pomodoro.Phase(r.Phase),
		TaskID:    r.TaskID,
		Planned:   time.Duration(r.Planned) * time.Second,
		Elapsed:   time.Duration(r.Elapsed) * time.Second,
		Completed: r.Completed,
	}
	var err error
	if ps.StartedAt, err = parseTime("started_at", r.StartedAt); err != nil {
		return pomodoro.Session{}, err
	}
	if ps.EndedAt, err = parseTime("ended_at", r.EndedAt); err != nil {
		return pomodoro.Session{}, err
	}
	return ps, nil
}

// LogSession records a finished pomodoro phase. The document ID derives
// from the session key, so a repeat is rejected by the server with 409.
func (s *Store) LogSession(ps pomodoro.Session) error {
	if err := storage.ValidateSession(ps); err != nil {
		return err
	}
	doc := sessionDoc{
		Key:       ps.Key,
		Phase:     string(ps.Phase),
		TaskID:    ps.TaskID,
		StartedAt: formatTime(ps.StartedAt),
		EndedAt:   formatTime(ps.EndedAt),
		Planned:   int64(ps.Planned / time.Second),
		Elapsed:   int64(ps.Elapsed / time.Second),
		Completed: ps.Completed,
	}
	return mapErr(s.c.create(CollectionSessions, ids.FromKey(ps.Key), doc), storage.ErrDuplicate)
}

// ListSessions returns sessions matching the filter, oldest first.
func (s *Store) ListSessions(opts storage.SessionListOptions) ([]pomodoro.Session, error) {
	var filters []string
	if opts.TaskID != "" {
		filters = append(filters, query.Equal("task_id", opts.TaskID))
	}
	var sessions []pomodoro.Session
	err := s.c.list(CollectionSessions, filters, func(raw json.RawMessage) error {
		var r sessionRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("%w: decoding session: %v", storage.ErrStorage, err)
		}
		ps, err := r.toSession()
		if err != nil {
			return err
		}
		sessions = append(sessions, ps)
		return nil
	})
	if err != nil {
		return nil, mapErr(err, storage.ErrConflict)
	}
	return storage.FilterSessions(sessions, opts), nil
}

// --- events ---

type eventDoc struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	AllDay      bool    `json:"all_day"`
	Color       string  `json:"color"`
	Source      string  `json:"source"`
	GoogleID    string  `json:"google_id"`
	ETag        string  `json:"etag"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	SyncedAt    *string `json:"synced_at"`
}

type eventRecord struct {
	ID string `json:"$id"`
	eventDoc
}

func toEventDoc(e event.Event) eventDoc {
	return eventDoc{
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Start:       formatTime(e.Start),
		End:         formatTime(e.End),
		AllDay:      e.AllDay,
		Color:       e.Color,
		Source:      string(e.Source),
		GoogleID:    e.GoogleID,
		ETag:        e.ETag,
		CreatedAt:   formatTime(e.CreatedAt),
		UpdatedAt:   formatTime(e.UpdatedAt),
		SyncedAt:    formatTimePtr(e.SyncedAt),
	}
}

func (r eventRecord) toEvent() (event.Event, error) {
	e := event.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		AllDay:      r.AllDay,
		Color:       r.Color,
		Source:      event.Source(r.Source),
		GoogleID:    r.GoogleID,
		ETag:        r.ETag,
	}
	var err error
	if e.Start, err = parseTime("start", r.Start); err != nil {
		return event.Event{}, err
	}
	if e.End, err = parseTime("end", r.End); err != nil {
		return event.Event{}, err
	}
	if e.CreatedAt, err = parseTime("created_at", r.CreatedAt); err != nil {
		return event.Event{}, err
	}
	if e.UpdatedAt, err = parseTime("updated_at", r.UpdatedAt); err != nil {
		return event.Event{}, err
	}
	if e.SyncedAt, err = parseTimePtr("synced_at", r.SyncedAt); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (s *Store) listEvents(filters []string) ([]event.Event, error) {
	var events []event.Event
	err := s.c.list(CollectionEvents, filters, func(raw json.RawMessage) error {
		var r eventRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("%w: decoding event: %v", storage.ErrStorage, err)
		}
		e, err := r.toEvent()
		if err != nil {
			return err
		}
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, mapErr(err, storage.ErrConflict)
	}
	return events, nil
}

// checkGoogleID rejects a GoogleID already linked to another event.
func (s *Store) checkGoogleID(id, googleID string) error {
	if googleID == "" {
		return nil
	}
	other, err := s.GetEventByGoogleID(googleID)
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

// CreateEvent persists a new event document.
func (s *Store) CreateEvent(e event.Event) error {
	if err := storage.ValidateEvent(e); err != nil {
		return err
	}
	if err := s.checkGoogleID(e.ID, e.GoogleID); err != nil {
		return err
	}
	return mapErr(s.c.create(CollectionEvents, e.ID, toEventDoc(e)), storage.ErrConflict)
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(id string) (event.Event, error) {
	if ids.Validate(id) != nil {
		return event.Event{}, storage.ErrNotFound
	}
	var r eventRecord
	if err := s.c.get(CollectionEvents, id, &r); err != nil {
		return event.Event{}, mapErr(err, storage.ErrConflict)
	}
	return r.toEvent()
}

// GetEventByGoogleID retrieves the event linked to a Google Calendar event.
func (s *Store) GetEventByGoogleID(googleID string) (event.Event, error) {
	if googleID == "" {
		return event.Event{}, storage.ErrNotFound
	}
	events, err := s.listEvents([]string{query.Equal("google_id", googleID)})
	if err != nil {
		return event.Event{}, err
	}
	if len(events) == 0 {
		return event.Event{}, storage.ErrNotFound
	}
	return events[0], nil
}

// ListEvents returns events overlapping the window, ordered by start.
func (s *Store) ListEvents(opts storage.EventListOptions) ([]event.Event, error) {
	var filters []string
	if opts.Source != "" {
		filters = append(filters, query.Equal("source", string(opts.Source)))
	}
	events, err := s.listEvents(filters)
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
	existing, err := s.GetEvent(e.ID)
	if err != nil {
		return event.Event{}, err
	}
	if err := s.checkGoogleID(e.ID, e.GoogleID); err != nil {
		return event.Event{}, err
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = storage.Now()
	var r eventRecord
	if err := s.c.update(CollectionEvents, e.ID, toEventDoc(e), &r); err != nil {
		return event.Event{}, mapErr(err, storage.ErrConflict)
	}
	return r.toEvent()
}

// MarkEventSynced patches only the sync fields of an event.
func (s *Store) MarkEventSynced(id, googleID, etag string, at time.Time) error {
	if ids.Validate(id) != nil {
		return storage.ErrNotFound
	}
	if err := s.checkGoogleID(id, googleID); err != nil {
		return err
	}
	patch := map[string]any{
		"google_id": googleID,
		"etag":      etag,
		"synced_at": formatTime(at),
	}
	return mapErr(s.c.update(CollectionEvents, id, patch, nil), storage.ErrConflict)
}

// DeleteEvent removes an event document.
func (s *Store) DeleteEvent(id string) error {
	if ids.Validate(id) != nil {
		return storage.ErrNotFound
	}
	return mapErr(s.c.delete(CollectionEvents, id), storage.ErrConflict)
}

// --- settings ---

type settingDoc struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// settingID maps a settings key onto a valid document ID.
func settingID(key string) string {
	return ids.FromKey("setting:" + key)
}

// GetSetting returns the value stored under key.
func (s *Store) GetSetting(key string) (string, error) {
	var d settingDoc
	if err := s.c.get(CollectionSettings, settingID(key), &d); err != nil {
		return "", mapErr(err, storage.ErrConflict)
	}
	return d.Value, nil
}

// SetSetting inserts or replaces the value stored under key.
func (s *Store) SetSetting(key, value string) error {
	if err := storage.ValidateSettingKey(key); err != nil {
		return err
	}
	doc := settingDoc{Key: key, Value: value}
	err := mapErr(s.c.update(CollectionSettings, settingID(key), doc, nil), storage.ErrConflict)
	if errors.Is(err, storage.ErrNotFound) {
		return mapErr(s.c.create(CollectionSettings, settingID(key), doc), storage.ErrConflict)
	}
	return err
}

// DeleteSetting removes a setting.
func (s *Store) DeleteSetting(key string) error {
	return mapErr(s.c.delete(CollectionSettings, settingID(key)), storage.ErrConflict)
}

// ListSettings returns every stored setting.
func (s *Store) ListSettings() (map[string]string, error) {
	out := make(map[string]string)
	err := s.c.list(CollectionSettings, nil, func(raw json.RawMessage) error {
		var d settingDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("%w: decoding setting: %v", storage.ErrStorage, err)
		}
		out[d.Key] = d.Value
		return nil
	})
	if err != nil {
		return nil, mapErr(err, storage.ErrConflict)
	}
	return out, nil
}
