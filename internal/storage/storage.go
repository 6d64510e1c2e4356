package storage

import (
	"errors"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/task"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("concurrent write conflict")
	ErrDuplicate  = errors.New("duplicate record")
	ErrStorage    = errors.New("storage error")
	ErrValidation = errors.New("validation error")
)

// TaskListOptions controls filtering and pagination for ListTasks.
type TaskListOptions struct {
	Statuses  []task.Status // empty = any status
	Priority  task.Priority // "" = any priority
	Project   string        // exact match, case-insensitive
	Tag       string
	DueBefore *time.Time // inclusive upper bound on the due date
	DueAfter  *time.Time // inclusive lower bound on the due date
	Query     string     // case-insensitive substring of title or description
	Limit     int        // 0 = no limit
	Offset    int
}

// NoteListOptions controls filtering for ListNotes.
type NoteListOptions struct {
	FolderID   *string // nil = any folder; pointer to "" = root only
	Tag        string
	PinnedOnly bool
	Query      string // case-insensitive substring of title or content
	Limit      int
	Offset     int
}

// SessionListOptions controls filtering for ListSessions.
type SessionListOptions struct {
	StartDate     *time.Time // sessions started at or after
	EndDate       *time.Time // sessions started before
	Phase         pomodoro.Phase
	TaskID        string
	CompletedOnly bool
	Limit         int
}

// EventListOptions controls filtering for ListEvents. Events overlapping
// the [From, To) window are returned.
type EventListOptions struct {
	From   *time.Time
	To     *time.Time
	Source event.Source
	Linked *bool // nil = any; true = has GoogleID; false = no GoogleID
	Limit  int
}

// Storage defines the persistence interface shared by all backends.
type Storage interface {
	// Task methods
	CreateTask(t task.Task) error
	GetTask(id string) (task.Task, error)
	ListTasks(opts TaskListOptions) ([]task.Task, error)
	UpdateTask(t task.Task) (task.Task, error)
	DeleteTask(id string) error

	// Folder methods
	CreateFolder(f note.Folder) error
	GetFolder(id string) (note.Folder, error)
	ListFolders() ([]note.Folder, error)
	UpdateFolder(f note.Folder) (note.Folder, error)
	// DeleteFolder removes a folder, moving its notes and subfolders to its parent.
	DeleteFolder(id string) error

	// Note methods
	CreateNote(n note.Note) error
	GetNote(id string) (note.Note, error)
	ListNotes(opts NoteListOptions) ([]note.Note, error)
	UpdateNote(n note.Note) (note.Note, error)
	DeleteNote(id string) error

	// Session methods

	// LogSession persists a pomodoro session. Logging a session whose Key
	// already exists returns ErrDuplicate and leaves the stored record untouched.
	LogSession(s pomodoro.Session) error
	ListSessions(opts SessionListOptions) ([]pomodoro.Session, error)

	// Event methods
	CreateEvent(e event.Event) error
	GetEvent(id string) (event.Event, error)
	GetEventByGoogleID(googleID string) (event.Event, error)
	ListEvents(opts EventListOptions) ([]event.Event, error)
	UpdateEvent(e event.Event) (event.Event, error)
	// MarkEventSynced links an event to its Google Calendar counterpart and
	// records the sync time without touching UpdatedAt.
	MarkEventSynced(id, googleID, etag string, at time.Time) error
	DeleteEvent(id string) error

	// Settings methods
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
	ListSettings() (map[string]string, error)

	Close() error
}
