package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/storage"
	_ "github.com/tursodatabase/go-libsql"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverLibSQL  = "libsql"
	DriverModernC = "sqlite"
)

// Store implements storage.Storage using SQLite via Turso/libSQL or the
// pure-Go modernc driver.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite storage backend using the default libSQL driver.
func New(dataDir string) (*Store, error) {
	return NewWithDriver(dataDir, DriverLibSQL)
}

// NewWithDriver creates a SQLite storage backend using the named driver.
func NewWithDriver(dataDir, driver string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", storage.ErrStorage, err)
	}

	dbPath := filepath.Join(dataDir, "focusflow.db")
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case "", DriverLibSQL:
		db, err = sql.Open(DriverLibSQL, "file:"+dbPath)
		if err != nil {
			return nil, fmt.Errorf("%w: opening database: %v", storage.ErrStorage, err)
		}
		// libSQL rejects Exec for statements that return rows.
		var mode string
		if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&mode); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: enabling WAL mode: %v", storage.ErrStorage, err)
		}
	case DriverModernC:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", dbPath)
		db, err = sql.Open(DriverModernC, dsn)
		if err != nil {
			return nil, fmt.Errorf("%w: opening database: %v", storage.ErrStorage, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown sqlite driver %q (use %s or %s)", storage.ErrStorage, driver, DriverLibSQL, DriverModernC)
	}
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id                  TEXT PRIMARY KEY,
			title               TEXT NOT NULL CHECK(length(trim(title)) > 0),
			description         TEXT NOT NULL DEFAULT '',
			status              TEXT NOT NULL,
			priority            TEXT NOT NULL,
			project             TEXT NOT NULL DEFAULT '',
			tags                TEXT NOT NULL DEFAULT '[]',
			due_at              TEXT,
			estimated_pomodoros INTEGER NOT NULL DEFAULT 0,
			completed_pomodoros INTEGER NOT NULL DEFAULT 0,
			created_at          TEXT NOT NULL,
			updated_at          TEXT NOT NULL,
			completed_at        TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
		CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_at);

		CREATE TABLE IF NOT EXISTS folders (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL CHECK(length(trim(name)) > 0),
			parent_id  TEXT NOT NULL DEFAULT '',
			color      TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notes (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL CHECK(length(trim(title)) > 0),
			content    TEXT NOT NULL DEFAULT '',
			folder_id  TEXT NOT NULL DEFAULT '',
			tags       TEXT NOT NULL DEFAULT '[]',
			pinned     INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id);

		CREATE TABLE IF NOT EXISTS sessions (
			id              TEXT PRIMARY KEY,
			key             TEXT NOT NULL UNIQUE,
			phase           TEXT NOT NULL,
			task_id         TEXT NOT NULL DEFAULT '',
			started_at      TEXT NOT NULL,
			ended_at        TEXT NOT NULL,
			planned_seconds INTEGER NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			completed       INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

		CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL CHECK(length(trim(title)) > 0),
			description TEXT NOT NULL DEFAULT '',
			location    TEXT NOT NULL DEFAULT '',
			start_at    TEXT NOT NULL,
			end_at      TEXT NOT NULL,
			all_day     INTEGER NOT NULL DEFAULT 0,
			color       TEXT NOT NULL DEFAULT '',
			source      TEXT NOT NULL,
			google_id   TEXT,
			etag        TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			synced_at   TEXT,
			CHECK(start_at <= end_at)
		);
		CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_events_google_id ON events(google_id) WHERE google_id IS NOT NULL;

		CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("%w: creating schema: %v", storage.ErrStorage, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing time %q: %v", storage.ErrStorage, s, err)
	}
	return t, nil
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func decodeTags(s string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil || len(tags) == 0 {
		return nil
	}
	return tags
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func insertErr(what, id string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s %s already exists", storage.ErrConflict, what, id)
	}
	return fmt.Errorf("%w: inserting %s: %v", storage.ErrStorage, what, err)
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%w: querying %s: %v", storage.ErrStorage, what, err)
}

// execOne runs a statement that must touch exactly one row.
func execOne(db interface {
	Exec(string, ...any) (sql.Result, error)
}, what, query string, args ...any) error {
	result, err := db.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s: %v", storage.ErrConflict, what, err)
		}
		return fmt.Errorf("%w: %s: %v", storage.ErrStorage, what, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", storage.ErrStorage, err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetSetting returns the value stored under key.
func (s *Store) GetSetting(key string) (string, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		return "", notFoundOr(err, "setting")
	}
	return v, nil
}

// SetSetting inserts or replaces the value stored under key.
func (s *Store) SetSetting(key, value string) error {
	if err := storage.ValidateSettingKey(key); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("%w: saving setting: %v", storage.ErrStorage, err)
	}
	return nil
}

// DeleteSetting removes a setting.
func (s *Store) DeleteSetting(key string) error {
	return execOne(s.db, "deleting setting", "DELETE FROM settings WHERE key = ?", key)
}

// ListSettings returns every stored setting.
func (s *Store) ListSettings() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("%w: listing settings: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("%w: scanning row: %v", storage.ErrStorage, err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
