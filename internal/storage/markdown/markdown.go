package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/chris-regnier/focusflow/internal/ids"
	"github.com/chris-regnier/focusflow/internal/storage"
	"gopkg.in/yaml.v3"
)

// Directory names under the data directory.
const (
	tasksDir     = "tasks"
	notesDir     = "notes"
	foldersDir   = "folders"
	sessionsDir  = "sessions"
	eventsDir    = "events"
	settingsFile = "settings.yaml"
)

// Store implements storage.Storage using Markdown files with YAML front-matter.
// Each record is one file; the Markdown body holds free text (task
// descriptions, note content, event descriptions).
type Store struct {
	baseDir string

	// mu serialises read-modify-write cycles within this process.
	mu sync.Mutex
}

// New creates a new Markdown file storage backend rooted at dataDir.
func New(dataDir string) (*Store, error) {
	for _, dir := range []string{tasksDir, notesDir, foldersDir, sessionsDir, eventsDir} {
		if err := os.MkdirAll(filepath.Join(dataDir, dir), 0755); err != nil {
			return nil, fmt.Errorf("%w: creating %s directory: %v", storage.ErrStorage, dir, err)
		}
	}
	return &Store{baseDir: dataDir}, nil
}

// Close is a no-op for the Markdown backend.
func (s *Store) Close() error {
	return nil
}

// validID guards lookups so a malformed ID can never escape the data directory.
func validID(id string) bool {
	return ids.Validate(id) == nil
}

func (s *Store) flatPath(dir, id string) string {
	return filepath.Join(s.baseDir, dir, id+".md")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTime(field, v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing %s: %v", storage.ErrStorage, field, err)
	}
	return t, nil
}

func parseTimePtr(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := parseTime(field, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// marshalDoc renders front-matter followed by the Markdown body.
func marshalDoc(fm any, body string) ([]byte, error) {
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding front-matter: %v", storage.ErrStorage, err)
	}
	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n")
	b.WriteString(body)
	return b.Bytes(), nil
}

// readDoc decodes a record file into fm and returns its body.
func readDoc(path string, fm any) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("%w: reading file: %v", storage.ErrStorage, err)
	}
	body, err := frontmatter.Parse(bytes.NewReader(data), fm)
	if err != nil {
		return "", fmt.Errorf("%w: parsing front-matter in %s: %v", storage.ErrStorage, filepath.Base(path), err)
	}
	return string(body), nil
}

func (s *Store) writeDoc(path string, fm any, body string) error {
	data, err := marshalDoc(fm, body)
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("%w: deleting file: %v", storage.ErrStorage, err)
	}
	return nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory: %v", storage.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", storage.ErrStorage, err)
	}
	tmpName := tmp.Name()

	// Lock the temp file during write
	if err := syscall.Flock(int(tmp.Fd()), syscall.LOCK_EX); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: acquiring lock: %v", storage.ErrStorage, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing temp file: %v", storage.ErrStorage, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %v", storage.ErrStorage, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming file: %v", storage.ErrStorage, err)
	}

	return nil
}

// walkDocs calls fn for every record file under dir. Unreadable or
// malformed files are skipped.
func (s *Store) walkDocs(dir string, fn func(path string) error) error {
	root := filepath.Join(s.baseDir, dir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		return fn(path)
	})
	if err != nil {
		return fmt.Errorf("%w: scanning %s: %v", storage.ErrStorage, dir, err)
	}
	return nil
}

func (s *Store) settingsPath() string {
	return filepath.Join(s.baseDir, settingsFile)
}

func (s *Store) loadSettings() (map[string]string, error) {
	data, err := os.ReadFile(s.settingsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: reading settings: %v", storage.ErrStorage, err)
	}
	settings := map[string]string{}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("%w: parsing settings: %v", storage.ErrStorage, err)
	}
	return settings, nil
}

func (s *Store) saveSettings(settings map[string]string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: encoding settings: %v", storage.ErrStorage, err)
	}
	return atomicWrite(s.settingsPath(), data)
}

// GetSetting returns the value stored under key.
func (s *Store) GetSetting(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.loadSettings()
	if err != nil {
		return "", err
	}
	v, ok := settings[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

// SetSetting inserts or replaces the value stored under key.
func (s *Store) SetSetting(key, value string) error {
	if err := storage.ValidateSettingKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.loadSettings()
	if err != nil {
		return err
	}
	settings[key] = value
	return s.saveSettings(settings)
}

// DeleteSetting removes a setting.
func (s *Store) DeleteSetting(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.loadSettings()
	if err != nil {
		return err
	}
	if _, ok := settings[key]; !ok {
		return storage.ErrNotFound
	}
	delete(settings, key)
	return s.saveSettings(settings)
}

// ListSettings returns every stored setting.
func (s *Store) ListSettings() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSettings()
}
