package markdown

import (
	"fmt"

	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/storage"
)

type folderFrontMatter struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	ParentID  string `yaml:"parent_id,omitempty"`
	Color     string `yaml:"color,omitempty"`
	CreatedAt string `yaml:"created_at"`
	UpdatedAt string `yaml:"updated_at"`
}

func (s *Store) writeFolder(f note.Folder) error {
	fm := folderFrontMatter{
		ID:        f.ID,
		Name:      f.Name,
		ParentID:  f.ParentID,
		Color:     f.Color,
		CreatedAt: formatTime(f.CreatedAt),
		UpdatedAt: formatTime(f.UpdatedAt),
	}
	return s.writeDoc(s.flatPath(foldersDir, f.ID), fm, "")
}

func (s *Store) readFolder(path string) (note.Folder, error) {
	var fm folderFrontMatter
	if _, err := readDoc(path, &fm); err != nil {
		return note.Folder{}, err
	}
	f := note.Folder{ID: fm.ID, Name: fm.Name, ParentID: fm.ParentID, Color: fm.Color}
	var err error
	if f.CreatedAt, err = parseTime("created_at", fm.CreatedAt); err != nil {
		return note.Folder{}, err
	}
	if f.UpdatedAt, err = parseTime("updated_at", fm.UpdatedAt); err != nil {
		return note.Folder{}, err
	}
	return f, nil
}

// CreateFolder persists a new folder as folders/<id>.md.
func (s *Store) CreateFolder(f note.Folder) error {
	if err := storage.ValidateFolder(f); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if exists(s.flatPath(foldersDir, f.ID)) {
		return fmt.Errorf("%w: folder %s already exists", storage.ErrConflict, f.ID)
	}
	if f.ParentID != "" {
		if _, err := s.GetFolder(f.ParentID); err != nil {
			return fmt.Errorf("parent folder %s: %w", f.ParentID, err)
		}
	}
	return s.writeFolder(f)
}

// GetFolder retrieves a folder by ID.
func (s *Store) GetFolder(id string) (note.Folder, error) {
	if !validID(id) {
		return note.Folder{}, storage.ErrNotFound
	}
	return s.readFolder(s.flatPath(foldersDir, id))
}

// ListFolders returns every folder ordered by name.
func (s *Store) ListFolders() ([]note.Folder, error) {
	var folders []note.Folder
	err := s.walkDocs(foldersDir, func(path string) error {
		f, err := s.readFolder(path)
		if err != nil {
			return nil // skip malformed files
		}
		folders = append(folders, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	storage.SortFolders(folders)
	return folders, nil
}

// UpdateFolder renames or moves a folder.
func (s *Store) UpdateFolder(f note.Folder) (note.Folder, error) {
	if err := storage.ValidateFolder(f); err != nil {
		return note.Folder{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
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
	if err := s.writeFolder(f); err != nil {
		return note.Folder{}, err
	}
	return f, nil
}

// DeleteFolder removes a folder and reparents its notes and subfolders.
func (s *Store) DeleteFolder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.GetFolder(id)
	if err != nil {
		return err
	}
	now := storage.Now()

	notes, err := s.allNotes()
	if err != nil {
		return err
	}
	for _, n := range notes {
		if n.FolderID != id {
			continue
		}
		n.FolderID = f.ParentID
		n.UpdatedAt = now
		if err := s.writeNote(n); err != nil {
			return err
		}
	}

	folders, err := s.ListFolders()
	if err != nil {
		return err
	}
	for _, child := range note.Children(folders, id) {
		child.ParentID = f.ParentID
		child.UpdatedAt = now
		if err := s.writeFolder(child); err != nil {
			return err
		}
	}

	return removeFile(s.flatPath(foldersDir, id))
}

type noteFrontMatter struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	FolderID  string   `yaml:"folder_id,omitempty"`
	Tags      []string `yaml:"tags,omitempty,flow"`
	Pinned    bool     `yaml:"pinned,omitempty"`
	CreatedAt string   `yaml:"created_at"`
	UpdatedAt string   `yaml:"updated_at"`
}

func (s *Store) writeNote(n note.Note) error {
	fm := noteFrontMatter{
		ID:        n.ID,
		Title:     n.Title,
		FolderID:  n.FolderID,
		Tags:      n.Tags,
		Pinned:    n.Pinned,
		CreatedAt: formatTime(n.CreatedAt),
		UpdatedAt: formatTime(n.UpdatedAt),
	}
	return s.writeDoc(s.flatPath(notesDir, n.ID), fm, n.Content)
}

func (s *Store) readNote(path string) (note.Note, error) {
	var fm noteFrontMatter
	body, err := readDoc(path, &fm)
	if err != nil {
		return note.Note{}, err
	}
	n := note.Note{
		ID:       fm.ID,
		Title:    fm.Title,
		Content:  body,
		FolderID: fm.FolderID,
		Tags:     fm.Tags,
		Pinned:   fm.Pinned,
	}
	if n.CreatedAt, err = parseTime("created_at", fm.CreatedAt); err != nil {
		return note.Note{}, err
	}
	if n.UpdatedAt, err = parseTime("updated_at", fm.UpdatedAt); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (s *Store) allNotes() ([]note.Note, error) {
	var notes []note.Note
	err := s.walkDocs(notesDir, func(path string) error {
		n, err := s.readNote(path)
		if err != nil {
			return nil // skip malformed files
		}
		notes = append(notes, n)
		return nil
	})
	return notes, err
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

// CreateNote persists a new note as notes/<id>.md.
func (s *Store) CreateNote(n note.Note) error {
	if err := storage.ValidateNote(n); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if exists(s.flatPath(notesDir, n.ID)) {
		return fmt.Errorf("%w: note %s already exists", storage.ErrConflict, n.ID)
	}
	if err := s.checkNoteFolder(n.FolderID); err != nil {
		return err
	}
	return s.writeNote(n)
}

// GetNote retrieves a note by ID.
func (s *Store) GetNote(id string) (note.Note, error) {
	if !validID(id) {
		return note.Note{}, storage.ErrNotFound
	}
	return s.readNote(s.flatPath(notesDir, id))
}

// ListNotes returns notes matching the filter.
func (s *Store) ListNotes(opts storage.NoteListOptions) ([]note.Note, error) {
	notes, err := s.allNotes()
	if err != nil {
		return nil, err
	}
	return storage.FilterNotes(notes, opts), nil
}

// UpdateNote replaces a stored note and stamps UpdatedAt.
func (s *Store) UpdateNote(n note.Note) (note.Note, error) {
	if err := storage.ValidateNote(n); err != nil {
		return note.Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.GetNote(n.ID)
	if err != nil {
		return note.Note{}, err
	}
	if err := s.checkNoteFolder(n.FolderID); err != nil {
		return note.Note{}, err
	}
	n.CreatedAt = existing.CreatedAt
	n.UpdatedAt = storage.Now()
	if err := s.writeNote(n); err != nil {
		return note.Note{}, err
	}
	return s.GetNote(n.ID)
}

// DeleteNote removes a note file.
func (s *Store) DeleteNote(id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFile(s.flatPath(notesDir, id))
}
