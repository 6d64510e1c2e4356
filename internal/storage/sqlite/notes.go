package sqlite

import (
	"fmt"
	"strings"

	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/storage"
)

const folderColumns = "id, name, parent_id, color, created_at, updated_at"

func scanFolder(row scanner) (note.Folder, error) {
	var (
		f                    note.Folder
		createdAt, updatedAt string
	)
	if err := row.Scan(&f.ID, &f.Name, &f.ParentID, &f.Color, &createdAt, &updatedAt); err != nil {
		return note.Folder{}, err
	}
	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return note.Folder{}, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return note.Folder{}, err
	}
	return f, nil
}

// CreateFolder persists a new folder. The parent, when set, must exist.
func (s *Store) CreateFolder(f note.Folder) error {
	if err := storage.ValidateFolder(f); err != nil {
		return err
	}
	if f.ParentID != "" {
		if _, err := s.GetFolder(f.ParentID); err != nil {
			return fmt.Errorf("parent folder %s: %w", f.ParentID, err)
		}
	}
	_, err := s.db.Exec(
		"INSERT INTO folders ("+folderColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		f.ID, f.Name, f.ParentID, f.Color, formatTime(f.CreatedAt), formatTime(f.UpdatedAt),
	)
	if err != nil {
		return insertErr("folder", f.ID, err)
	}
	return nil
}

// GetFolder retrieves a folder by ID.
func (s *Store) GetFolder(id string) (note.Folder, error) {
	f, err := scanFolder(s.db.QueryRow("SELECT "+folderColumns+" FROM folders WHERE id = ?", id))
	if err != nil {
		return note.Folder{}, notFoundOr(err, "folder")
	}
	return f, nil
}

// ListFolders returns every folder ordered by name.
func (s *Store) ListFolders() ([]note.Folder, error) {
	rows, err := s.db.Query("SELECT " + folderColumns + " FROM folders ORDER BY LOWER(name), id")
	if err != nil {
		return nil, fmt.Errorf("%w: listing folders: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	var folders []note.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning folder: %v", storage.ErrStorage, err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// UpdateFolder renames or moves a folder. Moves that would create a cycle
// are rejected.
func (s *Store) UpdateFolder(f note.Folder) (note.Folder, error) {
	if err := storage.ValidateFolder(f); err != nil {
		return note.Folder{}, err
	}
	folders, err := s.ListFolders()
	if err != nil {
		return note.Folder{}, err
	}
	if err := note.CheckMove(folders, f.ID, f.ParentID); err != nil {
		return note.Folder{}, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	f.UpdatedAt = storage.Now()
	err = execOne(s.db, "updating folder",
		"UPDATE folders SET name = ?, parent_id = ?, color = ?, updated_at = ? WHERE id = ?",
		f.Name, f.ParentID, f.Color, formatTime(f.UpdatedAt), f.ID,
	)
	if err != nil {
		return note.Folder{}, err
	}
	return s.GetFolder(f.ID)
}

// DeleteFolder removes a folder and reparents its notes and subfolders.
func (s *Store) DeleteFolder(id string) error {
	f, err := s.GetFolder(id)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", storage.ErrStorage, err)
	}
	defer tx.Rollback()

	now := formatTime(storage.Now())
	if _, err := tx.Exec("UPDATE notes SET folder_id = ?, updated_at = ? WHERE folder_id = ?", f.ParentID, now, id); err != nil {
		return fmt.Errorf("%w: moving notes: %v", storage.ErrStorage, err)
	}
	if _, err := tx.Exec("UPDATE folders SET parent_id = ?, updated_at = ? WHERE parent_id = ?", f.ParentID, now, id); err != nil {
		return fmt.Errorf("%w: moving subfolders: %v", storage.ErrStorage, err)
	}
	if err := execOne(tx, "deleting folder", "DELETE FROM folders WHERE id = ?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", storage.ErrStorage, err)
	}
	return nil
}

const noteColumns = "id, title, content, folder_id, tags, pinned, created_at, updated_at"

func scanNote(row scanner) (note.Note, error) {
	var (
		n                    note.Note
		tags                 string
		pinned               int
		createdAt, updatedAt string
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.FolderID, &tags, &pinned, &createdAt, &updatedAt); err != nil {
		return note.Note{}, err
	}
	n.Tags = decodeTags(tags)
	n.Pinned = pinned != 0
	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return note.Note{}, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
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

// CreateNote persists a new note.
func (s *Store) CreateNote(n note.Note) error {
	if err := storage.ValidateNote(n); err != nil {
		return err
	}
	if err := s.checkNoteFolder(n.FolderID); err != nil {
		return err
	}
	_, err := s.db.Exec(
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		n.ID, n.Title, n.Content, n.FolderID, encodeTags(n.Tags), boolInt(n.Pinned),
		formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
	)
	if err != nil {
		return insertErr("note", n.ID, err)
	}
	return nil
}

// GetNote retrieves a note by ID.
func (s *Store) GetNote(id string) (note.Note, error) {
	n, err := scanNote(s.db.QueryRow("SELECT "+noteColumns+" FROM notes WHERE id = ?", id))
	if err != nil {
		return note.Note{}, notFoundOr(err, "note")
	}
	return n, nil
}

// ListNotes returns notes matching the filter, pinned first then most
// recently updated.
func (s *Store) ListNotes(opts storage.NoteListOptions) ([]note.Note, error) {
	var (
		where []string
		args  []any
	)
	if opts.FolderID != nil {
		where = append(where, "folder_id = ?")
		args = append(args, *opts.FolderID)
	}
	if opts.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE LOWER(json_each.value) = LOWER(?))")
		args = append(args, opts.Tag)
	}
	if opts.PinnedOnly {
		where = append(where, "pinned = 1")
	}
	if opts.Query != "" {
		where = append(where, "(INSTR(LOWER(title), LOWER(?)) > 0 OR INSTR(LOWER(content), LOWER(?)) > 0)")
		args = append(args, opts.Query, opts.Query)
	}

	query := "SELECT " + noteColumns + " FROM notes"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY pinned DESC, updated_at DESC, id ASC"
	query, args = withPaging(query, args, opts.Limit, opts.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing notes: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	var notes []note.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning note: %v", storage.ErrStorage, err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating notes: %v", storage.ErrStorage, err)
	}
	return notes, nil
}

// UpdateNote replaces a stored note and stamps UpdatedAt.
func (s *Store) UpdateNote(n note.Note) (note.Note, error) {
	if err := storage.ValidateNote(n); err != nil {
		return note.Note{}, err
	}
	if err := s.checkNoteFolder(n.FolderID); err != nil {
		return note.Note{}, err
	}
	n.UpdatedAt = storage.Now()
	err := execOne(s.db, "updating note",
		"UPDATE notes SET title = ?, content = ?, folder_id = ?, tags = ?, pinned = ?, updated_at = ? WHERE id = ?",
		n.Title, n.Content, n.FolderID, encodeTags(n.Tags), boolInt(n.Pinned), formatTime(n.UpdatedAt), n.ID,
	)
	if err != nil {
		return note.Note{}, err
	}
	return s.GetNote(n.ID)
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(id string) error {
	return execOne(s.db, "deleting note", "DELETE FROM notes WHERE id = ?", id)
}
