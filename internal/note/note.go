// Package note defines notes and the folder tree they are filed in.
package note

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chris-regnier/focusflow/internal/ids"
)

// Folder groups notes. An empty ParentID places the folder at the root.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is a titled Markdown document. An empty FolderID files it at the root.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FolderID  string    `json:"folder_id,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Pinned    bool      `json:"pinned,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New builds a note with a fresh ID.
func New(title, content, folderID string, now time.Time) (Note, error) {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return Note{}, err
	}
	id, err := ids.NewID()
	if err != nil {
		return Note{}, fmt.Errorf("generating note ID: %w", err)
	}
	now = now.UTC().Truncate(time.Second)
	return Note{
		ID:        id,
		Title:     title,
		Content:   content,
		FolderID:  folderID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewFolder builds a folder with a fresh ID.
func NewFolder(name, parentID string, now time.Time) (Folder, error) {
	name = strings.TrimSpace(name)
	if err := ValidateFolderName(name); err != nil {
		return Folder{}, err
	}
	id, err := ids.NewID()
	if err != nil {
		return Folder{}, fmt.Errorf("generating folder ID: %w", err)
	}
	now = now.UTC().Truncate(time.Second)
	return Folder{ID: id, Name: name, ParentID: parentID, CreatedAt: now, UpdatedAt: now}, nil
}

// ValidateTitle checks whether a note title is usable.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("note title must not be empty")
	}
	if strings.ContainsAny(title, "\n\r") {
		return fmt.Errorf("note title must be a single line")
	}
	return nil
}

// ValidateFolderName checks whether a folder name is usable in a path.
func ValidateFolderName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("folder name must not be empty")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("folder name %q must not contain '/'", name)
	}
	return nil
}

// Preview returns a single-line preview of the content, or the title if empty.
func (n *Note) Preview(maxLen int) string {
	content := strings.Join(strings.Fields(n.Content), " ")
	if content == "" {
		content = n.Title
	}
	if utf8.RuneCountInString(content) <= maxLen {
		return content
	}
	r := []rune(content)
	switch {
	case maxLen <= 0:
		return ""
	case maxLen <= 3:
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// WordCount counts whitespace separated words in the content.
func (n *Note) WordCount() int {
	return len(strings.Fields(n.Content))
}

// HasTag reports whether the note carries tag.
func (n *Note) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, have := range n.Tags {
		if have == tag {
			return true
		}
	}
	return false
}
