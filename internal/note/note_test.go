package note

import (
	"testing"
	"time"
)

func tree() []Folder {
	return []Folder{
		{ID: "work0001", Name: "Work"},
		{ID: "meet0001", Name: "Meetings", ParentID: "work0001"},
		{ID: "home0001", Name: "Home"},
	}
}

func TestNewNote(t *testing.T) {
	n, err := New(" Standup ", "notes", "work0001", time.Now())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.Title != "Standup" || n.FolderID != "work0001" {
		t.Errorf("got %+v", n)
	}
	if _, err := New("", "x", "", time.Now()); err == nil {
		t.Error("expected error for empty title")
	}
	if _, err := New("a\nb", "x", "", time.Now()); err == nil {
		t.Error("expected error for multi-line title")
	}
}

func TestNewFolderRejectsSlash(t *testing.T) {
	if _, err := NewFolder("a/b", "", time.Now()); err == nil {
		t.Error("expected error for folder name with slash")
	}
}

func TestFolderPath(t *testing.T) {
	folders := tree()
	if got := FolderPath(folders, "meet0001"); got != "Work/Meetings" {
		t.Errorf("FolderPath = %q", got)
	}
	if got := FolderPath(folders, ""); got != "/" {
		t.Errorf("root path = %q", got)
	}
}

func TestResolveFolder(t *testing.T) {
	folders := tree()
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"/", "", false},
		{"home0001", "home0001", false},
		{"work/meetings", "meet0001", false},
		{"/Work/Meetings/", "meet0001", false},
		{"Meetings", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveFolder(folders, tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveFolder(%q) err = %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveFolder(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestCheckMove(t *testing.T) {
	folders := tree()
	if err := CheckMove(folders, "work0001", "meet0001"); err == nil {
		t.Error("expected cycle error")
	}
	if err := CheckMove(folders, "work0001", "work0001"); err == nil {
		t.Error("expected self-move error")
	}
	if err := CheckMove(folders, "home0001", "meet0001"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckMove(folders, "home0001", ""); err != nil {
		t.Errorf("move to root: %v", err)
	}
}

func TestPreviewAndWordCount(t *testing.T) {
	n := Note{Title: "T", Content: "one  two\nthree"}
	if n.WordCount() != 3 {
		t.Errorf("WordCount = %d", n.WordCount())
	}
	if got := n.Preview(100); got != "one two three" {
		t.Errorf("Preview = %q", got)
	}
	empty := Note{Title: "Only title"}
	if got := empty.Preview(100); got != "Only title" {
		t.Errorf("Preview = %q", got)
	}
	for maxLen, want := range map[int]string{8: "one t...", 2: "on", 0: ""} {
		if got := n.Preview(maxLen); got != want {
			t.Errorf("Preview(%d) = %q, want %q", maxLen, got, want)
		}
	}
}
