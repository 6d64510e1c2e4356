package editor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveEditorConfig(t *testing.T) {
	result := ResolveEditor("nano")
	if result != "nano" {
		t.Errorf("expected nano, got %q", result)
	}
}

func TestResolveEditorEnvEditor(t *testing.T) {
	t.Setenv("EDITOR", "vim")
	t.Setenv("VISUAL", "code")
	result := ResolveEditor("")
	if result != "vim" {
		t.Errorf("expected vim (from EDITOR), got %q", result)
	}
}

func TestResolveEditorEnvVisual(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "code")
	result := ResolveEditor("")
	if result != "code" {
		t.Errorf("expected code (from VISUAL), got %q", result)
	}
}

func TestResolveEditorFallback(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	result := ResolveEditor("")
	if result != "vi" {
		t.Errorf("expected vi (fallback), got %q", result)
	}
}

// script writes an executable shell script that acts as the editor.
func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "editor.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEditWithTrueCommand(t *testing.T) {
	content, changed, err := Edit("true", "original content")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if changed {
		t.Error("expected changed=false for unchanged content")
	}
	if content != "original content" {
		t.Errorf("content = %q, want %q", content, "original content")
	}
}

func TestEditEmptyResult(t *testing.T) {
	content, changed, err := Edit(script(t, `: > "$1"`), "original")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if changed {
		t.Error("expected changed=false for empty result")
	}
	if content != "" {
		t.Errorf("content = %q, want empty", content)
	}
}

func TestEditChanged(t *testing.T) {
	content, changed, err := Edit(script(t, `echo "more" >> "$1"`), "original\n")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !changed || content != "original\nmore\n" {
		t.Errorf("Edit = %q, %v", content, changed)
	}
}

func TestEditFailingEditor(t *testing.T) {
	if _, _, err := Edit("false", "x"); err == nil {
		t.Error("expected error from failing editor")
	}
	if _, _, err := Edit("   ", "x"); err == nil {
		t.Error("expected error for empty editor command")
	}
}

func TestNoteDocRoundTrip(t *testing.T) {
	d := NoteDoc{Title: "Standup: notes", Tags: []string{"work"}, Body: "# Agenda\n\n- one\n"}
	s, err := d.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseNoteDoc(s)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNoteDocWithoutHeader(t *testing.T) {
	got, err := ParseNoteDoc("just text\n")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "" || got.Body != "just text\n" {
		t.Errorf("ParseNoteDoc = %+v", got)
	}
}

func TestEditNote(t *testing.T) {
	ed := script(t, `sed -i.bak 's/^title: .*/title: Renamed/' "$1" && echo "added" >> "$1"`)
	got, changed, err := EditNote(ed, NoteDoc{Title: "Old", Body: "body\n"})
	if err != nil {
		t.Fatalf("EditNote: %v", err)
	}
	want := NoteDoc{Title: "Renamed", Body: "body\nadded\n"}
	if !changed {
		t.Error("expected changed=true")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EditNote mismatch (-want +got):\n%s", diff)
	}
}

func TestEditNoteKeepsTitleWhenCleared(t *testing.T) {
	ed := script(t, `printf '%s\n' '---' 'title: ""' '---' 'new body' > "$1"`)
	got, changed, err := EditNote(ed, NoteDoc{Title: "Keep", Body: "old\n"})
	if err != nil {
		t.Fatal(err)
	}
	if !changed || got.Title != "Keep" || got.Body != "new body\n" {
		t.Errorf("EditNote = %+v, %v", got, changed)
	}
}
