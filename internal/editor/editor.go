// Package editor launches the user's $EDITOR on notes and task descriptions.
package editor

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// ResolveEditor determines which editor to use based on config, env vars, and fallback.
func ResolveEditor(configEditor string) string {
	if configEditor != "" {
		return configEditor
	}
	if ed := os.Getenv("EDITOR"); ed != "" {
		return ed
	}
	if ed := os.Getenv("VISUAL"); ed != "" {
		return ed
	}
	return "vi"
}

// Edit opens the given content in an editor and returns the edited content.
// If the user saves unchanged content or an empty file, it returns the original
// content and changed=false.
func Edit(editorCmd string, initialContent string) (content string, changed bool, err error) {
	result, err := run(editorCmd, initialContent)
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(result) == "" {
		return "", false, nil
	}
	if strings.TrimSpace(result) == strings.TrimSpace(initialContent) {
		return initialContent, false, nil
	}
	return result, true, nil
}

// NoteDoc is the editable form of a note: a YAML header with the title and
// tags, followed by the Markdown body.
type NoteDoc struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags,omitempty"`
	Body  string   `yaml:"-"`
}

// Marshal renders d as a front-matter document.
func (d NoteDoc) Marshal() (string, error) {
	head, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encoding note header: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n")
	b.WriteString(d.Body)
	return b.String(), nil
}

// ParseNoteDoc reads a document produced by Marshal. A document without a
// header is treated as a bare body.
func ParseNoteDoc(s string) (NoteDoc, error) {
	var d NoteDoc
	body, err := frontmatter.Parse(bytes.NewReader([]byte(s)), &d)
	if err != nil {
		return NoteDoc{}, fmt.Errorf("parsing note header: %w", err)
	}
	d.Title = strings.TrimSpace(d.Title)
	d.Body = strings.TrimLeft(string(body), "\n")
	return d, nil
}

// EditNote opens d in the editor. It returns changed=false when the user
// leaves the document as it was or empties it.
func EditNote(editorCmd string, d NoteDoc) (NoteDoc, bool, error) {
	initial, err := d.Marshal()
	if err != nil {
		return d, false, err
	}
	result, changed, err := Edit(editorCmd, initial)
	if err != nil || !changed {
		return d, false, err
	}
	edited, err := ParseNoteDoc(result)
	if err != nil {
		return d, false, err
	}
	if edited.Title == "" {
		edited.Title = d.Title
	}
	return edited, true, nil
}

func run(editorCmd, initialContent string) (string, error) {
	parts := strings.Fields(editorCmd)
	if len(parts) == 0 {
		return "", fmt.Errorf("empty editor command")
	}

	tmp, err := os.CreateTemp("", "focusflow-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(initialContent); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	tmp.Close()

	cmdArgs := append(parts[1:], tmpName)
	cmd := exec.Command(parts[0], cmdArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	data, err := os.ReadFile(tmpName)
	if err != nil {
		return "", fmt.Errorf("reading edited file: %w", err)
	}
	return string(data), nil
}
