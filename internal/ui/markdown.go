package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the wrap width used when the terminal width is unknown.
const DefaultWidth = 80

// renderers caches one glamour renderer per width and style.
var (
	renderMu  sync.Mutex
	renderers = make(map[rendererKey]*glamour.TermRenderer)
)

type rendererKey struct {
	width int
	style string
}

func renderer(width int, style string) (*glamour.TermRenderer, error) {
	if width < 1 {
		width = DefaultWidth
	}
	if style == "" {
		style = "dark"
	}
	key := rendererKey{width, style}
	if r, ok := renderers[key]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers[key] = r
	return r, nil
}

// RenderMarkdown renders note content for the terminal with the given glamour
// style ("dark", "light", "notty", ...). The raw content is returned when
// rendering fails.
func RenderMarkdown(content string, width int, style string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	renderMu.Lock()
	defer renderMu.Unlock()

	r, err := renderer(width, style)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
