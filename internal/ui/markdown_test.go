package ui

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{"plain text", "Hello world", []string{"Hello world"}},
		{"heading", "# Sprint notes", []string{"Sprint notes"}},
		{"list", "- first\n- second", []string{"first", "second"}},
		{"emphasis", "This is **bold** and *italic*", []string{"bold", "italic"}},
		{
			"checklist",
			"## Meeting\n\n- [x] agenda\n- [ ] follow up\n\n**Owner**: me",
			[]string{"Meeting", "agenda", "follow up", "Owner"},
		},
	}
	for _, tt := range tests {
		for _, style := range []string{"dark", "light", "notty"} {
			t.Run(tt.name+"/"+style, func(t *testing.T) {
				got := stripANSI(RenderMarkdown(tt.input, 80, style))
				for _, want := range tt.wantContains {
					if !strings.Contains(got, want) {
						t.Errorf("rendered output missing %q:\n%s", want, got)
					}
				}
			})
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	if got := RenderMarkdown("  \n", 80, "dark"); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestRenderMarkdownWraps(t *testing.T) {
	long := strings.Repeat("word ", 60)
	got := strings.TrimSpace(stripANSI(RenderMarkdown(long, 40, "notty")))
	if n := strings.Count(got, "\n") + 1; n < 2 {
		t.Errorf("expected wrapped output, got %d lines", n)
	}
}

func TestRenderMarkdownUnknownStyleFallsBack(t *testing.T) {
	got := RenderMarkdown("# Title", 80, "/no/such/style.json")
	if !strings.Contains(got, "Title") {
		t.Errorf("expected raw content on failure, got %q", got)
	}
}
