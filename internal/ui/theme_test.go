package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/chris-regnier/focusflow/internal/config"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/task"
	"github.com/google/go-cmp/cmp"
)

func TestPresets(t *testing.T) {
	want := []string{"dracula", "linen", "nord", "solarized-dark", "solarized-light", "tomato"}
	if diff := cmp.Diff(want, Presets()); diff != "" {
		t.Errorf("Presets mismatch (-want +got):\n%s", diff)
	}
	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			th := ResolveTheme(config.ThemeConfig{Preset: name})
			for label, c := range map[string]lipgloss.Color{
				"text": th.Text, "subtle": th.Subtle, "focus": th.Focus, "break": th.Break,
				"warn": th.Warn, "danger": th.Danger, "background": th.Background,
			} {
				if c == "" {
					t.Errorf("%s color is empty", label)
				}
			}
			if th.Focus == th.Break {
				t.Error("focus and break should be distinguishable")
			}
			if th.MarkdownStyle != "dark" && th.MarkdownStyle != "light" {
				t.Errorf("markdown style = %q", th.MarkdownStyle)
			}
		})
	}
}

func TestResolveTheme(t *testing.T) {
	tomato := presets[DefaultPreset]
	tests := []struct {
		name string
		cfg  config.ThemeConfig
		want Theme
	}{
		{"empty uses default", config.ThemeConfig{}, tomato},
		{"unknown falls back", config.ThemeConfig{Preset: "gruvbox"}, tomato},
		{"named preset", config.ThemeConfig{Preset: "linen"}, presets["linen"]},
		{
			"overrides",
			config.ThemeConfig{Preset: "tomato", Focus: "#FF0000", Background: "#112233", MarkdownStyle: "notty"},
			func() Theme {
				th := tomato
				th.Focus = "#FF0000"
				th.Background = "#112233"
				th.MarkdownStyle = "notty"
				return th
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ResolveTheme(tt.cfg)); diff != "" {
				t.Errorf("ResolveTheme mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPhaseAndPriorityStyles(t *testing.T) {
	th := ResolveTheme(config.ThemeConfig{Preset: "nord"})
	phases := map[pomodoro.Phase]lipgloss.Color{
		pomodoro.PhaseFocus:      th.Focus,
		pomodoro.PhaseShortBreak: th.Break,
		pomodoro.PhaseLongBreak:  th.Break,
	}
	for p, want := range phases {
		if got := th.PhaseStyle(p).GetForeground(); got != want {
			t.Errorf("PhaseStyle(%s) = %v, want %v", p, got, want)
		}
	}
	priorities := map[task.Priority]lipgloss.Color{
		task.PriorityUrgent: th.Danger,
		task.PriorityHigh:   th.Warn,
		task.PriorityMedium: th.Text,
		task.PriorityLow:    th.Subtle,
	}
	for p, want := range priorities {
		if got := th.PriorityStyle(p).GetForeground(); got != want {
			t.Errorf("PriorityStyle(%s) = %v, want %v", p, got, want)
		}
	}
	if !th.PriorityStyle(task.PriorityUrgent).GetBold() {
		t.Error("urgent should be bold")
	}
}

func TestStylesPaintBackground(t *testing.T) {
	th := ResolveTheme(config.ThemeConfig{})
	for name, s := range map[string]lipgloss.Style{
		"title": th.Title(), "hint": th.Hint(), "alert": th.Alert(), "panel": th.Panel(),
	} {
		if s.GetBackground() != th.Background {
			t.Errorf("%s background = %v, want %v", name, s.GetBackground(), th.Background)
		}
	}
	if th.Panel().GetBorderBottomBackground() != th.Background {
		t.Error("panel border should share the background")
	}
}

func TestFill(t *testing.T) {
	th := ResolveTheme(config.ThemeConfig{})
	tests := []struct {
		name          string
		content       string
		width, height int
	}{
		{"pads short content", "25:00", 40, 10},
		{"cuts tall content", strings.Repeat("x\n", 30) + "x", 20, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(th.Fill(tt.content, tt.width, tt.height), "\n")
			if len(lines) != tt.height {
				t.Fatalf("got %d lines, want %d", len(lines), tt.height)
			}
			for i, line := range lines {
				if w := lipgloss.Width(line); w != tt.width {
					t.Errorf("line %d width = %d, want %d", i, w, tt.width)
				}
			}
		})
	}

	first := stripANSI(strings.Split(th.Fill("ab", 10, 2), "\n")[0])
	if first != "    ab    " {
		t.Errorf("content not centered: %q", first)
	}
}

func TestStatusMark(t *testing.T) {
	cases := map[task.Status]string{
		task.StatusTodo:       "[ ]",
		task.StatusInProgress: "[~]",
		task.StatusDone:       "[x]",
	}
	for status, want := range cases {
		if got := StatusMark(status); got != want {
			t.Errorf("StatusMark(%s) = %q, want %q", status, got, want)
		}
	}
}
