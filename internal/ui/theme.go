package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chris-regnier/focusflow/internal/config"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/task"
)

// DefaultPreset is used when the configured preset is empty or unknown.
const DefaultPreset = "tomato"

// Theme is the resolved palette for terminal output. Focus and Break tint
// the two timer phases; Warn and Danger mark high and urgent work.
type Theme struct {
	Text          lipgloss.Color
	Subtle        lipgloss.Color
	Focus         lipgloss.Color
	Break         lipgloss.Color
	Warn          lipgloss.Color
	Danger        lipgloss.Color
	Background    lipgloss.Color
	MarkdownStyle string
}

var presets = map[string]Theme{
	"tomato": {
		Text: "252", Subtle: "244", Focus: "203", Break: "79",
		Warn: "214", Danger: "196", Background: "234", MarkdownStyle: "dark",
	},
	"linen": {
		Text: "236", Subtle: "246", Focus: "160", Break: "29",
		Warn: "130", Danger: "124", Background: "255", MarkdownStyle: "light",
	},
	"nord": {
		Text: "#ECEFF4", Subtle: "#4C566A", Focus: "#BF616A", Break: "#A3BE8C",
		Warn: "#EBCB8B", Danger: "#D08770", Background: "#2E3440", MarkdownStyle: "dark",
	},
	"dracula": {
		Text: "#F8F8F2", Subtle: "#6272A4", Focus: "#FF79C6", Break: "#50FA7B",
		Warn: "#F1FA8C", Danger: "#FF5555", Background: "#282A36", MarkdownStyle: "dark",
	},
	"solarized-dark": {
		Text: "#93A1A1", Subtle: "#586E75", Focus: "#CB4B16", Break: "#2AA198",
		Warn: "#B58900", Danger: "#DC322F", Background: "#002B36", MarkdownStyle: "dark",
	},
	"solarized-light": {
		Text: "#586E75", Subtle: "#93A1A1", Focus: "#CB4B16", Break: "#2AA198",
		Warn: "#B58900", Danger: "#DC322F", Background: "#FDF6E3", MarkdownStyle: "light",
	},
}

// Presets lists the built-in palettes by name.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveTheme picks the configured preset and applies color overrides.
func ResolveTheme(cfg config.ThemeConfig) Theme {
	theme, ok := presets[cfg.Preset]
	if !ok {
		theme = presets[DefaultPreset]
	}
	for _, o := range []struct {
		value string
		dst   *lipgloss.Color
	}{
		{cfg.Text, &theme.Text},
		{cfg.Subtle, &theme.Subtle},
		{cfg.Focus, &theme.Focus},
		{cfg.Break, &theme.Break},
		{cfg.Warn, &theme.Warn},
		{cfg.Danger, &theme.Danger},
		{cfg.Background, &theme.Background},
	} {
		if o.value != "" {
			*o.dst = lipgloss.Color(o.value)
		}
	}
	if cfg.MarkdownStyle != "" {
		theme.MarkdownStyle = cfg.MarkdownStyle
	}
	return theme
}

func (t Theme) base() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.Background)
}

// Title styles headings and the running clock.
func (t Theme) Title() lipgloss.Style {
	return t.base().Bold(true).Foreground(t.Text)
}

// Hint styles key help and secondary text.
func (t Theme) Hint() lipgloss.Style {
	return t.base().Foreground(t.Subtle)
}

// Alert styles overdue dates and destructive prompts.
func (t Theme) Alert() lipgloss.Style {
	return t.base().Foreground(t.Danger)
}

// Panel draws a rounded box, used for the dashboard.
func (t Theme) Panel() lipgloss.Style {
	return t.base().
		Foreground(t.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Subtle).
		BorderBackground(t.Background)
}

// PhaseColor is the tint of a timer phase.
func (t Theme) PhaseColor(p pomodoro.Phase) lipgloss.Color {
	if p == pomodoro.PhaseFocus {
		return t.Focus
	}
	return t.Break
}

// PhaseStyle renders a phase label in its tint.
func (t Theme) PhaseStyle(p pomodoro.Phase) lipgloss.Style {
	return t.base().Bold(true).Foreground(t.PhaseColor(p))
}

// PriorityStyle renders a task priority.
func (t Theme) PriorityStyle(p task.Priority) lipgloss.Style {
	switch p {
	case task.PriorityUrgent:
		return t.base().Bold(true).Foreground(t.Danger)
	case task.PriorityHigh:
		return t.base().Foreground(t.Warn)
	case task.PriorityLow:
		return t.base().Foreground(t.Subtle)
	}
	return t.base().Foreground(t.Text)
}

// Fill places content at the top center of a width x height screen painted
// with the theme background. Content taller than the screen is cut.
func (t Theme) Fill(content string, width, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		content = strings.Join(lines[:height], "\n")
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// StatusMark returns the checkbox shown in front of a task.
func StatusMark(s task.Status) string {
	switch s {
	case task.StatusDone:
		return "[x]"
	case task.StatusInProgress:
		return "[~]"
	}
	return "[ ]"
}
