package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chris-regnier/focusflow/internal/config"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTimer(t *testing.T) (timerModel, *fakeClock, *[]pomodoro.Session) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	var recorded []pomodoro.Session
	m := newTimerModel(TimerOptions{
		Timer: pomodoro.NewTimer(pomodoro.DefaultSettings()),
		Theme: ResolveTheme(config.ThemeConfig{}),
		Now:   clock.Now,
		OnSession: func(s pomodoro.Session, _ pomodoro.Phase) error {
			recorded = append(recorded, s)
			return nil
		},
	})
	return m, clock, &recorded
}

func keyPress(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m timerModel, msg tea.Msg) timerModel {
	next, _ := m.Update(msg)
	return next.(timerModel)
}

func TestTimerViewStartsAndCompletes(t *testing.T) {
	m, clock, recorded := newTestTimer(t)
	m = update(m, keyPress(" "))
	if m.opts.Timer.State() != pomodoro.StateRunning {
		t.Fatalf("state = %s, want running", m.opts.Timer.State())
	}

	clock.now = clock.now.Add(10 * time.Minute)
	m = update(m, tickMsg(clock.now))
	if view := stripANSI(m.View()); !strings.Contains(view, "15:00") {
		t.Errorf("expected 15:00 remaining in view:\n%s", view)
	}

	clock.now = clock.now.Add(16 * time.Minute)
	m = update(m, tickMsg(clock.now))
	if len(*recorded) != 1 || !(*recorded)[0].Completed {
		t.Fatalf("recorded = %+v, want one completed session", *recorded)
	}
	if m.opts.Timer.Phase() != pomodoro.PhaseShortBreak {
		t.Errorf("phase = %s, want short break", m.opts.Timer.Phase())
	}
	if !strings.Contains(m.View(), "Focus complete.") {
		t.Error("expected completion status in view")
	}
}

func TestTimerViewPauseSkipReset(t *testing.T) {
	m, clock, recorded := newTestTimer(t)
	m = update(m, keyPress(" "))
	clock.now = clock.now.Add(5 * time.Minute)
	m = update(m, keyPress("p"))
	if m.opts.Timer.State() != pomodoro.StatePaused {
		t.Fatalf("state = %s, want paused", m.opts.Timer.State())
	}
	if !strings.Contains(stripANSI(m.View()), "paused") {
		t.Error("expected paused marker")
	}

	m = update(m, keyPress("s"))
	if len(*recorded) != 1 || (*recorded)[0].Completed || (*recorded)[0].Elapsed != 5*time.Minute {
		t.Fatalf("recorded = %+v, want one interrupted 5m session", *recorded)
	}
	if m.opts.Timer.CompletedFocus() != 0 {
		t.Error("skip must not count toward the long break")
	}

	m = update(m, keyPress(" "))
	m = update(m, keyPress("r"))
	if m.opts.Timer.State() != pomodoro.StateIdle {
		t.Errorf("state after reset = %s, want idle", m.opts.Timer.State())
	}
}

func TestTimerViewQuit(t *testing.T) {
	m, _, _ := newTestTimer(t)
	next, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(timerModel).View() != "" {
		t.Error("quitting view should be empty")
	}
}

func TestTimerViewFillsWindow(t *testing.T) {
	m, _, _ := newTestTimer(t)
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 20})
	lines := strings.Split(stripANSI(m.View()), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 lines, got %d", len(lines))
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[time.Duration]string{
		25 * time.Minute:                "25:00",
		90 * time.Second:                "01:30",
		1500 * time.Millisecond:         "00:02",
		-time.Second:                    "00:00",
		100*time.Minute + 5*time.Second: "100:05",
	}
	for d, want := range cases {
		if got := formatClock(d); got != want {
			t.Errorf("formatClock(%s) = %q, want %q", d, got, want)
		}
	}
}
