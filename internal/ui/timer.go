package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
)

// TimerOptions configures the interactive timer view.
type TimerOptions struct {
	Timer     *pomodoro.Timer
	Theme     Theme
	TaskTitle string
	Now       func() time.Time
	// OnSession is called for every completed or skipped phase with the
	// phase the timer moved to.
	OnSession func(s pomodoro.Session, next pomodoro.Phase) error
}

type tickMsg time.Time

type timerModel struct {
	opts     TimerOptions
	progress progress.Model
	width    int
	height   int
	status   string
	quitting bool
}

func newTimerModel(opts TimerOptions) timerModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return timerModel{
		opts:     opts,
		progress: progress.New(progress.WithSolidFill(string(opts.Theme.Focus)), progress.WithWidth(40)),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m timerModel) Init() tea.Cmd {
	return tick()
}

func (m *timerModel) record(s *pomodoro.Session) {
	if s == nil || m.opts.OnSession == nil {
		return
	}
	if err := m.opts.OnSession(*s, m.opts.Timer.Phase()); err != nil {
		m.status = "could not save session: " + err.Error()
		return
	}
	if s.Completed {
		m.status = fmt.Sprintf("%s complete.", s.Phase.Label())
	} else {
		m.status = fmt.Sprintf("%s skipped after %s.", s.Phase.Label(), s.Elapsed.Round(time.Second))
	}
}

func (m timerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	t := m.opts.Timer
	switch msg := msg.(type) {
	case tickMsg:
		now := m.opts.Now()
		for s := t.Tick(now); s != nil; s = t.Tick(now) {
			m.record(s)
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = max(min(msg.Width-8, 60), 10)

	case tea.KeyMsg:
		now := m.opts.Now()
		switch msg.String() {
		case " ", "p":
			if err := t.Toggle(now); err != nil {
				m.status = err.Error()
			} else {
				m.status = ""
			}
		case "s":
			m.status = fmt.Sprintf("%s skipped.", t.Phase().Label())
			m.record(t.Skip(now))
		case "r":
			t.Reset()
			m.status = "Reset."
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}

func (m timerModel) View() string {
	if m.quitting {
		return ""
	}
	t := m.opts.Timer
	now := m.opts.Now()
	theme := m.opts.Theme

	var b strings.Builder
	b.WriteString(theme.PhaseStyle(t.Phase()).Render(t.Phase().Label()))
	b.WriteString("  ")
	b.WriteString(theme.Title().Render(formatClock(t.Remaining(now))))
	switch t.State() {
	case pomodoro.StatePaused:
		b.WriteString("  " + theme.Alert().Render("paused"))
	case pomodoro.StateIdle:
		b.WriteString("  " + theme.Hint().Render("press space to start"))
	}
	b.WriteString("\n\n")
	bar := m.progress
	bar.FullColor = string(theme.PhaseColor(t.Phase()))
	b.WriteString(bar.ViewAs(t.Progress(now)))
	b.WriteString("\n\n")
	if m.opts.TaskTitle != "" {
		b.WriteString("Task: " + m.opts.TaskTitle + "\n")
	}
	interval := t.Settings().LongBreakInterval
	fmt.Fprintf(&b, "Pomodoros: %d (long break every %d)\n", t.CompletedFocus(), interval)
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.Hint().Render("space pause/resume • s skip • r reset • q quit"))

	if m.width > 0 && m.height > 0 {
		return theme.Fill(b.String(), m.width, m.height)
	}
	return b.String()
}

// RunTimer shows the interactive timer until the user quits. The timer is
// left in whatever state the user quit in so the caller can save it.
func RunTimer(opts TimerOptions) error {
	_, err := tea.NewProgram(newTimerModel(opts), tea.WithAltScreen()).Run()
	return err
}
