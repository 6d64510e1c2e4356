package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var quitKey = key.NewBinding(
	key.WithKeys("q", "esc", "ctrl+c"),
	key.WithHelp("q", "quit"),
)

// pager scrolls long output in the alternate screen. The body is capped at
// limit columns when limit is positive.
type pager struct {
	body   string
	limit  int
	theme  Theme
	vp     viewport.Model
	sized  bool
	width  int
	height int
}

func newPager(body string, theme Theme, limit int) pager {
	return pager{body: body, theme: theme, limit: limit}
}

func (p pager) Init() tea.Cmd { return nil }

func (p pager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			return p, tea.Quit
		}
	case tea.WindowSizeMsg:
		p.resize(msg.Width, msg.Height)
	}
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return p, cmd
}

func (p *pager) resize(width, height int) {
	p.width, p.height = width, height
	w := width
	if p.limit > 0 {
		w = min(w, p.limit)
	}
	h := max(height-1, 1)
	if !p.sized {
		p.vp = viewport.New(w, h)
		p.vp.SetContent(p.body)
		p.sized = true
	} else {
		p.vp.Width, p.vp.Height = w, h
	}
	p.vp.Style = lipgloss.NewStyle().Foreground(p.theme.Text).Background(p.theme.Background)
}

func (p pager) View() string {
	if !p.sized {
		return ""
	}
	footer := p.theme.Hint().Render(fmt.Sprintf("↑/↓ scroll • %s %s • %d%%",
		quitKey.Help().Key, quitKey.Help().Desc, int(p.vp.ScrollPercent()*100)))
	return p.theme.Fill(lipgloss.JoinVertical(lipgloss.Left, p.vp.View(), footer), p.width, p.height)
}

// Page writes content to w, opening a pager when w is a terminal too short
// to show it all.
func Page(w io.Writer, content string, theme Theme, maxWidth int) error {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, height, err := term.GetSize(int(f.Fd()))
		if err == nil && strings.Count(content, "\n")+1 > height-2 {
			_, err := tea.NewProgram(newPager(content, theme, maxWidth), tea.WithAltScreen(), tea.WithOutput(f)).Run()
			return err
		}
	}
	_, err := io.WriteString(w, content)
	return err
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
