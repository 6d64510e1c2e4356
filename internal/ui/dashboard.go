package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/chris-regnier/focusflow/internal/analytics"
	"github.com/chris-regnier/focusflow/internal/task"
)

var sparks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a row of block characters scaled to the maximum.
func Sparkline(values []int) string {
	maxV := 0
	for _, v := range values {
		maxV = max(maxV, v)
	}
	var b strings.Builder
	for _, v := range values {
		if maxV == 0 || v <= 0 {
			b.WriteRune(' ')
			continue
		}
		i := v * (len(sparks) - 1) / maxV
		b.WriteRune(sparks[i])
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// FormatDashboard renders the insights dashboard as stacked boxes.
func FormatDashboard(w io.Writer, d analytics.Dashboard, theme Theme) {
	box := theme.Panel().Padding(0, 1).Width(60)
	title := theme.Title()

	bar := progress.New(progress.WithSolidFill(string(theme.Focus)), progress.WithWidth(30))
	goal := min(d.Focus.GoalProgress, 1)

	f := d.Focus
	minutes := make([]int, len(f.Daily))
	for i, day := range f.Daily {
		minutes[i] = day.Minutes
	}
	focus := []string{
		title.Render("Focus"),
		fmt.Sprintf("Today      %s  %d/%d min", bar.ViewAs(goal), f.TodayMinutes, f.GoalMinutes),
		fmt.Sprintf("Last %-3d   %s  %s, %d min", d.Days, Sparkline(minutes), plural(f.Sessions, "session"), f.Minutes),
		fmt.Sprintf("Streak     %s (best %d)", plural(f.CurrentStreak, "day"), f.LongestStreak),
		fmt.Sprintf("Average    %.0f min per active day", f.AveragePerActiveDay),
	}
	if f.BestDay.Minutes > 0 {
		focus = append(focus, fmt.Sprintf("Best day   %s (%d min)", f.BestDay.Date, f.BestDay.Minutes))
	}
	if f.Interrupted > 0 {
		focus = append(focus, fmt.Sprintf("Interrupted %d", f.Interrupted))
	}

	t := d.Tasks
	var prio []string
	for _, p := range task.Priorities {
		if n := t.ByPriority[p]; n > 0 {
			prio = append(prio, theme.PriorityStyle(p).Render(fmt.Sprintf("%s %d", p, n)))
		}
	}
	tasks := []string{
		title.Render("Tasks"),
		fmt.Sprintf("%d open (%d in progress), %d done, %.0f%% complete", t.Open, t.InProgress, t.Done, t.CompletionRate*100),
		fmt.Sprintf("%d due today, %d overdue", t.DueToday, t.Overdue),
	}
	if len(prio) > 0 {
		tasks = append(tasks, strings.Join(prio, "  "))
	}

	n := d.Notes
	notes := []string{
		title.Render("Notes"),
		fmt.Sprintf("%s (%d pinned), %d words", plural(n.Total, "note"), n.Pinned, n.Words),
	}

	c := d.Calendar
	cal := []string{
		title.Render("Calendar"),
		fmt.Sprintf("%s today, %d in the next 7 days", plural(c.Today, "event"), c.Upcoming),
		fmt.Sprintf("%d synced with Google, %d local only", c.Synced, c.Local),
	}
	if c.Next != nil {
		cal = append(cal, fmt.Sprintf("Next: %s at %s", c.Next.Title, c.Next.Start.Local().Format(stampLayout)))
	}

	sections := make([]string, 0, 4)
	for _, lines := range [][]string{focus, tasks, notes, cal} {
		sections = append(sections, box.Render(strings.Join(lines, "\n")))
	}
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
}
