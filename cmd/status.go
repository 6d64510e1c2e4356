package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/shell"
	"github.com/chris-regnier/focusflow/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statusData holds the template data for status formatting.
type statusData struct {
	Icon         string `json:"icon"`
	Phase        string `json:"phase,omitempty"`
	State        string `json:"state"`
	Remaining    string `json:"remaining,omitempty"`
	TodayMinutes int    `json:"today_minutes"`
	GoalMinutes  int    `json:"goal_minutes"`
	Streak       int    `json:"streak"`
	StreakIcon   string `json:"streak_icon"`
	OpenTasks    int    `json:"open_tasks"`
	DueToday     int    `json:"due_today"`
	Backend      string `json:"backend,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var (
		envFlag     bool
		refreshFlag bool
		formatFlag  string
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show focus status for your shell prompt",
		Long: `Show focus status for shell prompt integration.

Outputs the timer phase and time left, today's focus minutes against the
daily goal, the focus streak and open task counts. Reads from cache when
fresh, queries storage when stale.

Use --env to output shell environment variable assignments.
Use --refresh to force a cache refresh.
Use --format with a Go template for custom output.`,
		Example: `  focusflow status
  focusflow status --env
  focusflow status --refresh
  focusflow status --format "{{.Icon}} {{.Remaining}} {{.Streak}}{{.StreakIcon}}"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			ttl, err := appConfig.Shell.TTL()
			if err != nil {
				logger.Debug("invalid shell cache ttl, using 1m", zap.Error(err))
				ttl = time.Minute
			}

			cache := shell.ReadCache(appConfig.DataDir)
			if refreshFlag || !cache.IsFresh(ttl, now) {
				settings, err := pomodoroSettings()
				if err != nil {
					return err
				}
				cache, err = shell.ComputeStatus(store, settings, dailyGoal(), now)
				if err != nil {
					return withCode(exitStorage, fmt.Errorf("computing status: %w", err))
				}
				cache.StorageBackend = appConfig.Storage
				if err := shell.WriteCache(appConfig.DataDir, cache); err != nil {
					// A prompt must still render when the cache cannot be written.
					logger.Warn("writing prompt cache", zap.Error(err))
				}
			}

			data := buildStatusData(cache, now)
			out := cmd.OutOrStdout()
			switch {
			case jsonOutput:
				return ui.FormatJSON(out, data)
			case envFlag:
				outputEnv(out, data)
				return nil
			case formatFlag != "":
				return outputTemplate(out, data, formatFlag)
			}
			outputDefault(out, data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&envFlag, "env", false, "output shell environment variable assignments")
	cmd.Flags().BoolVar(&refreshFlag, "refresh", false, "force cache refresh")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Go template format string")
	return cmd
}

func buildStatusData(cache *shell.PromptCache, now time.Time) statusData {
	icon := appConfig.Shell.IdleIcon
	switch {
	case cache.State == pomodoro.StateIdle:
	case cache.Phase == pomodoro.PhaseFocus:
		icon = appConfig.Shell.FocusIcon
	default:
		icon = appConfig.Shell.BreakIcon
	}
	data := statusData{
		Icon:         icon,
		Phase:        string(cache.Phase),
		State:        string(cache.State),
		TodayMinutes: cache.TodayMinutes,
		GoalMinutes:  cache.GoalMinutes,
		Streak:       cache.Streak,
		StreakIcon:   appConfig.Shell.StreakIcon,
		OpenTasks:    cache.OpenTasks,
		DueToday:     cache.DueToday,
		Backend:      cache.StorageBackend,
	}
	if cache.State != pomodoro.StateIdle {
		data.Remaining = clock(cache.RemainingAt(now))
	}
	return data
}

func clock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func outputEnv(w io.Writer, data statusData) {
	fmt.Fprintf(w, "export FOCUSFLOW_ICON=%q\n", data.Icon)
	fmt.Fprintf(w, "export FOCUSFLOW_STATE=%q\n", data.State)
	fmt.Fprintf(w, "export FOCUSFLOW_PHASE=%q\n", data.Phase)
	fmt.Fprintf(w, "export FOCUSFLOW_REMAINING=%q\n", data.Remaining)
	fmt.Fprintf(w, "export FOCUSFLOW_TODAY_MINUTES=%q\n", fmt.Sprint(data.TodayMinutes))
	fmt.Fprintf(w, "export FOCUSFLOW_STREAK=%q\n", fmt.Sprint(data.Streak))
	fmt.Fprintf(w, "export FOCUSFLOW_STREAK_ICON=%q\n", data.StreakIcon)
	fmt.Fprintf(w, "export FOCUSFLOW_OPEN_TASKS=%q\n", fmt.Sprint(data.OpenTasks))
	if data.Backend != "" {
		fmt.Fprintf(w, "export FOCUSFLOW_BACKEND=%q\n", data.Backend)
	}
}

func outputTemplate(w io.Writer, data statusData, format string) error {
	tmpl, err := template.New("status").Parse(format)
	if err != nil {
		return fmt.Errorf("invalid format template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing format template: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

func outputDefault(w io.Writer, data statusData) {
	var parts []string

	// Timer indicator
	if data.Remaining != "" {
		parts = append(parts, data.Icon+" "+data.Remaining)
	} else {
		parts = append(parts, data.Icon)
	}

	parts = append(parts, fmt.Sprintf("%d/%dm", data.TodayMinutes, data.GoalMinutes))
	if data.Streak > 0 {
		parts = append(parts, fmt.Sprintf("%d%s", data.Streak, data.StreakIcon))
	}

	if appConfig.Shell.ShowTasks && data.OpenTasks > 0 {
		tasks := fmt.Sprintf("%d open", data.OpenTasks)
		if data.DueToday > 0 {
			tasks += fmt.Sprintf(" (%d due)", data.DueToday)
		}
		parts = append(parts, tasks)
	}

	if appConfig.Shell.ShowBackend && data.Backend != "" {
		parts = append(parts, data.Backend)
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}
