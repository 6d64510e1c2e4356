package cmd

import (
	"context"
	"io"
	"time"

	"github.com/chris-regnier/focusflow/internal/analytics"
	"github.com/chris-regnier/focusflow/internal/calsync"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// historyDays bounds how far back sessions are read for streaks.
const historyDays = 366

const autoSyncTimeout = 20 * time.Second

// autoSync runs a calendar sync before the dashboard when calendar.auto_sync
// is on. Failures are logged; the dashboard shows local data regardless.
func autoSync(ctx context.Context) {
	if !appConfig.Calendar.AutoSync || !authorized() {
		return
	}
	p, err := calsync.ParsePolicy(appConfig.Calendar.ConflictPolicy)
	if err != nil {
		logger.Warn("auto-sync skipped", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, autoSyncTimeout)
	defer cancel()
	remote, err := newRemote(ctx)
	if err != nil {
		logger.Warn("auto-sync skipped", zap.Error(err))
		return
	}
	from, to := appConfig.Calendar.Window(time.Now())
	res, err := syncEngine(remote).Sync(ctx, calsync.Options{From: from, To: to, Policy: p})
	if err != nil {
		logger.Warn("auto-sync failed", zap.Error(err))
		return
	}
	logger.Debug("auto-sync done", zap.Int("changes", res.Changes()), zap.Int("errors", len(res.Errors)))
}

func loadDashboard(days int, now time.Time) (analytics.Dashboard, error) {
	in := analytics.Input{
		Now:              now,
		Days:             days,
		Location:         time.Local,
		DailyGoalMinutes: dailyGoal(),
	}
	var err error
	if in.Tasks, err = store.ListTasks(storage.TaskListOptions{}); err != nil {
		return analytics.Dashboard{}, err
	}
	since := now.AddDate(0, 0, -historyDays)
	if in.Sessions, err = store.ListSessions(storage.SessionListOptions{StartDate: &since}); err != nil {
		return analytics.Dashboard{}, err
	}
	if in.Notes, err = store.ListNotes(storage.NoteListOptions{}); err != nil {
		return analytics.Dashboard{}, err
	}
	if in.Folders, err = store.ListFolders(); err != nil {
		return analytics.Dashboard{}, err
	}
	if in.Events, err = store.ListEvents(storage.EventListOptions{}); err != nil {
		return analytics.Dashboard{}, err
	}
	return analytics.Build(in), nil
}

func runInsights(cmd *cobra.Command, days int) error {
	autoSync(cmd.Context())
	d, err := loadDashboard(days, time.Now())
	if err != nil {
		return err
	}
	return emitPaged(cmd, d, func(w io.Writer) {
		ui.FormatDashboard(w, d, theme())
	})
}

func newInsightsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:     "insights",
		Aliases: []string{"dashboard", "stats"},
		Short:   "Show the productivity dashboard",
		Long: `Show tasks, focus time, streaks, notes and upcoming events.

Daily series cover the last --days days, ending today.`,
		Example: `  focusflow insights
  focusflow insights --days 30
  focusflow insights --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsights(cmd, days)
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", analytics.DefaultDays, "length of the daily series")
	return cmd
}
