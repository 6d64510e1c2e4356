package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/calsync"
	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/gcal"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// newRemote connects to the configured Google calendar. Tests replace it.
var newRemote = func(ctx context.Context) (calsync.Remote, error) {
	return googleClient(ctx)
}

func oauthConfig() gcal.OAuthConfig {
	return gcal.OAuthConfig{
		ClientID:     appConfig.Calendar.ClientID,
		ClientSecret: appConfig.Calendar.ClientSecret,
		RedirectPort: appConfig.Calendar.RedirectPort,
	}
}

func googleClient(ctx context.Context) (*gcal.Client, error) {
	src, err := gcal.TokenSource(ctx, oauthConfig(), gcal.TokenPath(appConfig.DataDir), logger)
	if err != nil {
		return nil, err
	}
	return gcal.New(ctx, appConfig.Calendar.CalendarID, logger, option.WithTokenSource(src))
}

func authorized() bool {
	_, err := gcal.LoadToken(gcal.TokenPath(appConfig.DataDir))
	return err == nil
}

// openBrowser opens url in the default browser.
func openBrowser(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		c = exec.Command("xdg-open", url)
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return c.Start()
}

func syncEngine(remote calsync.Remote) *calsync.Engine {
	return &calsync.Engine{
		Store:  store,
		Remote: remote,
		Logger: logger,
		Retry:  calsync.DefaultRetry,
	}
}

func newCalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cal",
		Aliases: []string{"calendar"},
		Short:   "Manage calendar events and Google Calendar sync",
	}
	cmd.AddCommand(
		newCalAddCmd(),
		newCalListCmd(),
		newCalEditCmd(),
		newCalDeleteCmd(),
		newCalAuthCmd(),
		newCalLogoutCmd(),
		newCalCalendarsCmd(),
		newCalSyncCmd(),
		newCalStatusCmd(),
	)
	return cmd
}

func newCalAddCmd() *cobra.Command {
	var (
		start       string
		end         string
		duration    time.Duration
		allDay      bool
		location    string
		description string
	)
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a calendar event",
		Long: `Add a local calendar event. It is pushed to Google Calendar on the next sync.
Without --end, the event lasts --duration (default 1h); all-day events last
one day.`,
		Example: `  focusflow cal add Dentist --start "tomorrow 14:30"
  focusflow cal add Offsite --start 2025-07-01 --all-day
  focusflow cal add "Team sync" --start "mon 10:00" --duration 30m --location "Room 4"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _, err := parseWhen("start", start)
			if err != nil {
				return err
			}
			to := from.Add(duration)
			if allDay {
				to = from.AddDate(0, 0, 1)
			}
			if end != "" {
				if to, _, err = parseWhen("end", end); err != nil {
					return err
				}
			}
			e, err := event.New(strings.Join(args, " "), from.UTC(), to.UTC(), storage.Now())
			if err != nil {
				return fmt.Errorf("%w: %v", storage.ErrValidation, err)
			}
			e.AllDay = allDay
			e.Location = location
			e.Description = description
			if err := store.CreateEvent(e); err != nil {
				return err
			}
			return emit(cmd, e, func(w io.Writer) {
				ui.FormatCreated(w, "event", e.ID, e.Title)
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start date and time (required)")
	cmd.Flags().StringVar(&end, "end", "", "end date and time")
	cmd.Flags().DurationVarP(&duration, "duration", "d", time.Hour, "event length when --end is not given")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "all-day event")
	cmd.Flags().StringVar(&location, "location", "", "location")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newCalListCmd() *cobra.Command {
	var (
		from  string
		to    string
		days  int
		local bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List calendar events",
		Long:  "List events overlapping a window, by default today and the next 7 days.",
		Example: `  focusflow cal list
  focusflow cal list --from monday --days 5
  focusflow cal list --from 2025-06-01 --to 2025-07-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			y, m, d := now.Date()
			start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
			if from != "" {
				t, _, err := parseWhen("from", from)
				if err != nil {
					return err
				}
				start = t
			}
			end := start.AddDate(0, 0, days)
			if to != "" {
				t, _, err := parseWhen("to", to)
				if err != nil {
					return err
				}
				end = t
			}
			opts := storage.EventListOptions{From: &start, To: &end}
			if local {
				opts.Source = event.SourceLocal
			}
			events, err := store.ListEvents(opts)
			if err != nil {
				return err
			}
			if events == nil {
				events = []event.Event{}
			}
			return emitPaged(cmd, events, func(w io.Writer) {
				ui.FormatEventList(w, events, time.Local)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "window start (default: today)")
	cmd.Flags().StringVar(&to, "to", "", "window end (exclusive)")
	cmd.Flags().IntVar(&days, "days", 7, "window length in days when --to is not given")
	cmd.Flags().BoolVar(&local, "local", false, "only events created in focusflow")
	return cmd
}

func newCalEditCmd() *cobra.Command {
	var (
		title       string
		start       string
		end         string
		location    string
		description string
	)
	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Change a calendar event",
		Example: `  focusflow cal edit k2v8qz1a --start "fri 15:00" --end "fri 16:00"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := store.GetEvent(args[0])
			if err != nil {
				return notFound("event", args[0], err)
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				e.Title = strings.TrimSpace(title)
			}
			if flags.Changed("start") {
				length := e.End.Sub(e.Start)
				t, _, err := parseWhen("start", start)
				if err != nil {
					return err
				}
				e.Start, e.End = t.UTC(), t.UTC().Add(length)
			}
			if flags.Changed("end") {
				t, _, err := parseWhen("end", end)
				if err != nil {
					return err
				}
				e.End = t.UTC()
			}
			if flags.Changed("location") {
				e.Location = location
			}
			if flags.Changed("description") {
				e.Description = description
			}
			if err := e.Validate(); err != nil {
				return fmt.Errorf("%w: %v", storage.ErrValidation, err)
			}
			updated, err := store.UpdateEvent(e)
			if err != nil {
				return err
			}
			return emit(cmd, updated, func(w io.Writer) {
				ui.FormatUpdated(w, "event", updated.ID)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&start, "start", "", "new start; the event keeps its length")
	cmd.Flags().StringVar(&end, "end", "", "new end")
	cmd.Flags().StringVar(&location, "location", "", "new location")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func newCalDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a calendar event",
		Long: `Delete a calendar event. A synced event is also deleted from Google
Calendar on the next sync.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := store.GetEvent(args[0])
			if err != nil {
				return notFound("event", args[0], err)
			}
			ok, err := confirmDelete(cmd, "event", e.Title, force)
			if err != nil || !ok {
				return err
			}
			if err := calsync.DeleteEvent(store, e.ID); err != nil {
				return err
			}
			return emit(cmd, ui.DeleteResult{ID: e.ID, Deleted: true}, func(w io.Writer) {
				ui.FormatDeleted(w, "event", e.ID)
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}

func newCalAuthCmd() *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Connect focusflow to Google Calendar",
		Long: `Authorize focusflow to read and write your Google Calendar. A browser
window opens for consent; the resulting token is saved in the data directory.

Requires calendar.client_id and calendar.client_secret in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := oauthConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			tok, err := gcal.Authorize(ctx, cfg, func(url string) error {
				fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL to authorize focusflow:\n\n  %s\n\n", url)
				if noBrowser {
					return nil
				}
				if err := openBrowser(url); err != nil {
					logger.Debug("opening browser", zap.Error(err))
				}
				return nil
			})
			if err != nil {
				return withCode(exitExternal, err)
			}
			if err := gcal.SaveToken(gcal.TokenPath(appConfig.DataDir), tok); err != nil {
				return err
			}
			logger.Info("google calendar authorized")
			fmt.Fprintln(cmd.OutOrStdout(), "Google Calendar connected.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "only print the authorization URL")
	return cmd
}

func newCalLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved Google Calendar token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := gcal.DeleteToken(gcal.TokenPath(appConfig.DataDir)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Google Calendar disconnected.")
			return nil
		},
	}
}

func newCalCalendarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List the Google calendars you can sync with",
		Long:  "List your Google calendars. Set calendar.calendar_id to sync with one other than primary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := googleClient(cmd.Context())
			if err != nil {
				return withCode(exitExternal, err)
			}
			cals, err := client.ListCalendars(cmd.Context())
			if err != nil {
				return withCode(exitExternal, err)
			}
			return emit(cmd, cals, func(w io.Writer) {
				for _, c := range cals {
					mark := " "
					if c.Primary {
						mark = "*"
					}
					fmt.Fprintf(w, "%s %s  %s\n", mark, c.ID, c.Summary)
				}
			})
		},
	}
}

func newCalSyncCmd() *cobra.Command {
	var (
		watch  bool
		dryRun bool
		policy string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Two-way sync with Google Calendar",
		Long: `Synchronize local events with Google Calendar inside the configured window
(calendar.past_days before today to calendar.future_days after).

Events changed on both sides since the last sync are resolved by the conflict
policy: remote (default), local, or newest.

With --watch, sync repeats every calendar.sync_interval until interrupted.`,
		Example: `  focusflow cal sync
  focusflow cal sync --dry-run
  focusflow cal sync --policy local
  focusflow cal sync --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("policy") {
				policy = appConfig.Calendar.ConflictPolicy
			}
			p, err := calsync.ParsePolicy(policy)
			if err != nil {
				return fmt.Errorf("%w: %v", storage.ErrValidation, err)
			}
			remote, err := newRemote(cmd.Context())
			if err != nil {
				return withCode(exitExternal, err)
			}
			engine := syncEngine(remote)

			if watch {
				interval, err := appConfig.Calendar.Interval()
				if err != nil {
					return err
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				r := &calsync.Runner{
					Engine:   engine,
					Interval: interval,
					Window:   appConfig.Calendar.Window,
					Policy:   p,
					Logger:   logger,
					OnResult: func(res calsync.Result, err error) {
						if err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "sync failed: %v\n", err)
							return
						}
						_ = emit(cmd, res, func(w io.Writer) { ui.FormatSyncResult(w, res) })
					},
				}
				if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			from, to := appConfig.Calendar.Window(time.Now())
			res, err := engine.Sync(cmd.Context(), calsync.Options{From: from, To: to, Policy: p, DryRun: dryRun})
			if err != nil {
				return withCode(exitExternal, err)
			}
			if err := emit(cmd, res, func(w io.Writer) { ui.FormatSyncResult(w, res) }); err != nil {
				return err
			}
			if len(res.Errors) > 0 {
				return withCode(exitExternal, fmt.Errorf("%d events failed to sync", len(res.Errors)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep syncing every calendar.sync_interval")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().StringVar(&policy, "policy", "", "conflict policy: remote, local or newest (default from config)")
	cmd.MarkFlagsMutuallyExclusive("watch", "dry-run")
	return cmd
}

type syncStatus struct {
	Authorized     bool            `json:"authorized"`
	LastSync       *calsync.Result `json:"last_sync,omitempty"`
	PendingDeletes int             `json:"pending_deletes"`
}

func newCalStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show Google Calendar connection and last sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := syncStatus{Authorized: authorized()}
			last, ok, err := calsync.LastResult(store)
			if err != nil {
				return err
			}
			if ok {
				st.LastSync = &last
			}
			pending, err := calsync.PendingDeletes(store)
			if err != nil {
				return err
			}
			st.PendingDeletes = len(pending)
			return emit(cmd, st, func(w io.Writer) {
				ui.FormatSyncStatus(w, st.Authorized, st.LastSync, st.PendingDeletes, time.Now())
			})
		},
	}
}
