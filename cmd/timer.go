package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/chris-regnier/focusflow/internal/focus"
	"github.com/chris-regnier/focusflow/internal/notify"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timer",
		Aliases: []string{"pomodoro", "focus"},
		Short:   "Pomodoro focus timer",
	}
	cmd.AddCommand(
		newTimerStartCmd(),
		newTimerResumeCmd(),
		newTimerLogCmd(),
		newTimerHistoryCmd(),
	)
	return cmd
}

func recorder() *focus.Recorder {
	var n notify.Notifier = notify.Nop{}
	if appConfig.Pomodoro.Notify {
		n = notify.Desktop{}
	}
	return &focus.Recorder{Store: store, Notifier: n, Logger: logger}
}

// runTimer drives t until the user quits (interactive) or the timer goes
// idle or is interrupted (headless), then saves or clears the snapshot.
func runTimer(cmd *cobra.Command, t *pomodoro.Timer, headless bool) error {
	rec := recorder()
	taskTitle := ""
	if id := t.TaskID(); id != "" {
		if tk, err := store.GetTask(id); err == nil {
			taskTitle = tk.Title
		}
	}
	save := func() error {
		if t.State() == pomodoro.StateIdle && t.CompletedFocus() == 0 {
			return focus.ClearSnapshot(store)
		}
		return focus.SaveSnapshot(store, t.Snapshot())
	}

	if headless || !ui.IsTerminal(os.Stdout) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s started (%s left). Ctrl-C to stop.\n", t.Phase().Label(), t.Remaining(time.Now()).Round(time.Second))
		r := &pomodoro.Runner{
			Timer:  t,
			Logger: logger,
			OnComplete: func(s pomodoro.Session) {
				if err := rec.Record(s, t.Phase()); err != nil {
					logger.Error("recording session", zap.Error(err))
				}
				title, msg := notify.PhaseMessage(s, t.Phase())
				fmt.Fprintf(out, "%s. %s\n", title, msg)
			},
		}
		err := r.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if serr := save(); serr != nil && err == nil {
			err = serr
		}
		return err
	}

	err := ui.RunTimer(ui.TimerOptions{
		Timer:     t,
		Theme:     theme(),
		TaskTitle: taskTitle,
		OnSession: func(s pomodoro.Session, next pomodoro.Phase) error {
			if err := rec.Record(s, next); err != nil {
				return err
			}
			return focus.SaveSnapshot(store, t.Snapshot())
		},
	})
	if serr := save(); serr != nil && err == nil {
		err = serr
	}
	return err
}

func newTimerStartCmd() *cobra.Command {
	var (
		taskID   string
		phase    string
		headless bool
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a focus timer",
		Long: `Start the pomodoro timer in a full-screen view.

Keys: space pause/resume, s skip, r reset, q quit. Quitting keeps the timer
state so "focusflow timer resume" can pick it up, even after the phase ended.
Completed focus phases linked to a task add to its pomodoro count.`,
		Example: `  focusflow timer start
  focusflow timer start --task a3kf9x2m
  focusflow timer start --phase short
  focusflow timer start --headless`,
		Args:     cobra.NoArgs,
		PostRunE: invalidateCachePostRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := pomodoroSettings()
			if err != nil {
				return err
			}
			t := pomodoro.NewTimer(settings)
			if taskID != "" {
				if _, err := getTask(taskID); err != nil {
					return err
				}
				t.SetTaskID(taskID)
			}
			if phase != "" {
				p, err := pomodoro.ParsePhase(phase)
				if err != nil {
					return err
				}
				if err := t.SetPhase(p); err != nil {
					return err
				}
			}
			if _, ok, _ := focus.LoadSnapshot(store); ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "Discarding the saved timer.")
			}
			if err := t.Start(time.Now()); err != nil {
				return err
			}
			if err := focus.SaveSnapshot(store, t.Snapshot()); err != nil {
				return err
			}
			return runTimer(cmd, t, headless)
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "task to credit completed focus phases to")
	cmd.Flags().StringVar(&phase, "phase", "", "phase to start with: focus, short or long")
	cmd.Flags().BoolVar(&headless, "headless", false, "print progress instead of the full-screen view")
	return cmd
}

func newTimerResumeCmd() *cobra.Command {
	var headless bool
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume the saved timer",
		Long: `Resume the timer saved when the timer view was closed. Phases that
ended while it was closed are logged first.`,
		Args:     cobra.NoArgs,
		PostRunE: invalidateCachePostRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, ok, err := focus.LoadSnapshot(store)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no saved timer: %w", storage.ErrNotFound)
			}
			settings, err := pomodoroSettings()
			if err != nil {
				return err
			}
			t := pomodoro.NewTimer(settings)
			if err := t.Restore(snap); err != nil {
				return err
			}
			rec := recorder()
			for _, s := range focus.CatchUp(t, time.Now()) {
				if err := rec.Record(s, t.Phase()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Logged %s of %s while away.\n", s.Elapsed.Round(time.Minute), s.Phase.Label())
			}
			return runTimer(cmd, t, headless)
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "print progress instead of the full-screen view")
	return cmd
}

func newTimerLogCmd() *cobra.Command {
	var (
		phase       string
		taskID      string
		at          string
		duration    time.Duration
		interrupted bool
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a session that happened away from the timer",
		Example: `  focusflow timer log --duration 25m
  focusflow timer log --at "today 09:00" --duration 50m --task a3kf9x2m
  focusflow timer log --phase short --duration 5m`,
		Args:     cobra.NoArgs,
		PostRunE: invalidateCachePostRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pomodoro.ParsePhase(phase)
			if err != nil {
				return err
			}
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}
			end := time.Now()
			start := end.Add(-duration)
			if at != "" {
				if start, _, err = parseWhen("at", at); err != nil {
					return err
				}
				end = start.Add(duration)
			}
			if taskID != "" {
				if _, err := getTask(taskID); err != nil {
					return err
				}
			}
			settings, err := pomodoroSettings()
			if err != nil {
				return err
			}
			s := pomodoro.NewSession(p, taskID, start, end, settings.Duration(p), duration, !interrupted)
			if err := storage.ValidateSession(s); err != nil {
				return err
			}
			rec := &focus.Recorder{Store: store, Logger: logger}
			if err := rec.Record(s, p); err != nil {
				return err
			}
			return emit(cmd, s, func(w io.Writer) {
				ui.FormatCreated(w, "session", s.ID, fmt.Sprintf("%s, %d min", s.Phase.Label(), s.Minutes()))
			})
		},
	}
	cmd.Flags().StringVar(&phase, "phase", "focus", "focus, short or long")
	cmd.Flags().StringVar(&taskID, "task", "", "task to credit")
	cmd.Flags().StringVar(&at, "at", "", "start time (default: duration ago)")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 25*time.Minute, "how long the session lasted")
	cmd.Flags().BoolVar(&interrupted, "interrupted", false, "record the session as interrupted")
	return cmd
}

func newTimerHistoryCmd() *cobra.Command {
	var (
		days   int
		taskID string
		phase  string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sessions",
		Example: `  focusflow timer history
  focusflow timer history --days 30 --phase focus
  focusflow timer history --task a3kf9x2m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := storage.SessionListOptions{TaskID: taskID, CompletedOnly: !all}
			if days > 0 {
				now := time.Now()
				start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
				opts.StartDate = &start
			}
			if phase != "" {
				p, err := pomodoro.ParsePhase(phase)
				if err != nil {
					return err
				}
				opts.Phase = p
			}
			sessions, err := store.ListSessions(opts)
			if err != nil {
				return err
			}
			if sessions == nil {
				sessions = []pomodoro.Session{}
			}
			return emitPaged(cmd, sessions, func(w io.Writer) {
				ui.FormatSessionList(w, sessions, theme())
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "days to include, ending today (0 = all)")
	cmd.Flags().StringVar(&taskID, "task", "", "only sessions for this task")
	cmd.Flags().StringVar(&phase, "phase", "", "only this phase")
	cmd.Flags().BoolVar(&all, "all", false, "include interrupted sessions")
	return cmd
}
