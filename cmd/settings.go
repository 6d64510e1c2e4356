package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/calsync"
	"github.com/chris-regnier/focusflow/internal/focus"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/ui"
	"github.com/spf13/cobra"
)

// internalKeys are written by focusflow itself and hidden from settings list.
var internalKeys = map[string]bool{
	focus.SnapshotKey:         true,
	calsync.PendingDeletesKey: true,
	calsync.LastSyncKey:       true,
	calsync.LastResultKey:     true,
}

// validateSettingValue checks values of settings focusflow reads.
func validateSettingValue(key, value string) error {
	var err error
	switch key {
	case focus.FocusKey, focus.ShortBreakKey, focus.LongBreakKey:
		var d time.Duration
		if d, err = time.ParseDuration(value); err == nil && d <= 0 {
			err = errors.New("must be positive")
		}
	case focus.IntervalKey, focus.DailyGoalKey:
		var n int
		if n, err = strconv.Atoi(value); err == nil && n <= 0 {
			err = errors.New("must be a positive integer")
		}
	case focus.AutoStartBreakKey, focus.AutoStartFocusKey:
		_, err = strconv.ParseBool(value)
	default:
		if internalKeys[key] {
			err = errors.New("managed by focusflow")
		}
	}
	if err != nil {
		return fmt.Errorf("%w: setting %s: %v", storage.ErrValidation, key, err)
	}
	return nil
}

// effectiveSettings returns the timer settings in use: config values with
// stored overrides applied.
func effectiveSettings() (map[string]string, error) {
	s, err := pomodoroSettings()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		focus.FocusKey:          s.Focus.String(),
		focus.ShortBreakKey:     s.ShortBreak.String(),
		focus.LongBreakKey:      s.LongBreak.String(),
		focus.IntervalKey:       strconv.Itoa(s.LongBreakInterval),
		focus.AutoStartBreakKey: strconv.FormatBool(s.AutoStartBreaks),
		focus.AutoStartFocusKey: strconv.FormatBool(s.AutoStartFocus),
		focus.DailyGoalKey:      strconv.Itoa(dailyGoal()),
	}, nil
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Per-user settings stored with your data",
		Long: `Settings are stored in the storage backend and override the config file.

Known keys:
  pomodoro.focus, pomodoro.short_break, pomodoro.long_break   durations (25m)
  pomodoro.long_break_interval                                focus sessions per long break
  pomodoro.auto_start_breaks, pomodoro.auto_start_focus       true or false
  focus.daily_goal_minutes                                    daily focus goal`,
	}
	cmd.AddCommand(
		newSettingsListCmd(),
		newSettingsGetCmd(),
		newSettingsSetCmd(),
		newSettingsUnsetCmd(),
	)
	return cmd
}

func newSettingsListCmd() *cobra.Command {
	var (
		effective bool
		all       bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored settings",
		Example: `  focusflow settings list
  focusflow settings list --effective`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := store.ListSettings()
			if err != nil {
				return err
			}
			out := make(map[string]string, len(stored))
			if effective {
				if out, err = effectiveSettings(); err != nil {
					return err
				}
			}
			for k, v := range stored {
				if internalKeys[k] && !all {
					continue
				}
				out[k] = v
			}
			return emit(cmd, out, func(w io.Writer) {
				ui.FormatSettings(w, out)
			})
		},
	}
	cmd.Flags().BoolVar(&effective, "effective", false, "include timer settings from the config file")
	cmd.Flags().BoolVar(&all, "all", false, "include settings managed by focusflow")
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting",
		Long:  "Print a stored setting, or the effective value of a known timer setting.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if err := storage.ValidateSettingKey(key); err != nil {
				return err
			}
			v, err := store.GetSetting(key)
			if errors.Is(err, storage.ErrNotFound) {
				eff, effErr := effectiveSettings()
				if effErr != nil {
					return effErr
				}
				var ok bool
				if v, ok = eff[key]; !ok {
					return notFound("setting", key, err)
				}
			} else if err != nil {
				return err
			}
			return emit(cmd, map[string]string{key: v}, func(w io.Writer) {
				fmt.Fprintln(w, v)
			})
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Example: `  focusflow settings set pomodoro.focus 50m
  focusflow settings set focus.daily_goal_minutes 180`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			if err := storage.ValidateSettingKey(key); err != nil {
				return err
			}
			if err := validateSettingValue(key, value); err != nil {
				return err
			}
			if err := store.SetSetting(key, value); err != nil {
				return err
			}
			return emit(cmd, map[string]string{key: value}, func(w io.Writer) {
				fmt.Fprintf(w, "%s = %s\n", key, value)
			})
		},
		PostRunE: invalidateCachePostRun,
	}
	// Values such as -5m must reach the validator instead of the flag parser.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newSettingsUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unset <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored setting, restoring the config value",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if err := storage.ValidateSettingKey(key); err != nil {
				return err
			}
			if err := store.DeleteSetting(key); err != nil {
				return notFound("setting", key, err)
			}
			return emit(cmd, ui.DeleteResult{ID: key, Deleted: true}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed %s.\n", key)
			})
		},
		PostRunE: invalidateCachePostRun,
	}
}
