package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/dateparse"
	"github.com/chris-regnier/focusflow/internal/focus"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/ui"
	"github.com/spf13/cobra"
)

// stdin is read by commands accepting "-" as content.
var stdin io.Reader = os.Stdin

func theme() ui.Theme {
	return ui.ResolveTheme(appConfig.Theme)
}

// emit writes v as JSON when --json is set, otherwise calls text.
func emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	if jsonOutput {
		return ui.FormatJSON(cmd.OutOrStdout(), v)
	}
	text(cmd.OutOrStdout())
	return nil
}

// emitPaged is emit with the text output shown in the pager on a terminal.
func emitPaged(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	if jsonOutput {
		return ui.FormatJSON(cmd.OutOrStdout(), v)
	}
	var buf bytes.Buffer
	text(&buf)
	return ui.Page(cmd.OutOrStdout(), buf.String(), theme(), 0)
}

// parseWhen parses a human date for flags like --due and --start.
func parseWhen(flag, value string) (time.Time, bool, error) {
	t, hasTime, err := dateparse.Parse(value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return t, hasTime, nil
}

// readContent joins args, or reads stdin when the only argument is "-".
func readContent(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// confirmDelete asks before deleting unless force is set. Without a
// terminal to ask on, deletion requires --force.
func confirmDelete(cmd *cobra.Command, kind, label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if !ui.IsTerminal(os.Stdin) || !ui.IsTerminal(cmd.OutOrStdout()) {
		return false, errors.New("refusing to delete without confirmation; pass --force")
	}
	ok, err := ui.Confirm(ui.DeletePrompt(kind, label), theme())
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
	}
	return ok, nil
}

// pomodoroSettings returns the configured cycle with stored overrides applied.
func pomodoroSettings() (pomodoro.Settings, error) {
	base, err := appConfig.Pomodoro.Settings()
	if err != nil {
		return pomodoro.Settings{}, err
	}
	return focus.Settings(base, store)
}

func dailyGoal() int {
	return focus.DailyGoal(store, appConfig.Pomodoro.DailyGoalMinutes)
}
