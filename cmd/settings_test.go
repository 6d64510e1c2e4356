package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/focusflow/internal/focus"
	"github.com/chris-regnier/focusflow/internal/storage"
)

func TestSettingsSetGetUnset(t *testing.T) {
	setupTestEnv(t)

	mustRun(t, "settings", "set", "pomodoro.focus", "50m")
	if out := mustRun(t, "settings", "get", "pomodoro.focus"); strings.TrimSpace(out) != "50m" {
		t.Errorf("get = %q, want 50m", out)
	}
	s, err := pomodoroSettings()
	if err != nil {
		t.Fatal(err)
	}
	if s.Focus != 50*time.Minute {
		t.Errorf("effective focus = %s, want 50m", s.Focus)
	}

	mustRun(t, "settings", "unset", "pomodoro.focus")
	// Falls back to the config value.
	if out := mustRun(t, "settings", "get", "pomodoro.focus"); strings.TrimSpace(out) != "25m0s" {
		t.Errorf("get after unset = %q, want 25m0s", out)
	}
}

func TestSettingsValidation(t *testing.T) {
	setupTestEnv(t)

	tests := []struct {
		name       string
		key, value string
	}{
		{"bad key", "Not A Key", "x"},
		{"bad duration", focus.FocusKey, "soon"},
		{"negative duration", focus.ShortBreakKey, "-5m"},
		{"bad interval", focus.IntervalKey, "0"},
		{"bad bool", focus.AutoStartBreakKey, "sometimes"},
		{"internal key", focus.SnapshotKey, "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, "settings", "set", tt.key, tt.value)
			if !errors.Is(err, storage.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSettingsSetDashValues(t *testing.T) {
	setupTestEnv(t)

	// Flags before the key still parse; the dash value is an argument.
	_, err := runCmd(t, "settings", "set", "--json", focus.DailyGoalKey, "-30")
	if !errors.Is(err, storage.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := store.GetSetting(focus.DailyGoalKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("rejected value was stored: %v", err)
	}

	var set map[string]string
	if err := json.Unmarshal([]byte(mustRun(t, "settings", "set", "--json", focus.ShortBreakKey, "7m")), &set); err != nil {
		t.Fatal(err)
	}
	if set[focus.ShortBreakKey] != "7m" {
		t.Errorf("set output = %v", set)
	}
}

func TestSettingsListHidesInternalKeys(t *testing.T) {
	setupTestEnv(t)

	mustRun(t, "settings", "set", "focus.daily_goal_minutes", "90")
	if err := store.SetSetting(focus.SnapshotKey, `{"phase":"focus","state":"idle"}`); err != nil {
		t.Fatal(err)
	}

	var listed map[string]string
	runJSON(t, &listed, "settings", "list")
	if listed["focus.daily_goal_minutes"] != "90" {
		t.Errorf("listed = %v", listed)
	}
	if _, ok := listed[focus.SnapshotKey]; ok {
		t.Error("internal key listed without --all")
	}

	var all map[string]string
	runJSON(t, &all, "settings", "list", "--all", "--effective")
	if _, ok := all[focus.SnapshotKey]; !ok {
		t.Error("internal key missing with --all")
	}
	if all[focus.FocusKey] != "25m0s" {
		t.Errorf("effective focus = %q, want 25m0s", all[focus.FocusKey])
	}
}

func TestSettingsGetMissing(t *testing.T) {
	setupTestEnv(t)

	_, err := runCmd(t, "settings", "get", "no.such.key")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
