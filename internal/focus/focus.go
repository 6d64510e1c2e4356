// Package focus connects the pomodoro timer to storage: it logs finished
// phases, credits linked tasks, persists interrupted timers and applies
// per-user timer settings.
package focus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chris-regnier/focusflow/internal/notify"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/storage"
	"go.uber.org/zap"
)

// Settings keys owned by this package.
const (
	SnapshotKey       = "focus.snapshot"
	DailyGoalKey      = "focus.daily_goal_minutes"
	FocusKey          = "pomodoro.focus"
	ShortBreakKey     = "pomodoro.short_break"
	LongBreakKey      = "pomodoro.long_break"
	IntervalKey       = "pomodoro.long_break_interval"
	AutoStartBreakKey = "pomodoro.auto_start_breaks"
	AutoStartFocusKey = "pomodoro.auto_start_focus"
)

// Recorder persists the sessions a timer emits.
type Recorder struct {
	Store    storage.Storage
	Notifier notify.Notifier
	Logger   *zap.Logger
}

func (r *Recorder) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Record logs s, bumps the linked task's completed pomodoro count for a
// completed focus phase and notifies the user that next has begun. A session
// that was already logged is not credited twice. Notification failures are
// logged, not returned.
func (r *Recorder) Record(s pomodoro.Session, next pomodoro.Phase) error {
	log := r.log().With(zap.String("session", s.Key))
	if err := r.Store.LogSession(s); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			log.Debug("session already logged")
			return nil
		}
		return fmt.Errorf("logging session: %w", err)
	}
	log.Info("session logged",
		zap.String("phase", string(s.Phase)),
		zap.Bool("completed", s.Completed),
		zap.Duration("elapsed", s.Elapsed))

	if s.Completed && s.IsFocus() && s.TaskID != "" {
		if err := r.creditTask(s.TaskID); err != nil {
			log.Warn("crediting task", zap.String("task", s.TaskID), zap.Error(err))
		}
	}

	if r.Notifier != nil {
		title, msg := notify.PhaseMessage(s, next)
		if err := r.Notifier.Notify(title, msg); err != nil {
			log.Warn("desktop notification failed", zap.Error(err))
		}
	}
	return nil
}

func (r *Recorder) creditTask(id string) error {
	t, err := r.Store.GetTask(id)
	if err != nil {
		return err
	}
	t.CompletedPomodoros++
	_, err = r.Store.UpdateTask(t)
	return err
}

// CatchUp completes every phase that ended between the last tick and now,
// as happens when a running timer is restored after the process exited.
func CatchUp(t *pomodoro.Timer, now time.Time) []pomodoro.Session {
	var out []pomodoro.Session
	for s := t.Tick(now); s != nil; s = t.Tick(now) {
		out = append(out, *s)
	}
	return out
}

// SaveSnapshot stores the timer state so `timer resume` can pick it up.
func SaveSnapshot(st storage.Storage, snap pomodoro.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding timer snapshot: %w", err)
	}
	return st.SetSetting(SnapshotKey, string(data))
}

// LoadSnapshot returns the saved timer state. ok is false when none exists.
func LoadSnapshot(st storage.Storage) (snap pomodoro.Snapshot, ok bool, err error) {
	raw, err := st.GetSetting(SnapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return pomodoro.Snapshot{}, false, nil
	}
	if err != nil {
		return pomodoro.Snapshot{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return pomodoro.Snapshot{}, false, fmt.Errorf("decoding timer snapshot: %w", err)
	}
	return snap, true, nil
}

// ClearSnapshot removes the saved timer state, if any.
func ClearSnapshot(st storage.Storage) error {
	err := st.DeleteSetting(SnapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// Settings applies stored per-user overrides on top of base.
func Settings(base pomodoro.Settings, st storage.Storage) (pomodoro.Settings, error) {
	all, err := st.ListSettings()
	if err != nil {
		return pomodoro.Settings{}, err
	}
	s := base
	durations := map[string]*time.Duration{
		FocusKey:      &s.Focus,
		ShortBreakKey: &s.ShortBreak,
		LongBreakKey:  &s.LongBreak,
	}
	for key, dst := range durations {
		if v, ok := all[key]; ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return pomodoro.Settings{}, fmt.Errorf("setting %s: %w", key, err)
			}
			*dst = d
		}
	}
	if v, ok := all[IntervalKey]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return pomodoro.Settings{}, fmt.Errorf("setting %s: %w", IntervalKey, err)
		}
		s.LongBreakInterval = n
	}
	flags := map[string]*bool{
		AutoStartBreakKey: &s.AutoStartBreaks,
		AutoStartFocusKey: &s.AutoStartFocus,
	}
	for key, dst := range flags {
		if v, ok := all[key]; ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return pomodoro.Settings{}, fmt.Errorf("setting %s: %w", key, err)
			}
			*dst = b
		}
	}
	if err := s.Validate(); err != nil {
		return pomodoro.Settings{}, err
	}
	return s, nil
}

// DailyGoal returns the daily focus goal in minutes, falling back to def.
func DailyGoal(st storage.Storage, def int) int {
	v, err := st.GetSetting(DailyGoalKey)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
