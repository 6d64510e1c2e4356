package shell

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/chris-regnier/focusflow/internal/pomodoro"
)

const cacheFileName = ".prompt-cache"

// PromptCache is the status snapshot the shell prompt reads between refreshes.
type PromptCache struct {
	Phase          pomodoro.Phase `json:"phase,omitempty"`
	State          pomodoro.State `json:"state"`
	PhaseEndsAt    *time.Time     `json:"phase_ends_at,omitempty"` // set while a phase is running
	Remaining      time.Duration  `json:"remaining,omitempty"`     // set while a phase is paused
	TodayMinutes   int            `json:"today_minutes"`
	GoalMinutes    int            `json:"goal_minutes"`
	Streak         int            `json:"streak"`
	OpenTasks      int            `json:"open_tasks"`
	DueToday       int            `json:"due_today"`
	TodayDate      string         `json:"today_date"`
	StorageBackend string         `json:"storage_backend"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// CachePath is where the prompt cache lives inside the data directory.
func CachePath(dataDir string) string {
	return filepath.Join(dataDir, cacheFileName)
}

// ReadCache loads the prompt cache. A missing or corrupt file yields nil.
func ReadCache(dataDir string) *PromptCache {
	f, err := os.Open(CachePath(dataDir))
	if err != nil {
		return nil
	}
	defer f.Close()
	c := new(PromptCache)
	if err := json.NewDecoder(f).Decode(c); err != nil {
		return nil
	}
	return c
}

// WriteCache replaces the prompt cache atomically so a prompt rendering in
// another shell never sees a partial file.
func WriteCache(dataDir string, c *PromptCache) error {
	tmp, err := os.CreateTemp(dataDir, cacheFileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := json.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), CachePath(dataDir))
}

// IsFresh reports whether the cache is still valid at now. A cache is stale
// once the TTL has elapsed, the date has changed, or a running phase it
// describes has ended.
func (c *PromptCache) IsFresh(ttl time.Duration, now time.Time) bool {
	if c == nil {
		return false
	}
	if c.TodayDate != now.Format("2006-01-02") {
		return false
	}
	if now.Sub(c.UpdatedAt) > ttl {
		return false
	}
	if c.PhaseEndsAt != nil && !now.Before(*c.PhaseEndsAt) {
		return false
	}
	return true
}

// RemainingAt returns the time left in the current phase at now.
func (c *PromptCache) RemainingAt(now time.Time) time.Duration {
	switch {
	case c.PhaseEndsAt != nil:
		if d := c.PhaseEndsAt.Sub(now); d > 0 {
			return d
		}
		return 0
	case c.State == pomodoro.StatePaused:
		return c.Remaining
	}
	return 0
}

// InvalidateCache drops the prompt cache; the next status call recomputes it.
func InvalidateCache(dataDir string) error {
	if err := os.Remove(CachePath(dataDir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
