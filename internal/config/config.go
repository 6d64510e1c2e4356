package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/spf13/viper"
)

// ThemeConfig selects a color preset. Any non-empty color replaces the
// preset's value.
type ThemeConfig struct {
	Preset        string `mapstructure:"preset"`
	Text          string `mapstructure:"text"`
	Subtle        string `mapstructure:"subtle"`
	Focus         string `mapstructure:"focus"`
	Break         string `mapstructure:"break"`
	Warn          string `mapstructure:"warn"`
	Danger        string `mapstructure:"danger"`
	Background    string `mapstructure:"background"`
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// ShellConfig holds shell integration configuration.
type ShellConfig struct {
	CacheTTL    string `mapstructure:"cache_ttl"`
	FocusIcon   string `mapstructure:"focus_icon"`
	BreakIcon   string `mapstructure:"break_icon"`
	IdleIcon    string `mapstructure:"idle_icon"`
	StreakIcon  string `mapstructure:"streak_icon"`
	ShowTasks   bool   `mapstructure:"show_tasks"`
	ShowBackend bool   `mapstructure:"show_backend"`
}

// PomodoroConfig holds the default timer cycle. Durations are Go duration strings.
type PomodoroConfig struct {
	Focus             string `mapstructure:"focus"`
	ShortBreak        string `mapstructure:"short_break"`
	LongBreak         string `mapstructure:"long_break"`
	LongBreakInterval int    `mapstructure:"long_break_interval"`
	AutoStartBreaks   bool   `mapstructure:"auto_start_breaks"`
	AutoStartFocus    bool   `mapstructure:"auto_start_focus"`
	Notify            bool   `mapstructure:"notify"`
	DailyGoalMinutes  int    `mapstructure:"daily_goal_minutes"`
}

// CalendarConfig holds Google Calendar and sync settings.
type CalendarConfig struct {
	ClientID       string `mapstructure:"client_id"`
	ClientSecret   string `mapstructure:"client_secret"`
	CalendarID     string `mapstructure:"calendar_id"`
	RedirectPort   int    `mapstructure:"redirect_port"`
	AutoSync       bool   `mapstructure:"auto_sync"`
	SyncInterval   string `mapstructure:"sync_interval"`
	PastDays       int    `mapstructure:"past_days"`
	FutureDays     int    `mapstructure:"future_days"`
	ConflictPolicy string `mapstructure:"conflict_policy"`
}

// AppwriteConfig holds the Appwrite project used by the appwrite backend.
type AppwriteConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	ProjectID  string `mapstructure:"project_id"`
	APIKey     string `mapstructure:"api_key"`
	DatabaseID string `mapstructure:"database_id"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // empty = <data_dir>/focusflow.log
}

// Config holds the application configuration.
type Config struct {
	Storage      string         `mapstructure:"storage"`
	SQLiteDriver string         `mapstructure:"sqlite_driver"`
	DataDir      string         `mapstructure:"data_dir"`
	Editor       string         `mapstructure:"editor"`
	Theme        ThemeConfig    `mapstructure:"theme"`
	Pomodoro     PomodoroConfig `mapstructure:"pomodoro"`
	Calendar     CalendarConfig `mapstructure:"calendar"`
	Appwrite     AppwriteConfig `mapstructure:"appwrite"`
	Log          LogConfig      `mapstructure:"log"`
	Shell        ShellConfig    `mapstructure:"shell"`
}

// DefaultDataDir returns the default data directory (~/.focusflow/).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".focusflow")
	}
	return filepath.Join(home, ".focusflow")
}

// Load reads configuration from file, environment variables, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("storage", "sqlite")
	v.SetDefault("sqlite_driver", "libsql")
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("editor", "")

	v.SetDefault("theme.preset", "tomato")
	for _, key := range []string{"text", "subtle", "focus", "break", "warn", "danger", "background", "markdown_style"} {
		v.SetDefault("theme."+key, "")
	}

	v.SetDefault("pomodoro.focus", "25m")
	v.SetDefault("pomodoro.short_break", "5m")
	v.SetDefault("pomodoro.long_break", "15m")
	v.SetDefault("pomodoro.long_break_interval", 4)
	v.SetDefault("pomodoro.auto_start_breaks", false)
	v.SetDefault("pomodoro.auto_start_focus", false)
	v.SetDefault("pomodoro.notify", true)
	v.SetDefault("pomodoro.daily_goal_minutes", 120)

	v.SetDefault("calendar.client_id", "")
	v.SetDefault("calendar.client_secret", "")
	v.SetDefault("calendar.calendar_id", "primary")
	v.SetDefault("calendar.redirect_port", 8085)
	v.SetDefault("calendar.auto_sync", false)
	v.SetDefault("calendar.sync_interval", "15m")
	v.SetDefault("calendar.past_days", 7)
	v.SetDefault("calendar.future_days", 30)
	v.SetDefault("calendar.conflict_policy", "remote")

	v.SetDefault("appwrite.endpoint", "https://cloud.appwrite.io/v1")
	v.SetDefault("appwrite.project_id", "")
	v.SetDefault("appwrite.api_key", "")
	v.SetDefault("appwrite.database_id", "focusflow")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("shell.cache_ttl", "1m")
	v.SetDefault("shell.focus_icon", "🍅")
	v.SetDefault("shell.break_icon", "☕")
	v.SetDefault("shell.idle_icon", "·")
	v.SetDefault("shell.streak_icon", "🔥")
	v.SetDefault("shell.show_tasks", true)
	v.SetDefault("shell.show_backend", false)

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// XDG support
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "focusflow"))
		}
		v.AddConfigPath(filepath.Join(DefaultDataDir()))
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	// Environment variables: FOCUSFLOW_STORAGE, FOCUSFLOW_CALENDAR_CLIENT_ID, etc.
	v.SetEnvPrefix("FOCUSFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error if it's not a "file not found" error
			if configPath != "" {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogFile returns the path of the structured log file.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "focusflow.log")
}

// Settings converts the configured cycle into timer settings.
func (p PomodoroConfig) Settings() (pomodoro.Settings, error) {
	s := pomodoro.Settings{
		LongBreakInterval: p.LongBreakInterval,
		AutoStartBreaks:   p.AutoStartBreaks,
		AutoStartFocus:    p.AutoStartFocus,
	}
	var err error
	if s.Focus, err = parseDuration("pomodoro.focus", p.Focus); err != nil {
		return pomodoro.Settings{}, err
	}
	if s.ShortBreak, err = parseDuration("pomodoro.short_break", p.ShortBreak); err != nil {
		return pomodoro.Settings{}, err
	}
	if s.LongBreak, err = parseDuration("pomodoro.long_break", p.LongBreak); err != nil {
		return pomodoro.Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return pomodoro.Settings{}, err
	}
	return s, nil
}

// Interval returns the auto-sync interval.
func (c CalendarConfig) Interval() (time.Duration, error) {
	d, err := parseDuration("calendar.sync_interval", c.SyncInterval)
	if err != nil {
		return 0, err
	}
	if d < time.Minute {
		return 0, fmt.Errorf("calendar.sync_interval must be at least 1m, got %s", d)
	}
	return d, nil
}

// Window returns the sync window around now.
func (c CalendarConfig) Window(now time.Time) (from, to time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -c.PastDays), today.AddDate(0, 0, c.FutureDays+1)
}

// TTL returns the shell status cache lifetime.
func (s ShellConfig) TTL() (time.Duration, error) {
	return parseDuration("shell.cache_ttl", s.CacheTTL)
}

func parseDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
