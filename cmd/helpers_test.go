package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chris-regnier/focusflow/internal/calsync"
	"github.com/chris-regnier/focusflow/internal/config"
	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/storage/markdown"
	"go.uber.org/zap"
)

func setupTestStore(t *testing.T, dir string) storage.Storage {
	t.Helper()
	s, err := markdown.New(dir)
	if err != nil {
		t.Fatalf("creating test storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Storage: "markdown",
		DataDir: dir,
		Theme:   config.ThemeConfig{Preset: "tomato"},
		Pomodoro: config.PomodoroConfig{
			Focus:             "25m",
			ShortBreak:        "5m",
			LongBreak:         "15m",
			LongBreakInterval: 4,
			DailyGoalMinutes:  120,
		},
		Calendar: config.CalendarConfig{
			CalendarID:     "primary",
			SyncInterval:   "15m",
			PastDays:       7,
			FutureDays:     30,
			ConflictPolicy: "remote",
		},
		Shell: config.ShellConfig{
			CacheTTL:   "1m",
			FocusIcon:  "F",
			BreakIcon:  "B",
			IdleIcon:   "-",
			StreakIcon: "d",
			ShowTasks:  true,
		},
	}
}

// setupTestEnv points the command globals at a fresh markdown store and
// replaces setup so commands use it.
func setupTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	store = setupTestStore(t, dir)
	appConfig = testConfig(dir)
	logger = zap.NewNop()

	origSetup, origStdin, origRemote := setup, stdin, newRemote
	setup = func() error { return nil }
	t.Cleanup(func() {
		setup, stdin, newRemote = origSetup, origStdin, origRemote
	})
}

// runCmd executes the CLI with args and returns what it wrote to stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCmdContext(t, context.Background(), args...)
}

// mustRun is runCmd failing the test on error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("focusflow %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// runJSON runs a command with --json and decodes its output into v.
func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out := mustRun(t, append(args, "--json")...)
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decoding output of %q: %v\n%s", strings.Join(args, " "), err, out)
	}
}

// fakeRemote is an in-memory calsync.Remote.
type fakeRemote struct {
	mu     sync.Mutex
	events map[string]calsync.RemoteEvent
	seq    int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{events: make(map[string]calsync.RemoteEvent)}
}

// install makes commands sync against f.
func (f *fakeRemote) install() {
	newRemote = func(context.Context) (calsync.Remote, error) { return f, nil }
}

func (f *fakeRemote) add(title string, start time.Time, d time.Duration) calsync.RemoteEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	re := calsync.RemoteEvent{
		ID:      fmt.Sprintf("g%d", f.seq),
		ETag:    fmt.Sprintf(`"%d"`, f.seq),
		Title:   title,
		Start:   start.UTC(),
		End:     start.Add(d).UTC(),
		Updated: time.Now().UTC().Truncate(time.Second),
	}
	f.events[re.ID] = re
	return re
}

func (f *fakeRemote) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.events[id]
	return ok
}

func (f *fakeRemote) ListEvents(_ context.Context, from, to time.Time) ([]calsync.RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []calsync.RemoteEvent
	for _, re := range f.events {
		if re.Start.Before(to) && !re.End.Before(from) {
			out = append(out, re)
		}
	}
	return out, nil
}

func (f *fakeRemote) GetEvent(_ context.Context, id string) (calsync.RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	re, ok := f.events[id]
	if !ok {
		return calsync.RemoteEvent{}, calsync.ErrRemoteNotFound
	}
	return re, nil
}

func (f *fakeRemote) InsertEvent(_ context.Context, e event.Event) (calsync.RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	re := calsync.RemoteEvent{
		ID:       fmt.Sprintf("g%d", f.seq),
		ETag:     fmt.Sprintf(`"%d"`, f.seq),
		Title:    e.Title,
		Location: e.Location,
		Start:    e.Start,
		End:      e.End,
		AllDay:   e.AllDay,
		Updated:  time.Now().UTC().Truncate(time.Second),
	}
	f.events[re.ID] = re
	return re, nil
}

func (f *fakeRemote) UpdateEvent(_ context.Context, id string, e event.Event) (calsync.RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	re, ok := f.events[id]
	if !ok {
		return calsync.RemoteEvent{}, calsync.ErrRemoteNotFound
	}
	f.seq++
	re.Title, re.Location, re.Start, re.End = e.Title, e.Location, e.Start, e.End
	re.ETag = fmt.Sprintf(`"%d"`, f.seq)
	re.Updated = time.Now().UTC().Truncate(time.Second)
	f.events[id] = re
	return re, nil
}

func (f *fakeRemote) DeleteEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return calsync.ErrRemoteNotFound
	}
	delete(f.events, id)
	return nil
}

// runCmdContext is runCmd with a caller-supplied context.
func runCmdContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}
