package cmd

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/pomodoro"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/task"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// seedNote is a note filed under a folder path.
type seedNote struct {
	folder  string
	title   string
	tags    []string
	content string
}

// seedEvent recurs weekly on a weekday at a local time.
type seedEvent struct {
	title    string
	weekday  time.Weekday
	hour     int
	minutes  int
	location string
}

// profile defines a user persona for generating seed data.
type profile struct {
	name        string
	description string
	// daysBack is how far back to start generating focus history.
	daysBack int
	// frequency is the probability of focusing on a working day (0.0–1.0).
	frequency float64
	// weekdaysOnly skips Saturdays and Sundays.
	weekdaysOnly bool
	// sessions is the most focus sessions in one day.
	sessions int
	// focus is the focus length this persona uses.
	focus time.Duration
	// projects maps a project name to its task titles.
	projects map[string][]string
	notes    []seedNote
	events   []seedEvent
}

var profiles = map[string]profile{
	"deep-worker": {
		name:         "deep-worker",
		description:  "Engineer doing long focus blocks on weekdays",
		daysBack:     60,
		frequency:    0.9,
		weekdaysOnly: true,
		sessions:     6,
		focus:        50 * time.Minute,
		projects: map[string][]string{
			"api": {
				"Add pagination to list endpoints",
				"Fix token refresh race",
				"Write migration for audit table",
				"Profile slow search query",
			},
			"infra": {
				"Rotate staging certificates",
				"Move CI cache to object storage",
				"Alert on queue depth",
			},
			"team": {
				"Review onboarding doc",
				"Prepare sprint demo",
			},
		},
		notes: []seedNote{
			{"Work/Design", "Pagination design", []string{"api"}, "## Options\n\n- offset/limit: simple, drifts under writes\n- cursor: stable, opaque\n\n## Decision\n\nCursor on `(created_at, id)`."},
			{"Work/Meetings", "Standup notes", []string{"meetings"}, "- Blocked on staging certs\n- Demo moved to Friday"},
			{"Work/Meetings", "Retro", []string{"meetings", "team"}, "## Went well\n\n- Fewer pages\n\n## To improve\n\n- Smaller PRs"},
			{"Personal", "Reading list", []string{"books"}, "- Designing Data-Intensive Applications\n- The Pragmatic Programmer"},
		},
		events: []seedEvent{
			{"Standup", time.Monday, 9, 30, ""},
			{"Standup", time.Wednesday, 9, 30, ""},
			{"Standup", time.Friday, 9, 30, ""},
			{"Sprint planning", time.Tuesday, 14, 0, "Room 4"},
		},
	},
	"student": {
		name:        "student",
		description: "Student with short study sprints every day",
		daysBack:    90,
		frequency:   0.75,
		sessions:    8,
		focus:       25 * time.Minute,
		projects: map[string][]string{
			"calculus": {"Problem set 6", "Review integration by parts", "Practice exam"},
			"history":  {"Essay outline", "Read chapter 9", "Essay first draft"},
			"cs101":    {"Lab 4: linked lists", "Project proposal"},
		},
		notes: []seedNote{
			{"Courses/Calculus", "Integration by parts", []string{"math"}, "∫u dv = uv − ∫v du\n\nPick *u* by LIATE."},
			{"Courses/History", "Essay thesis", []string{"essay"}, "Trade routes shaped the city more than its rulers did."},
			{"Courses/CS101", "Linked list gotchas", []string{"cs"}, "- Update `tail` on delete\n- Empty list edge case"},
			{"", "Exam schedule", nil, "| Course | Date |\n|---|---|\n| Calculus | Dec 12 |\n| History | Dec 15 |"},
		},
		events: []seedEvent{
			{"Calculus lecture", time.Monday, 10, 0, "Hall B"},
			{"Calculus lecture", time.Thursday, 10, 0, "Hall B"},
			{"History seminar", time.Tuesday, 13, 0, "Room 212"},
			{"Study group", time.Sunday, 16, 0, "Library"},
		},
	},
	"freelancer": {
		name:        "freelancer",
		description: "Freelancer juggling client projects, some weekend work",
		daysBack:    45,
		frequency:   0.7,
		sessions:    5,
		focus:       40 * time.Minute,
		projects: map[string][]string{
			"acme":   {"Homepage redesign", "Logo variations", "Invoice October"},
			"bakery": {"Menu layout", "Online order form", "Photo shoot shortlist"},
			"admin":  {"Quarterly taxes", "Update portfolio"},
		},
		notes: []seedNote{
			{"Clients/Acme", "Brand guidelines", []string{"acme"}, "Primary `#1f6feb`, type: Inter."},
			{"Clients/Bakery", "Call notes", []string{"bakery"}, "Wants ordering live before the holidays."},
			{"Admin", "Rates", []string{"admin"}, "- Design: hourly\n- Dev: per project"},
		},
		events: []seedEvent{
			{"Acme check-in", time.Tuesday, 11, 0, "Video call"},
			{"Bakery review", time.Thursday, 15, 30, "Bakery"},
		},
	},
}

func profileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// seedResult counts what a seed run created.
type seedResult struct {
	Profile  string `json:"profile"`
	Tasks    int    `json:"tasks_created"`
	Sessions int    `json:"sessions_created"`
	Folders  int    `json:"folders_created"`
	Notes    int    `json:"notes_created"`
	Events   int    `json:"events_created"`
}

func newSeedCmd() *cobra.Command {
	var (
		list bool
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "seed [profile]",
		Short: "Fill focusflow with realistic sample data",
		Long: `Populate focusflow with tasks, focus history, notes and events to simulate
an active user.

Available profiles:
  deep-worker  – Long focus blocks on weekdays (~60 days)
  student      – Short study sprints every day (~90 days)
  freelancer   – Client projects with some weekend work (~45 days)

If no profile is specified, "deep-worker" is used.`,
		Example: `  focusflow seed
  focusflow seed student
  focusflow seed freelancer --seed 42
  focusflow seed --list`,
		Args:     cobra.MaximumNArgs(1),
		PostRunE: invalidateCachePostRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				fmt.Fprintln(out, "Available profiles:")
				for _, name := range profileNames() {
					fmt.Fprintf(out, "  %-14s %s\n", name, profiles[name].description)
				}
				return nil
			}

			name := "deep-worker"
			if len(args) > 0 {
				name = args[0]
			}
			p, ok := profiles[name]
			if !ok {
				return fmt.Errorf("%w: unknown profile %q (run 'focusflow seed --list')", storage.ErrValidation, name)
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}

			res, err := seedProfile(p, rand.New(rand.NewSource(seed)), time.Now())
			if err != nil {
				return err
			}
			logger.Info("seeded sample data", zap.String("profile", name), zap.Int64("seed", seed),
				zap.Int("tasks", res.Tasks), zap.Int("sessions", res.Sessions))
			return emit(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "Seeded with profile %q:\n", res.Profile)
				fmt.Fprintf(w, "  Tasks created:    %d\n", res.Tasks)
				fmt.Fprintf(w, "  Sessions created: %d\n", res.Sessions)
				fmt.Fprintf(w, "  Folders created:  %d\n", res.Folders)
				fmt.Fprintf(w, "  Notes created:    %d\n", res.Notes)
				fmt.Fprintf(w, "  Events created:   %d\n", res.Events)
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list available profiles")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible data")
	return cmd
}

func seedProfile(p profile, rng *rand.Rand, now time.Time) (seedResult, error) {
	res := seedResult{Profile: p.name}
	start := now.AddDate(0, 0, -p.daysBack)

	tasks, err := seedTasks(p, rng, start, now)
	if err != nil {
		return res, err
	}
	res.Tasks = len(tasks)

	if res.Sessions, err = seedSessions(p, rng, tasks, start, now); err != nil {
		return res, err
	}
	// Sessions credited pomodoros; finish some tasks and persist the counts.
	for i := range tasks {
		t := &tasks[i]
		switch r := rng.Float64(); {
		case r < 0.4 && t.CompletedPomodoros > 0:
			done := now.AddDate(0, 0, -rng.Intn(p.daysBack/2+1))
			if done.Before(t.CreatedAt) {
				done = t.CreatedAt
			}
			t.Complete(done)
		case r < 0.7 && t.CompletedPomodoros > 0:
			t.Start()
		}
		if _, err := store.UpdateTask(*t); err != nil {
			return res, err
		}
	}

	if res.Folders, res.Notes, err = seedNotes(p, rng, start); err != nil {
		return res, err
	}
	if res.Events, err = seedEvents(p, now); err != nil {
		return res, err
	}
	return res, nil
}

func seedTasks(p profile, rng *rand.Rand, start, now time.Time) ([]task.Task, error) {
	var tasks []task.Task
	projects := make([]string, 0, len(p.projects))
	for name := range p.projects {
		projects = append(projects, name)
	}
	sort.Strings(projects)

	for _, project := range projects {
		for _, title := range p.projects[project] {
			created := start.Add(time.Duration(rng.Int63n(int64(now.Sub(start)/2) + 1)))
			t, err := task.New(title, created)
			if err != nil {
				return nil, err
			}
			t.Project = project
			t.Tags = []string{project}
			t.Priority = task.Priorities[rng.Intn(len(task.Priorities))]
			t.EstimatedPomodoros = 1 + rng.Intn(6)
			if rng.Float64() < 0.6 {
				due := dayStart(now).AddDate(0, 0, rng.Intn(21)-5).UTC()
				t.Due = &due
			}
			if err := store.CreateTask(t); err != nil {
				return nil, fmt.Errorf("creating task %q: %w", title, err)
			}
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func shouldFocus(p profile, day time.Time, rng *rand.Rand) bool {
	weekend := day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
	if weekend && p.weekdaysOnly {
		return false
	}
	chance := p.frequency
	if weekend {
		chance /= 2
	}
	return rng.Float64() < chance
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// seedSessions writes focus and break sessions for each active day, crediting
// completed focus to a random task.
func seedSessions(p profile, rng *rand.Rand, tasks []task.Task, start, now time.Time) (int, error) {
	settings := pomodoro.DefaultSettings()
	created := 0
	for day := dayStart(start); day.Before(now); day = day.AddDate(0, 0, 1) {
		if !shouldFocus(p, day, rng) {
			continue
		}
		at := day.Add(time.Duration(8+rng.Intn(3))*time.Hour + time.Duration(rng.Intn(60))*time.Minute)
		n := 1 + rng.Intn(p.sessions)
		for i := 0; i < n; i++ {
			elapsed, completed := p.focus, true
			if rng.Float64() < 0.12 {
				elapsed, completed = time.Duration(5+rng.Intn(int(p.focus/time.Minute)-5))*time.Minute, false
			}
			end := at.Add(elapsed)
			if end.After(now) {
				break
			}
			taskID := ""
			if len(tasks) > 0 && rng.Float64() < 0.8 {
				t := &tasks[rng.Intn(len(tasks))]
				taskID = t.ID
				if completed {
					t.CompletedPomodoros++
				}
			}
			s := pomodoro.NewSession(pomodoro.PhaseFocus, taskID, at, end, p.focus, elapsed, completed)
			if err := store.LogSession(s); err != nil && !errors.Is(err, storage.ErrDuplicate) {
				return created, err
			}
			created++

			brk, length := pomodoro.PhaseShortBreak, settings.ShortBreak
			if (i+1)%settings.LongBreakInterval == 0 {
				brk, length = pomodoro.PhaseLongBreak, settings.LongBreak
			}
			at = end
			end = at.Add(length)
			if end.After(now) {
				break
			}
			b := pomodoro.NewSession(brk, "", at, end, length, length, true)
			if err := store.LogSession(b); err != nil && !errors.Is(err, storage.ErrDuplicate) {
				return created, err
			}
			created++
			at = end.Add(time.Duration(rng.Intn(45)) * time.Minute)
		}
	}
	return created, nil
}

// seedNotes creates the folder paths the profile's notes live in, then the notes.
func seedNotes(p profile, rng *rand.Rand, start time.Time) (folders, notes int, err error) {
	existing, err := store.ListFolders()
	if err != nil {
		return 0, 0, err
	}
	for _, sn := range p.notes {
		folderID := ""
		for _, name := range splitPath(sn.folder) {
			id := ""
			for _, f := range note.Children(existing, folderID) {
				if f.Name == name {
					id = f.ID
					break
				}
			}
			if id == "" {
				f, err := note.NewFolder(name, folderID, start)
				if err != nil {
					return folders, notes, err
				}
				if err := store.CreateFolder(f); err != nil {
					return folders, notes, err
				}
				existing = append(existing, f)
				folders++
				id = f.ID
			}
			folderID = id
		}

		created := start.Add(time.Duration(rng.Intn(p.daysBack*24)) * time.Hour)
		n, err := note.New(sn.title, sn.content, folderID, created)
		if err != nil {
			return folders, notes, err
		}
		n.Tags = task.NormalizeTags(sn.tags)
		n.Pinned = rng.Float64() < 0.25
		if err := store.CreateNote(n); err != nil {
			return folders, notes, err
		}
		notes++
	}
	return folders, notes, nil
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// seedEvents places each weekly event in the past week and the next two.
func seedEvents(p profile, now time.Time) (int, error) {
	created := 0
	week := dayStart(now).AddDate(0, 0, -int(now.Weekday()))
	for w := -1; w <= 1; w++ {
		for _, se := range p.events {
			day := week.AddDate(0, 0, 7*w+int(se.weekday))
			start := day.Add(time.Duration(se.hour)*time.Hour + time.Duration(se.minutes)*time.Minute)
			e, err := event.New(se.title, start.UTC(), start.Add(time.Hour).UTC(), storage.Now())
			if err != nil {
				return created, err
			}
			e.Location = se.location
			if err := store.CreateEvent(e); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
