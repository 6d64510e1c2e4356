package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/chris-regnier/focusflow/internal/dateparse"
	"github.com/chris-regnier/focusflow/internal/task"
)

// TaskForm holds the string values bound to the interactive task form.
type TaskForm struct {
	Title       string
	Description string
	Priority    string
	Project     string
	Tags        string // comma separated
	Due         string // any dateparse input; empty clears the due date
	Estimate    string // estimated pomodoros
}

// NewTaskForm returns form values prefilled from t.
func NewTaskForm(t task.Task) *TaskForm {
	f := &TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Project:     t.Project,
		Tags:        strings.Join(t.Tags, ", "),
	}
	if f.Priority == "" {
		f.Priority = string(task.PriorityMedium)
	}
	if t.Due != nil {
		f.Due = t.Due.Local().Format("2006-01-02 15:04")
	}
	if t.EstimatedPomodoros > 0 {
		f.Estimate = strconv.Itoa(t.EstimatedPomodoros)
	}
	return f
}

func validateDue(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, _, err := dateparse.Parse(s)
	return err
}

func validateEstimate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("estimate must be a whole number of pomodoros")
	}
	return nil
}

// Form builds the huh form bound to f.
func (f *TaskForm) Form(heading string) *huh.Form {
	priorities := make([]huh.Option[string], 0, len(task.Priorities))
	for _, p := range task.Priorities {
		label := strings.ToUpper(string(p[:1])) + string(p[1:])
		priorities = append(priorities, huh.NewOption(label, string(p)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(heading).
				Description("Title").
				Value(&f.Title).
				Placeholder("What needs doing?").
				Validate(task.ValidateTitle),
			huh.NewText().
				Title("Description").
				Value(&f.Description).
				Placeholder("Optional details...").
				Lines(3),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorities...).
				Value(&f.Priority),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Project").
				Value(&f.Project),
			huh.NewInput().
				Title("Tags").
				Description("Comma separated").
				Value(&f.Tags),
			huh.NewInput().
				Title("Due").
				Description("2025-06-01, tomorrow 09:00, friday, +3d").
				Value(&f.Due).
				Validate(validateDue),
			huh.NewInput().
				Title("Estimated pomodoros").
				Value(&f.Estimate).
				Validate(validateEstimate),
		),
	).WithTheme(huh.ThemeCharm())
}

// Run shows the form and blocks until it is submitted or aborted.
func (f *TaskForm) Run(heading string) error {
	return f.Form(heading).Run()
}

// Apply copies the form values onto t.
func (f *TaskForm) Apply(t *task.Task, now time.Time) error {
	if err := task.ValidateTitle(f.Title); err != nil {
		return err
	}
	p, err := task.ParsePriority(f.Priority)
	if err != nil {
		return err
	}
	if err := validateEstimate(f.Estimate); err != nil {
		return err
	}

	t.Title = strings.TrimSpace(f.Title)
	t.Description = strings.TrimSpace(f.Description)
	t.Priority = p
	t.Project = strings.TrimSpace(f.Project)
	t.Tags = task.ParseTags(f.Tags)
	t.EstimatedPomodoros = 0
	if s := strings.TrimSpace(f.Estimate); s != "" {
		t.EstimatedPomodoros, _ = strconv.Atoi(s)
	}
	t.Due = nil
	if strings.TrimSpace(f.Due) != "" {
		due, _, err := dateparse.ParseFrom(f.Due, now)
		if err != nil {
			return fmt.Errorf("invalid due date: %w", err)
		}
		due = due.UTC().Truncate(time.Second)
		t.Due = &due
	}
	return nil
}
