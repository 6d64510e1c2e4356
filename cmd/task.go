package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/editor"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/task"
	"github.com/chris-regnier/focusflow/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// taskFields are the editable task flags shared by add and edit.
type taskFields struct {
	description string
	priority    string
	project     string
	tags        []string
	due         string
	estimate    int
	interactive bool
}

func (f *taskFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "longer description")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "low, medium, high or urgent")
	cmd.Flags().StringVar(&f.project, "project", "", "project name")
	cmd.Flags().StringSliceVarP(&f.tags, "tag", "t", nil, "tag (repeatable or comma separated)")
	cmd.Flags().StringVar(&f.due, "due", "", `due date ("tomorrow 17:00", "friday", "+3d", "" to clear)`)
	cmd.Flags().IntVarP(&f.estimate, "estimate", "e", 0, "estimated pomodoros")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "fill in the task with a form")
}

// apply copies the flags the user set onto t.
func (f *taskFields) apply(cmd *cobra.Command, t *task.Task) error {
	flags := cmd.Flags()
	if flags.Changed("description") {
		t.Description = strings.TrimSpace(f.description)
	}
	if flags.Changed("priority") {
		p, err := task.ParsePriority(f.priority)
		if err != nil {
			return err
		}
		t.Priority = p
	}
	if flags.Changed("project") {
		t.Project = strings.TrimSpace(f.project)
	}
	if flags.Changed("tag") {
		t.Tags = task.NormalizeTags(f.tags)
	}
	if flags.Changed("due") {
		t.Due = nil
		if strings.TrimSpace(f.due) != "" {
			due, _, err := parseWhen("due", f.due)
			if err != nil {
				return err
			}
			due = due.UTC().Truncate(time.Second)
			t.Due = &due
		}
	}
	if flags.Changed("estimate") {
		if f.estimate < 0 {
			return fmt.Errorf("--estimate must not be negative")
		}
		t.EstimatedPomodoros = f.estimate
	}
	return nil
}

func (f *taskFields) changed(cmd *cobra.Command) bool {
	for _, name := range []string{"description", "priority", "project", "tag", "due", "estimate"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// runForm shows the interactive task form and applies the result to t.
func runForm(t *task.Task, heading string) error {
	if !ui.IsTerminal(os.Stdout) {
		return fmt.Errorf("--interactive needs a terminal")
	}
	form := ui.NewTaskForm(*t)
	if err := form.Run(heading); err != nil {
		return err
	}
	return form.Apply(t, time.Now())
}

func getTask(id string) (task.Task, error) {
	t, err := store.GetTask(id)
	if err != nil {
		return task.Task{}, notFound("task", id, err)
	}
	return t, nil
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(),
		newTaskListCmd(),
		newTaskShowCmd(),
		newTaskEditCmd(),
		newTaskStatusCmd("start", "Mark a task as in progress", func(t *task.Task, now time.Time) { t.Start() }),
		newTaskStatusCmd("done", "Mark tasks as done", func(t *task.Task, now time.Time) { t.Complete(now) }),
		newTaskStatusCmd("reopen", "Move done tasks back to todo", func(t *task.Task, now time.Time) { t.Reopen() }),
		newTaskDeleteCmd(),
	)
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var f taskFields
	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Create a task",
		Long: `Create a task.

The title is taken from the arguments ("-" reads it from stdin).
With --interactive, a form asks for every field.`,
		Example: `  focusflow task add Write quarterly report --priority high --due friday -e 4
  focusflow task add "Renew passport" --tag errand --due +14d
  focusflow task add -i`,
		PostRunE: invalidateCachePostRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := readContent(args)
			if err != nil {
				return err
			}
			now := storage.Now()
			var t task.Task
			if f.interactive {
				t = task.Task{Title: strings.TrimSpace(title), Priority: task.PriorityMedium}
				if err := f.apply(cmd, &t); err != nil {
					return err
				}
				if err := runForm(&t, "New task"); err != nil {
					return err
				}
				fresh, err := task.New(t.Title, now)
				if err != nil {
					return err
				}
				t.ID, t.Status, t.CreatedAt, t.UpdatedAt = fresh.ID, fresh.Status, fresh.CreatedAt, fresh.UpdatedAt
			} else {
				if t, err = task.New(title, now); err != nil {
					return err
				}
				if err := f.apply(cmd, &t); err != nil {
					return err
				}
			}

			if err := store.CreateTask(t); err != nil {
				return err
			}
			logger.Info("task created", zap.String("task", t.ID))
			return emit(cmd, t, func(w io.Writer) {
				ui.FormatCreated(w, "task", t.ID, t.Preview(50))
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var (
		status    string
		priority  string
		project   string
		tag       string
		query     string
		dueBefore string
		overdue   bool
		limit     int
		idOnly    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  "List tasks: open ones first, then by priority, due date and age.",
		Example: `  focusflow task list
  focusflow task list --status done --project work
  focusflow task list --due-before friday
  focusflow task list --overdue --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := storage.TaskListOptions{
				Project: project,
				Tag:     tag,
				Query:   query,
				Limit:   limit,
			}
			switch strings.ToLower(status) {
			case "", "open":
				opts.Statuses = []task.Status{task.StatusTodo, task.StatusInProgress}
			case "all":
			default:
				s, err := task.ParseStatus(status)
				if err != nil {
					return err
				}
				opts.Statuses = []task.Status{s}
			}
			if priority != "" {
				p, err := task.ParsePriority(priority)
				if err != nil {
					return err
				}
				opts.Priority = p
			}
			if dueBefore != "" {
				t, _, err := parseWhen("due-before", dueBefore)
				if err != nil {
					return err
				}
				opts.DueBefore = &t
			}

			tasks, err := store.ListTasks(opts)
			if err != nil {
				return err
			}
			now := time.Now()
			if overdue {
				kept := tasks[:0]
				for _, t := range tasks {
					if t.IsOverdue(now) {
						kept = append(kept, t)
					}
				}
				tasks = kept
			}

			if idOnly {
				for _, t := range tasks {
					fmt.Fprintln(cmd.OutOrStdout(), t.ID)
				}
				return nil
			}
			if tasks == nil {
				tasks = []task.Task{}
			}
			return emitPaged(cmd, tasks, func(w io.Writer) {
				ui.FormatTaskList(w, tasks, theme(), now)
			})
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "open", "todo, in_progress, done, open or all")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "only this priority")
	cmd.Flags().StringVar(&project, "project", "", "only this project")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only tasks with this tag")
	cmd.Flags().StringVarP(&query, "query", "q", "", "text in title or description")
	cmd.Flags().StringVar(&dueBefore, "due-before", "", "due on or before this date")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only overdue tasks")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of tasks")
	cmd.Flags().BoolVar(&idOnly, "id-only", false, "print just task IDs, one per line")
	return cmd
}

func newTaskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Short:   "Show a task",
		Example: `  focusflow task show a3kf9x2m`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := getTask(args[0])
			if err != nil {
				return err
			}
			return emit(cmd, t, func(w io.Writer) {
				ui.FormatTaskFull(w, t, time.Now())
			})
		},
	}
}

func newTaskEditCmd() *cobra.Command {
	var (
		f     taskFields
		title string
		useEd bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Long: `Change task fields with flags, edit the description in $EDITOR
with --editor, or use the form with --interactive.`,
		Example: `  focusflow task edit a3kf9x2m --priority urgent --due tomorrow
  focusflow task edit a3kf9x2m --due ""
  focusflow task edit a3kf9x2m --editor
  focusflow task edit a3kf9x2m -i`,
		Args:     cobra.ExactArgs(1),
		PostRunE: invalidateCachePostRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := getTask(args[0])
			if err != nil {
				return err
			}
			if !f.changed(cmd) && !cmd.Flags().Changed("title") && !useEd && !f.interactive {
				return fmt.Errorf("nothing to change: pass field flags, --editor or --interactive")
			}
			if cmd.Flags().Changed("title") {
				if err := task.ValidateTitle(title); err != nil {
					return err
				}
				t.Title = strings.TrimSpace(title)
			}
			if err := f.apply(cmd, &t); err != nil {
				return err
			}
			if useEd {
				content, changed, err := editor.Edit(editor.ResolveEditor(appConfig.Editor), t.Description)
				if err != nil {
					return withCode(exitExternal, err)
				}
				if changed {
					t.Description = strings.TrimSpace(content)
				}
			}
			if f.interactive {
				if err := runForm(&t, "Edit task"); err != nil {
					return err
				}
			}

			updated, err := store.UpdateTask(t)
			if err != nil {
				return err
			}
			return emit(cmd, updated, func(w io.Writer) {
				ui.FormatUpdated(w, "task", updated.ID)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().BoolVar(&useEd, "editor", false, "edit the description in $EDITOR")
	return cmd
}

// newTaskStatusCmd builds a command that applies change to each given task.
func newTaskStatusCmd(use, short string, change func(t *task.Task, now time.Time)) *cobra.Command {
	return &cobra.Command{
		Use:      use + " <id>...",
		Short:    short,
		Example:  fmt.Sprintf("  focusflow task %s a3kf9x2m", use),
		Args:     cobra.MinimumNArgs(1),
		PostRunE: invalidateCachePostRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []task.Task
			for _, id := range args {
				t, err := getTask(id)
				if err != nil {
					return err
				}
				change(&t, storage.Now())
				updated, err := store.UpdateTask(t)
				if err != nil {
					return err
				}
				logger.Info("task status changed", zap.String("task", id), zap.String("status", string(updated.Status)))
				out = append(out, updated)
			}
			return emit(cmd, out, func(w io.Writer) {
				for _, t := range out {
					fmt.Fprintf(w, "%s %s  %s\n", ui.StatusMark(t.Status), t.ID, t.Preview(60))
				}
			})
		},
	}
}

func newTaskDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Long:  "Permanently delete a task. Requires confirmation unless --force is used.",
		Example: `  focusflow task delete a3kf9x2m
  focusflow task delete a3kf9x2m --force`,
		Args:     cobra.ExactArgs(1),
		PostRunE: invalidateCachePostRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := getTask(args[0])
			if err != nil {
				return err
			}
			ok, err := confirmDelete(cmd, "task", t.Preview(50), force)
			if err != nil || !ok {
				return err
			}
			if err := store.DeleteTask(t.ID); err != nil {
				return err
			}
			return emit(cmd, ui.DeleteResult{ID: t.ID, Deleted: true}, func(w io.Writer) {
				ui.FormatDeleted(w, "task", t.ID)
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}
