package markdown

import (
	"fmt"

	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/task"
)

type taskFrontMatter struct {
	ID                 string   `yaml:"id"`
	Title              string   `yaml:"title"`
	Status             string   `yaml:"status"`
	Priority           string   `yaml:"priority"`
	Project            string   `yaml:"project,omitempty"`
	Tags               []string `yaml:"tags,omitempty,flow"`
	Due                string   `yaml:"due,omitempty"`
	EstimatedPomodoros int      `yaml:"estimated_pomodoros,omitempty"`
	CompletedPomodoros int      `yaml:"completed_pomodoros,omitempty"`
	CreatedAt          string   `yaml:"created_at"`
	UpdatedAt          string   `yaml:"updated_at"`
	CompletedAt        string   `yaml:"completed_at,omitempty"`
}

func (s *Store) writeTask(t task.Task) error {
	fm := taskFrontMatter{
		ID:                 t.ID,
		Title:              t.Title,
		Status:             string(t.Status),
		Priority:           string(t.Priority),
		Project:            t.Project,
		Tags:               t.Tags,
		Due:                formatTimePtr(t.Due),
		EstimatedPomodoros: t.EstimatedPomodoros,
		CompletedPomodoros: t.CompletedPomodoros,
		CreatedAt:          formatTime(t.CreatedAt),
		UpdatedAt:          formatTime(t.UpdatedAt),
		CompletedAt:        formatTimePtr(t.CompletedAt),
	}
	return s.writeDoc(s.flatPath(tasksDir, t.ID), fm, t.Description)
}

func (s *Store) readTask(path string) (task.Task, error) {
	var fm taskFrontMatter
	body, err := readDoc(path, &fm)
	if err != nil {
		return task.Task{}, err
	}
	t := task.Task{
		ID:                 fm.ID,
		Title:              fm.Title,
		Description:        body,
		Status:             task.Status(fm.Status),
		Priority:           task.Priority(fm.Priority),
		Project:            fm.Project,
		Tags:               fm.Tags,
		EstimatedPomodoros: fm.EstimatedPomodoros,
		CompletedPomodoros: fm.CompletedPomodoros,
	}
	if t.CreatedAt, err = parseTime("created_at", fm.CreatedAt); err != nil {
		return task.Task{}, err
	}
	if t.UpdatedAt, err = parseTime("updated_at", fm.UpdatedAt); err != nil {
		return task.Task{}, err
	}
	if t.Due, err = parseTimePtr("due", fm.Due); err != nil {
		return task.Task{}, err
	}
	if t.CompletedAt, err = parseTimePtr("completed_at", fm.CompletedAt); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// CreateTask persists a new task as tasks/<id>.md.
func (s *Store) CreateTask(t task.Task) error {
	if err := storage.ValidateTask(t); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if exists(s.flatPath(tasksDir, t.ID)) {
		return fmt.Errorf("%w: task %s already exists", storage.ErrConflict, t.ID)
	}
	return s.writeTask(t)
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(id string) (task.Task, error) {
	if !validID(id) {
		return task.Task{}, storage.ErrNotFound
	}
	return s.readTask(s.flatPath(tasksDir, id))
}

func (s *Store) allTasks() ([]task.Task, error) {
	var tasks []task.Task
	err := s.walkDocs(tasksDir, func(path string) error {
		t, err := s.readTask(path)
		if err != nil {
			return nil // skip malformed files
		}
		tasks = append(tasks, t)
		return nil
	})
	return tasks, err
}

// ListTasks returns tasks matching the filter.
func (s *Store) ListTasks(opts storage.TaskListOptions) ([]task.Task, error) {
	tasks, err := s.allTasks()
	if err != nil {
		return nil, err
	}
	return storage.FilterTasks(tasks, opts), nil
}

// UpdateTask replaces a stored task and stamps UpdatedAt.
func (s *Store) UpdateTask(t task.Task) (task.Task, error) {
	if err := storage.ValidateTask(t); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.GetTask(t.ID)
	if err != nil {
		return task.Task{}, err
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = storage.Now()
	if err := s.writeTask(t); err != nil {
		return task.Task{}, err
	}
	return s.GetTask(t.ID)
}

// DeleteTask removes a task file.
func (s *Store) DeleteTask(id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFile(s.flatPath(tasksDir, id))
}
