package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/task"
)

const taskColumns = `id, title, description, status, priority, project, tags, due_at,
	estimated_pomodoros, completed_pomodoros, created_at, updated_at, completed_at`

func scanTask(row scanner) (task.Task, error) {
	var (
		t                      task.Task
		status, priority, tags string
		createdAt, updatedAt   string
		dueAt, completedAt     sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.Project, &tags, &dueAt,
		&t.EstimatedPomodoros, &t.CompletedPomodoros, &createdAt, &updatedAt, &completedAt); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	t.Tags = decodeTags(tags)

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return task.Task{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return task.Task{}, err
	}
	if t.Due, err = parseTimePtr(dueAt); err != nil {
		return task.Task{}, err
	}
	if t.CompletedAt, err = parseTimePtr(completedAt); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// CreateTask persists a new task.
func (s *Store) CreateTask(t task.Task) error {
	if err := storage.ValidateTask(t); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.Project, encodeTags(t.Tags),
		formatTimePtr(t.Due), t.EstimatedPomodoros, t.CompletedPomodoros,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt), formatTimePtr(t.CompletedAt),
	)
	if err != nil {
		return insertErr("task", t.ID, err)
	}
	return nil
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(id string) (task.Task, error) {
	t, err := scanTask(s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err != nil {
		return task.Task{}, notFoundOr(err, "task")
	}
	return t, nil
}

// ListTasks returns tasks matching the filter, ordered by status, priority,
// due date and creation time.
func (s *Store) ListTasks(opts storage.TaskListOptions) ([]task.Task, error) {
	var (
		where []string
		args  []any
	)
	if len(opts.Statuses) > 0 {
		marks := make([]string, len(opts.Statuses))
		for i, st := range opts.Statuses {
			marks[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}
	if opts.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, string(opts.Priority))
	}
	if opts.Project != "" {
		where = append(where, "LOWER(project) = LOWER(?)")
		args = append(args, opts.Project)
	}
	if opts.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(tasks.tags) WHERE LOWER(json_each.value) = LOWER(?))")
		args = append(args, opts.Tag)
	}
	if opts.DueBefore != nil {
		where = append(where, "due_at IS NOT NULL AND due_at <= ?")
		args = append(args, formatTime(*opts.DueBefore))
	}
	if opts.DueAfter != nil {
		where = append(where, "due_at IS NOT NULL AND due_at >= ?")
		args = append(args, formatTime(*opts.DueAfter))
	}
	if opts.Query != "" {
		where = append(where, "(INSTR(LOWER(title), LOWER(?)) > 0 OR INSTR(LOWER(description), LOWER(?)) > 0)")
		args = append(args, opts.Query, opts.Query)
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY
		CASE status WHEN 'in_progress' THEN 0 WHEN 'todo' THEN 1 ELSE 2 END,
		CASE priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC,
		due_at IS NULL, due_at ASC, created_at DESC, id ASC`
	query, args = withPaging(query, args, opts.Limit, opts.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tasks: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning task: %v", storage.ErrStorage, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating tasks: %v", storage.ErrStorage, err)
	}
	return tasks, nil
}

// UpdateTask replaces a stored task and stamps UpdatedAt.
func (s *Store) UpdateTask(t task.Task) (task.Task, error) {
	if err := storage.ValidateTask(t); err != nil {
		return task.Task{}, err
	}
	t.UpdatedAt = storage.Now()
	err := execOne(s.db, "updating task",
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, project = ?, tags = ?,
			due_at = ?, estimated_pomodoros = ?, completed_pomodoros = ?, updated_at = ?, completed_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.Project, encodeTags(t.Tags),
		formatTimePtr(t.Due), t.EstimatedPomodoros, t.CompletedPomodoros,
		formatTime(t.UpdatedAt), formatTimePtr(t.CompletedAt), t.ID,
	)
	if err != nil {
		return task.Task{}, err
	}
	return s.GetTask(t.ID)
}

// DeleteTask removes a task. Logged sessions keep their task reference.
func (s *Store) DeleteTask(id string) error {
	return execOne(s.db, "deleting task", "DELETE FROM tasks WHERE id = ?", id)
}

func withPaging(query string, args []any, limit, offset int) (string, []any) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	} else if offset > 0 {
		query += " LIMIT -1"
	}
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}
	return query, args
}
