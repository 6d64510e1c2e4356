package mcptools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/dateparse"
	"github.com/chris-regnier/focusflow/internal/shell"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/task"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultTaskLimit = 20

// ListTasksHandler returns the handler function for the list_tasks MCP tool.
func ListTasksHandler(store storage.Storage) func(ctx context.Context, req *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = defaultTaskLimit
		}
		opts := storage.TaskListOptions{
			Project: input.Project,
			Tag:     input.Tag,
			Query:   input.Query,
			Limit:   limit,
		}
		switch strings.ToLower(strings.TrimSpace(input.Status)) {
		case "", "open":
			opts.Statuses = []task.Status{task.StatusTodo, task.StatusInProgress}
		case "all", "any":
		default:
			s, err := task.ParseStatus(input.Status)
			if err != nil {
				return nil, ListTasksOutput{}, err
			}
			opts.Statuses = []task.Status{s}
		}

		tasks, err := store.ListTasks(opts)
		if err != nil {
			return nil, ListTasksOutput{}, err
		}
		now := time.Now()
		results := make([]TaskResult, 0, len(tasks))
		for _, t := range tasks {
			results = append(results, taskResult(t, now))
		}
		return nil, ListTasksOutput{Tasks: results}, nil
	}
}

// CreateTaskHandler returns the handler function for the create_task MCP tool.
func CreateTaskHandler(store storage.Storage, dataDir string) func(ctx context.Context, req *mcp.CallToolRequest, input CreateTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
		now := storage.Now()
		t, err := task.New(input.Title, now)
		if err != nil {
			return nil, TaskOutput{}, err
		}
		t.Description = strings.TrimSpace(input.Description)
		t.Project = strings.TrimSpace(input.Project)
		t.Tags = task.NormalizeTags(input.Tags)
		if input.Priority != "" {
			if t.Priority, err = task.ParsePriority(input.Priority); err != nil {
				return nil, TaskOutput{}, err
			}
		}
		if input.Estimate < 0 {
			return nil, TaskOutput{}, fmt.Errorf("estimate must not be negative")
		}
		t.EstimatedPomodoros = input.Estimate
		if input.Due != "" {
			due, _, err := dateparse.ParseFrom(input.Due, now.Local())
			if err != nil {
				return nil, TaskOutput{}, fmt.Errorf("invalid due date: %w", err)
			}
			due = due.UTC().Truncate(time.Second)
			t.Due = &due
		}

		if err := store.CreateTask(t); err != nil {
			return nil, TaskOutput{}, err
		}
		invalidate(dataDir)
		return nil, TaskOutput{Task: taskResult(t, now)}, nil
	}
}

// CompleteTaskHandler returns the handler function for the complete_task MCP tool.
func CompleteTaskHandler(store storage.Storage, dataDir string) func(ctx context.Context, req *mcp.CallToolRequest, input CompleteTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CompleteTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
		t, err := store.GetTask(strings.TrimSpace(input.ID))
		if err != nil {
			return nil, TaskOutput{}, fmt.Errorf("task %q: %w", input.ID, err)
		}
		now := storage.Now()
		if t.Status != task.StatusDone {
			t.Complete(now)
			if t, err = store.UpdateTask(t); err != nil {
				return nil, TaskOutput{}, err
			}
			invalidate(dataDir)
		}
		return nil, TaskOutput{Task: taskResult(t, now)}, nil
	}
}

// invalidate drops the shell prompt cache (best-effort).
func invalidate(dataDir string) {
	if dataDir != "" {
		_ = shell.InvalidateCache(dataDir)
	}
}
