package mcptools

import "github.com/chris-regnier/focusflow/internal/analytics"

// ListTasksInput is the input schema for the list_tasks MCP tool.
type ListTasksInput struct {
	Status  string `json:"status,omitempty" jsonschema-description:"todo, in_progress, done, or open for todo and in_progress"`
	Project string `json:"project,omitempty" jsonschema-description:"Only tasks in this project"`
	Tag     string `json:"tag,omitempty" jsonschema-description:"Only tasks carrying this tag"`
	Query   string `json:"query,omitempty" jsonschema-description:"Text to look for in title or description"`
	Limit   int    `json:"limit,omitempty" jsonschema-description:"Maximum number of results"`
}

// ListTasksOutput is the output schema for the list_tasks MCP tool.
type ListTasksOutput struct {
	Tasks []TaskResult `json:"tasks"`
}

// TaskResult is the common output format for task-related MCP tools.
type TaskResult struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	Priority  string   `json:"priority"`
	Project   string   `json:"project,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Due       string   `json:"due,omitempty"`
	Pomodoros string   `json:"pomodoros,omitempty"` // completed/estimated
	Overdue   bool     `json:"overdue,omitempty"`
}

// CreateTaskInput is the input schema for the create_task MCP tool.
type CreateTaskInput struct {
	Title       string   `json:"title" jsonschema-description:"Task title"`
	Description string   `json:"description,omitempty" jsonschema-description:"Longer description"`
	Priority    string   `json:"priority,omitempty" jsonschema-description:"low, medium, high or urgent (default medium)"`
	Project     string   `json:"project,omitempty" jsonschema-description:"Project name"`
	Tags        []string `json:"tags,omitempty" jsonschema-description:"Tags"`
	Due         string   `json:"due,omitempty" jsonschema-description:"Due date: 2025-06-01, tomorrow 09:00, friday, +3d"`
	Estimate    int      `json:"estimate,omitempty" jsonschema-description:"Estimated pomodoros"`
}

// CompleteTaskInput is the input schema for the complete_task MCP tool.
type CompleteTaskInput struct {
	ID string `json:"id" jsonschema-description:"Task ID"`
}

// TaskOutput is the output schema for tools that return a single task.
type TaskOutput struct {
	Task TaskResult `json:"task"`
}

// SearchNotesInput is the input schema for the search_notes MCP tool.
type SearchNotesInput struct {
	Query  string `json:"query" jsonschema-description:"Text to fuzzy match"`
	Folder string `json:"folder,omitempty" jsonschema-description:"Folder ID or path such as Work/Meetings"`
	Limit  int    `json:"limit,omitempty" jsonschema-description:"Maximum number of results to return"`
}

// SearchNotesOutput is the output schema for the search_notes MCP tool.
type SearchNotesOutput struct {
	Notes []NoteResult `json:"notes"`
}

// NoteResult is a note in search_notes output.
type NoteResult struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Folder  string   `json:"folder"`
	Tags    []string `json:"tags,omitempty"`
	Preview string   `json:"preview"`
	Updated string   `json:"updated"`
	Score   int      `json:"score"`
}

// FocusSummaryInput is the input schema for the focus_summary MCP tool.
type FocusSummaryInput struct {
	Days int `json:"days,omitempty" jsonschema-description:"Length of the daily series, ending today (default 7)"`
}

// FocusSummaryOutput is the output schema for the focus_summary MCP tool.
type FocusSummaryOutput struct {
	Focus analytics.FocusStats `json:"focus"`
	Tasks analytics.TaskStats  `json:"tasks"`
}
