package mcptools

import (
	"context"
	"time"

	"github.com/chris-regnier/focusflow/internal/analytics"
	"github.com/chris-regnier/focusflow/internal/focus"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultDailyGoal is used when no goal override is stored.
var DefaultDailyGoal = 120

// FocusSummaryHandler returns the handler function for the focus_summary MCP tool.
func FocusSummaryHandler(store storage.Storage) func(ctx context.Context, req *mcp.CallToolRequest, input FocusSummaryInput) (*mcp.CallToolResult, FocusSummaryOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input FocusSummaryInput) (*mcp.CallToolResult, FocusSummaryOutput, error) {
		sessions, err := store.ListSessions(storage.SessionListOptions{})
		if err != nil {
			return nil, FocusSummaryOutput{}, err
		}
		tasks, err := store.ListTasks(storage.TaskListOptions{})
		if err != nil {
			return nil, FocusSummaryOutput{}, err
		}
		d := analytics.Build(analytics.Input{
			Tasks:            tasks,
			Sessions:         sessions,
			Now:              time.Now(),
			Days:             input.Days,
			DailyGoalMinutes: focus.DailyGoal(store, DefaultDailyGoal),
		})
		return nil, FocusSummaryOutput{Focus: d.Focus, Tasks: d.Tasks}, nil
	}
}
