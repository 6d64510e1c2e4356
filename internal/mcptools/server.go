package mcptools

import (
	"context"

	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
var Version = "1.0.0"

// NewInMemoryServer creates an in-memory MCP server exposing focusflow tools.
// Returns the server and a client transport for connecting to it.
func NewInMemoryServer(store storage.Storage) (*mcp.Server, mcp.Transport) {
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	server := CreateMCPServer(store, "")

	go func() {
		_, _ = server.Connect(context.Background(), serverTransport, nil)
	}()

	return server, clientTransport
}

// CreateMCPServer creates an MCP server with registered focusflow tools.
// dataDir is used for cache invalidation after write operations; pass "" to skip.
func CreateMCPServer(store storage.Storage, dataDir string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "focusflow",
		Version: Version,
	}, nil)

	// Read tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks, open ones first, filtered by status, project or tag",
	}, ListTasksHandler(store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_notes",
		Description: "Fuzzy search notes by title, tags and content",
	}, SearchNotesHandler(store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "focus_summary",
		Description: "Summarize recent pomodoro focus time, streaks and task progress",
	}, FocusSummaryHandler(store))

	// Write tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_task",
		Description: "Create a task",
	}, CreateTaskHandler(store, dataDir))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task as done",
	}, CompleteTaskHandler(store, dataDir))

	return server
}
