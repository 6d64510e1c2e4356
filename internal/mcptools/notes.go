package mcptools

import (
	"context"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sahilm/fuzzy"
)

const defaultNoteLimit = 10

// noteSource adapts notes to fuzzy.Source. Each note is matched on its
// title, tags and the start of its content.
type noteSource []note.Note

func (s noteSource) Len() int { return len(s) }

func (s noteSource) String(i int) string {
	n := s[i]
	return n.Title + " " + strings.Join(n.Tags, " ") + " " + truncate(strings.Join(strings.Fields(n.Content), " "), 500)
}

// SearchNotes ranks notes against query, best match first. An empty query
// returns notes in their stored order.
func SearchNotes(notes []note.Note, query string, limit int) []fuzzy.Match {
	var matches []fuzzy.Match
	if strings.TrimSpace(query) == "" {
		src := noteSource(notes)
		for i := range notes {
			matches = append(matches, fuzzy.Match{Str: src.String(i), Index: i})
		}
	} else {
		matches = fuzzy.FindFrom(query, noteSource(notes))
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// SearchNotesHandler returns the handler function for the search_notes MCP tool.
func SearchNotesHandler(store storage.Storage) func(ctx context.Context, req *mcp.CallToolRequest, input SearchNotesInput) (*mcp.CallToolResult, SearchNotesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchNotesInput) (*mcp.CallToolResult, SearchNotesOutput, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = defaultNoteLimit
		}

		folders, err := store.ListFolders()
		if err != nil {
			return nil, SearchNotesOutput{}, err
		}
		var opts storage.NoteListOptions
		if input.Folder != "" {
			id, err := note.ResolveFolder(folders, input.Folder)
			if err != nil {
				return nil, SearchNotesOutput{}, err
			}
			opts.FolderID = &id
		}
		notes, err := store.ListNotes(opts)
		if err != nil {
			return nil, SearchNotesOutput{}, err
		}

		results := make([]NoteResult, 0, limit)
		for _, m := range SearchNotes(notes, input.Query, limit) {
			n := notes[m.Index]
			results = append(results, NoteResult{
				ID:      n.ID,
				Title:   n.Title,
				Folder:  note.FolderPath(folders, n.FolderID),
				Tags:    n.Tags,
				Preview: n.Preview(200),
				Updated: n.UpdatedAt.Local().Format(time.RFC3339),
				Score:   m.Score,
			})
		}
		return nil, SearchNotesOutput{Notes: results}, nil
	}
}
