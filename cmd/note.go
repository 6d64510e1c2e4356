package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chris-regnier/focusflow/internal/editor"
	"github.com/chris-regnier/focusflow/internal/mcptools"
	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/task"
	"github.com/chris-regnier/focusflow/internal/ui"
	"github.com/spf13/cobra"
)

func getNote(id string) (note.Note, error) {
	n, err := store.GetNote(id)
	if err != nil {
		return note.Note{}, notFound("note", id, err)
	}
	return n, nil
}

// resolveFolder turns a folder ID or path into an ID; "/" is the root.
func resolveFolder(ref string) (string, []note.Folder, error) {
	folders, err := store.ListFolders()
	if err != nil {
		return "", nil, err
	}
	id, err := note.ResolveFolder(folders, ref)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", storage.ErrNotFound, err)
	}
	return id, folders, nil
}

func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes", "n"},
		Short:   "Manage notes",
	}
	cmd.AddCommand(
		newNoteNewCmd(),
		newNoteListCmd(),
		newNoteShowCmd(),
		newNoteEditCmd(),
		newNoteMoveCmd(),
		newNotePinCmd(),
		newNoteDeleteCmd(),
		newNoteSearchCmd(),
	)
	return cmd
}

func newNoteNewCmd() *cobra.Command {
	var (
		folder  string
		tags    []string
		content string
		pinned  bool
	)
	cmd := &cobra.Command{
		Use:   "new <title...>",
		Short: "Create a note",
		Long: `Create a note. The Markdown body comes from --content ("-" reads stdin);
without it, your editor is opened on a terminal.`,
		Example: `  focusflow note new Standup notes --folder Work/Meetings
  focusflow note new "Reading list" --content "- Dune" --tag books
  pbpaste | focusflow note new Clipping --content -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			folderID, _, err := resolveFolder(folder)
			if err != nil {
				return err
			}
			n, err := note.New(title, "", folderID, storage.Now())
			if err != nil {
				return err
			}
			n.Tags = task.NormalizeTags(tags)
			n.Pinned = pinned

			switch {
			case cmd.Flags().Changed("content"):
				body, err := readContent([]string{content})
				if err != nil {
					return err
				}
				n.Content = body
			case ui.IsTerminal(os.Stdin) && ui.IsTerminal(cmd.OutOrStdout()):
				doc, changed, err := editor.EditNote(editor.ResolveEditor(appConfig.Editor), editor.NoteDoc{Title: n.Title, Tags: n.Tags})
				if err != nil {
					return withCode(exitExternal, err)
				}
				if changed {
					n.Title, n.Tags, n.Content = doc.Title, task.NormalizeTags(doc.Tags), doc.Body
				}
			}

			if err := store.CreateNote(n); err != nil {
				return err
			}
			return emit(cmd, n, func(w io.Writer) {
				ui.FormatCreated(w, "note", n.ID, n.Title)
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "folder ID or path (default: root)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag (repeatable or comma separated)")
	cmd.Flags().StringVarP(&content, "content", "c", "", `Markdown body ("-" reads stdin)`)
	cmd.Flags().BoolVar(&pinned, "pin", false, "pin the note")
	return cmd
}

func newNoteListCmd() *cobra.Command {
	var (
		folder string
		tag    string
		query  string
		pinned bool
		limit  int
		idOnly bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Long:  "List notes, pinned first, then most recently modified.",
		Example: `  focusflow note list
  focusflow note list --folder Work
  focusflow note list --folder / --pinned`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := store.ListFolders()
			if err != nil {
				return err
			}
			opts := storage.NoteListOptions{Tag: tag, Query: query, PinnedOnly: pinned, Limit: limit}
			if cmd.Flags().Changed("folder") {
				id, _, err := resolveFolder(folder)
				if err != nil {
					return err
				}
				opts.FolderID = &id
			}
			notes, err := store.ListNotes(opts)
			if err != nil {
				return err
			}
			if idOnly {
				for _, n := range notes {
					fmt.Fprintln(cmd.OutOrStdout(), n.ID)
				}
				return nil
			}
			if notes == nil {
				notes = []note.Note{}
			}
			return emitPaged(cmd, notes, func(w io.Writer) {
				ui.FormatNoteList(w, notes, folders, time.Now())
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", `only notes directly in this folder ("/" for the root)`)
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only notes with this tag")
	cmd.Flags().StringVarP(&query, "query", "q", "", "text in title or content")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "only pinned notes")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of notes")
	cmd.Flags().BoolVar(&idOnly, "id-only", false, "print just note IDs, one per line")
	return cmd
}

func newNoteShowCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note",
		Long:  "Show a note with its Markdown rendered for the terminal.",
		Example: `  focusflow note show a3kf9x2m
  focusflow note show a3kf9x2m --raw`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := getNote(args[0])
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), n.Content)
				return nil
			}
			folders, err := store.ListFolders()
			if err != nil {
				return err
			}
			return emitPaged(cmd, n, func(w io.Writer) {
				ui.FormatNoteFull(w, n, folders, theme().MarkdownStyle)
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the Markdown source only")
	return cmd
}

func newNoteEditCmd() *cobra.Command {
	var (
		title   string
		content string
		tags    []string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note",
		Long: `Edit a note in your editor. The title and tags appear as a YAML header
above the body. Flags change fields directly without opening the editor.`,
		Example: `  focusflow note edit a3kf9x2m
  focusflow note edit a3kf9x2m --title "Renamed"
  echo "new body" | focusflow note edit a3kf9x2m --content -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := getNote(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("title") || flags.Changed("content") || flags.Changed("tag") {
				if flags.Changed("title") {
					n.Title = strings.TrimSpace(title)
				}
				if flags.Changed("content") {
					if n.Content, err = readContent([]string{content}); err != nil {
						return err
					}
				}
				if flags.Changed("tag") {
					n.Tags = task.NormalizeTags(tags)
				}
			} else {
				doc, changed, err := editor.EditNote(editor.ResolveEditor(appConfig.Editor),
					editor.NoteDoc{Title: n.Title, Tags: n.Tags, Body: n.Content})
				if err != nil {
					return withCode(exitExternal, err)
				}
				if !changed {
					fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
					return nil
				}
				n.Title, n.Tags, n.Content = doc.Title, task.NormalizeTags(doc.Tags), doc.Body
			}
			if err := note.ValidateTitle(n.Title); err != nil {
				return err
			}
			updated, err := store.UpdateNote(n)
			if err != nil {
				return err
			}
			return emit(cmd, updated, func(w io.Writer) {
				ui.FormatUpdated(w, "note", updated.ID)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&content, "content", "c", "", `new Markdown body ("-" reads stdin)`)
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "replace tags")
	return cmd
}

func newNoteMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <folder>",
		Short: "Move a note to another folder",
		Example: `  focusflow note move a3kf9x2m Work/Meetings
  focusflow note move a3kf9x2m /`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := getNote(args[0])
			if err != nil {
				return err
			}
			folderID, folders, err := resolveFolder(args[1])
			if err != nil {
				return err
			}
			n.FolderID = folderID
			updated, err := store.UpdateNote(n)
			if err != nil {
				return err
			}
			return emit(cmd, updated, func(w io.Writer) {
				fmt.Fprintf(w, "Moved note %s to %s.\n", updated.ID, note.FolderPath(folders, folderID))
			})
		},
	}
}

func newNotePinCmd() *cobra.Command {
	var unpin bool
	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin a note to the top of lists",
		Example: `  focusflow note pin a3kf9x2m
  focusflow note pin a3kf9x2m --unpin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := getNote(args[0])
			if err != nil {
				return err
			}
			n.Pinned = !unpin
			updated, err := store.UpdateNote(n)
			if err != nil {
				return err
			}
			return emit(cmd, updated, func(w io.Writer) {
				verb := "Pinned"
				if unpin {
					verb = "Unpinned"
				}
				fmt.Fprintf(w, "%s note %s.\n", verb, updated.ID)
			})
		},
	}
	cmd.Flags().BoolVar(&unpin, "unpin", false, "remove the pin instead")
	return cmd
}

func newNoteDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Long:  "Permanently delete a note. Requires confirmation unless --force is used.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := getNote(args[0])
			if err != nil {
				return err
			}
			ok, err := confirmDelete(cmd, "note", n.Title, force)
			if err != nil || !ok {
				return err
			}
			if err := store.DeleteNote(n.ID); err != nil {
				return err
			}
			return emit(cmd, ui.DeleteResult{ID: n.ID, Deleted: true}, func(w io.Writer) {
				ui.FormatDeleted(w, "note", n.ID)
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}

func newNoteSearchCmd() *cobra.Command {
	var (
		folder string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Fuzzy search notes",
		Long:  "Fuzzy search note titles, tags and content, best match first.",
		Example: `  focusflow note search standup
  focusflow note search "q3 plan" --folder Work`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts storage.NoteListOptions
			folderID, folders, err := resolveFolder(folder)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("folder") {
				opts.FolderID = &folderID
			}
			notes, err := store.ListNotes(opts)
			if err != nil {
				return err
			}
			found := []note.Note{}
			for _, m := range mcptools.SearchNotes(notes, strings.Join(args, " "), limit) {
				found = append(found, notes[m.Index])
			}
			return emit(cmd, found, func(w io.Writer) {
				ui.FormatNoteList(w, found, folders, time.Now())
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "only notes directly in this folder")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results")
	return cmd
}
