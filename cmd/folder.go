package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/chris-regnier/focusflow/internal/note"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/ui"
	"github.com/spf13/cobra"
)

// folderArg resolves a folder reference that must name an existing folder.
func folderArg(ref string) (note.Folder, []note.Folder, error) {
	id, folders, err := resolveFolder(ref)
	if err != nil {
		return note.Folder{}, nil, err
	}
	if id == "" {
		return note.Folder{}, nil, fmt.Errorf("the root folder cannot be changed")
	}
	f, err := store.GetFolder(id)
	if err != nil {
		return note.Folder{}, nil, notFound("folder", ref, err)
	}
	return f, folders, nil
}

func newFolderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folder",
		Aliases: []string{"folders"},
		Short:   "Organize notes into folders",
	}
	cmd.AddCommand(
		newFolderAddCmd(),
		newFolderListCmd(),
		newFolderRenameCmd(),
		newFolderMoveCmd(),
		newFolderDeleteCmd(),
	)
	return cmd
}

func newFolderAddCmd() *cobra.Command {
	var (
		parent string
		color  string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a folder",
		Example: `  focusflow folder add Work
  focusflow folder add Meetings --parent Work`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, folders, err := resolveFolder(parent)
			if err != nil {
				return err
			}
			for _, f := range note.Children(folders, parentID) {
				if strings.EqualFold(f.Name, strings.TrimSpace(args[0])) {
					return fmt.Errorf("%w: folder %q already exists in %s",
						storage.ErrDuplicate, f.Name, note.FolderPath(folders, parentID))
				}
			}
			f, err := note.NewFolder(args[0], parentID, storage.Now())
			if err != nil {
				return err
			}
			f.Color = color
			if err := store.CreateFolder(f); err != nil {
				return err
			}
			return emit(cmd, f, func(w io.Writer) {
				ui.FormatCreated(w, "folder", f.ID, note.FolderPath(append(folders, f), f.ID))
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "parent folder ID or path (default: root)")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	return cmd
}

func newFolderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the folder tree with note counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := store.ListFolders()
			if err != nil {
				return err
			}
			notes, err := store.ListNotes(storage.NoteListOptions{})
			if err != nil {
				return err
			}
			counts := make(map[string]int)
			for _, n := range notes {
				counts[n.FolderID]++
			}
			if folders == nil {
				folders = []note.Folder{}
			}
			return emit(cmd, folders, func(w io.Writer) {
				ui.FormatFolderTree(w, folders, counts)
			})
		},
	}
}

func newFolderRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rename <folder> <name>",
		Short:   "Rename a folder",
		Example: `  focusflow folder rename Work/Meetings Standups`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := folderArg(args[0])
			if err != nil {
				return err
			}
			if err := note.ValidateFolderName(args[1]); err != nil {
				return err
			}
			f.Name = strings.TrimSpace(args[1])
			updated, err := store.UpdateFolder(f)
			if err != nil {
				return err
			}
			return emit(cmd, updated, func(w io.Writer) {
				ui.FormatUpdated(w, "folder", updated.ID)
			})
		},
	}
}

func newFolderMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <folder> <parent>",
		Short: "Move a folder under another folder",
		Example: `  focusflow folder move Meetings Work
  focusflow folder move Work/Meetings /`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, folders, err := folderArg(args[0])
			if err != nil {
				return err
			}
			parentID, _, err := resolveFolder(args[1])
			if err != nil {
				return err
			}
			if err := note.CheckMove(folders, f.ID, parentID); err != nil {
				return fmt.Errorf("%w: %v", storage.ErrValidation, err)
			}
			f.ParentID = parentID
			updated, err := store.UpdateFolder(f)
			if err != nil {
				return err
			}
			return emit(cmd, updated, func(w io.Writer) {
				fmt.Fprintf(w, "Moved folder %s under %s.\n", updated.ID, note.FolderPath(folders, parentID))
			})
		},
	}
}

func newFolderDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <folder>",
		Short: "Delete a folder",
		Long: `Delete a folder. Its notes and subfolders move to the folder's parent;
no note is deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, folders, err := folderArg(args[0])
			if err != nil {
				return err
			}
			ok, err := confirmDelete(cmd, "folder", note.FolderPath(folders, f.ID), force)
			if err != nil || !ok {
				return err
			}
			if err := store.DeleteFolder(f.ID); err != nil {
				return err
			}
			return emit(cmd, ui.DeleteResult{ID: f.ID, Deleted: true}, func(w io.Writer) {
				ui.FormatDeleted(w, "folder", f.ID)
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}
