package note

import (
	"fmt"
	"strings"
)

func index(folders []Folder) map[string]Folder {
	m := make(map[string]Folder, len(folders))
	for _, f := range folders {
		m[f.ID] = f
	}
	return m
}

// FolderPath renders the slash separated path of a folder, e.g. "Work/Meetings".
// The root folder ("") renders as "/".
func FolderPath(folders []Folder, id string) string {
	if id == "" {
		return "/"
	}
	byID := index(folders)
	var parts []string
	seen := make(map[string]bool)
	for cur := id; cur != ""; {
		f, ok := byID[cur]
		if !ok || seen[cur] {
			break
		}
		seen[cur] = true
		parts = append([]string{f.Name}, parts...)
		cur = f.ParentID
	}
	if len(parts) == 0 {
		return id
	}
	return strings.Join(parts, "/")
}

// ResolveFolder finds a folder by ID or by slash separated path (case-insensitive).
// "" and "/" resolve to the root and return an empty ID.
func ResolveFolder(folders []Folder, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "/" {
		return "", nil
	}
	for _, f := range folders {
		if f.ID == ref {
			return f.ID, nil
		}
	}
	parent := ""
	for _, part := range strings.Split(strings.Trim(ref, "/"), "/") {
		found := ""
		for _, f := range folders {
			if f.ParentID == parent && strings.EqualFold(f.Name, part) {
				found = f.ID
				break
			}
		}
		if found == "" {
			return "", fmt.Errorf("folder %q not found", ref)
		}
		parent = found
	}
	return parent, nil
}

// Children returns the direct children of the folder with the given ID.
func Children(folders []Folder, id string) []Folder {
	var out []Folder
	for _, f := range folders {
		if f.ParentID == id {
			out = append(out, f)
		}
	}
	return out
}

// CheckMove rejects moves that would make a folder its own ancestor.
func CheckMove(folders []Folder, id, newParent string) error {
	if newParent == "" {
		return nil
	}
	if id == newParent {
		return fmt.Errorf("folder cannot be moved into itself")
	}
	byID := index(folders)
	if _, ok := byID[newParent]; !ok {
		return fmt.Errorf("folder %q not found", newParent)
	}
	seen := make(map[string]bool)
	for cur := newParent; cur != ""; cur = byID[cur].ParentID {
		if cur == id {
			return fmt.Errorf("folder cannot be moved into its own subfolder")
		}
		if seen[cur] {
			break
		}
		seen[cur] = true
	}
	return nil
}
