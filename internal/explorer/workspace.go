package explorer

import (
	"path"
	"path/filepath"
	"strings"
)

// Workspace is the ordered set of folders opened in the editor
type Workspace struct {
	folders []string
}

// NewWorkspace creates a workspace from folder paths. Paths are cleaned and
// normalized to forward slashes; empty entries are skipped.
func NewWorkspace(folders ...string) *Workspace {
	ws := &Workspace{}
	for _, folder := range folders {
		if strings.TrimSpace(folder) == "" {
			continue
		}
		ws.folders = append(ws.folders, path.Clean(filepath.ToSlash(folder)))
	}
	return ws
}

// Folders returns the folder paths in the order they were given
func (w *Workspace) Folders() []string {
	return append([]string(nil), w.folders...)
}

// Len returns the number of folders
func (w *Workspace) Len() int {
	return len(w.folders)
}

// Contains reports whether fsPath is a folder or lies under one
func (w *Workspace) Contains(fsPath string) bool {
	if fsPath == "" {
		return false
	}
	target := path.Clean(filepath.ToSlash(fsPath))
	for _, folder := range w.folders {
		if target == folder {
			return true
		}
		prefix := folder
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		if strings.HasPrefix(target, prefix) {
			return true
		}
	}
	return false
}

// ContainsLocation reports whether loc is a file resource inside the workspace
func (w *Workspace) ContainsLocation(loc Location) bool {
	return loc.Scheme == SchemeFile && w.Contains(loc.FSPath)
}
