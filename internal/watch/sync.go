// Package watch keeps an explorer tree in step with the file system. It maps
// fsnotify events under the workspace folders to debounced refreshes of the
// nearest cached node.
package watch

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/internal/explorer"
	"github.com/toyz/classview/internal/utils"
	"github.com/toyz/classview/pkg/classview"
)

// DefaultPattern selects Java sources anywhere and everything below a src folder
const DefaultPattern = "**/{*.java,src/**}"

var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/target/**",
	"**/build/**",
	"**/bin/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// Refresher schedules tree refreshes. A nil node refreshes the whole tree.
type Refresher interface {
	Refresh(debounced bool, node *classview.PackageNode)
}

// Lookup resolves resource URIs to nodes already shown in the tree
type Lookup interface {
	DataNode(uri string) (*classview.PackageNode, bool)
	FindParent(uri string) (*classview.PackageNode, bool)
}

// Config holds the parameters for a SyncHandler
type Config struct {
	Workspace *explorer.Workspace
	Lookup    Lookup
	Refresher Refresher

	// ShowMembers is consulted on every write event; writes to Java files
	// only matter when members are shown. Nil means false.
	ShowMembers func() bool

	// Patterns select which paths, relative to their workspace folder,
	// trigger refreshes. Empty means DefaultPattern.
	Patterns []string
	// Ignore adds to the built-in ignore patterns
	Ignore []string

	Diagnostics *utils.DiagnosticSystem
}

// SyncHandler turns file-system events into refreshes while auto refresh is on
type SyncHandler struct {
	cfg         Config
	patterns    []string
	ignores     []string
	diagnostics *utils.DiagnosticSystem

	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSyncHandler validates cfg and returns a stopped handler
func NewSyncHandler(cfg Config) (*SyncHandler, error) {
	if cfg.Workspace == nil || cfg.Lookup == nil || cfg.Refresher == nil {
		return nil, errors.New(errors.ValidationErrorCode, "sync handler needs a workspace, a lookup and a refresher")
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	if err := validatePatterns(patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	diagnostics := cfg.Diagnostics
	if diagnostics == nil {
		diagnostics = utils.NewSilentDiagnostics()
	}

	return &SyncHandler{
		cfg:         cfg,
		patterns:    patterns,
		ignores:     ignores,
		diagnostics: diagnostics,
	}, nil
}

// Update starts watching when autoRefresh is set and stops otherwise.
// Calling it with the current state does nothing.
func (h *SyncHandler) Update(ctx context.Context, autoRefresh bool) error {
	if !autoRefresh {
		return h.Close()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fsw != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapWatchError("create", "workspace", err)
	}

	for _, folder := range h.cfg.Workspace.Folders() {
		if err := h.addDirectories(fsw, folder); err != nil {
			_ = fsw.Close()
			return err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	h.fsw = fsw
	h.cancel = cancel
	h.done = make(chan struct{})
	go h.run(runCtx, fsw, h.done)

	h.diagnostics.Verbose("watching %d workspace folder(s)", h.cfg.Workspace.Len())
	return nil
}

// Running reports whether the handler is watching
func (h *SyncHandler) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fsw != nil
}

// Close stops watching and waits for the event loop to exit
func (h *SyncHandler) Close() error {
	h.mu.Lock()
	fsw, cancel, done := h.fsw, h.cancel, h.done
	h.fsw, h.cancel, h.done = nil, nil, nil
	h.mu.Unlock()

	if fsw == nil {
		return nil
	}
	cancel()
	err := fsw.Close()
	<-done
	if err != nil {
		return errors.WrapWatchError("close", "workspace", err)
	}
	return nil
}

func (h *SyncHandler) run(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-fsw.Events:
			if !ok {
				return
			}
			if evt.Has(fsnotify.Create) {
				h.maybeAddDir(fsw, evt.Name)
			}
			h.handleEvent(evt)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			h.diagnostics.Warn("watch: %v", err)
		}
	}
}

// handleEvent maps one event to at most one refresh
func (h *SyncHandler) handleEvent(evt fsnotify.Event) {
	rel, ok := h.relative(evt.Name)
	if !ok || h.isIgnored(rel) || !h.matches(rel) {
		return
	}

	uri := explorer.FileURI(evt.Name)

	switch {
	case evt.Has(fsnotify.Create), evt.Has(fsnotify.Remove), evt.Has(fsnotify.Rename):
		node, _ := h.cfg.Lookup.FindParent(uri)
		h.refresh(node, uri)
	case evt.Has(fsnotify.Write):
		if path.Ext(rel) != ".java" || !h.showMembers() {
			return
		}
		node, _ := h.cfg.Lookup.DataNode(uri)
		h.refresh(node, uri)
	}
}

func (h *SyncHandler) refresh(node *classview.PackageNode, uri string) {
	if node == nil {
		h.diagnostics.Debug("%s changed, refreshing whole tree", uri)
	} else {
		h.diagnostics.Debug("%s changed, refreshing %s", uri, node.Name().OrElse("<unnamed>"))
	}
	h.cfg.Refresher.Refresh(true, node)
}

func (h *SyncHandler) showMembers() bool {
	return h.cfg.ShowMembers != nil && h.cfg.ShowMembers()
}

// relative returns name relative to the workspace folder holding it
func (h *SyncHandler) relative(name string) (string, bool) {
	slashed := filepath.ToSlash(name)
	for _, folder := range h.cfg.Workspace.Folders() {
		f := filepath.ToSlash(folder)
		if slashed == f {
			return ".", true
		}
		if strings.HasPrefix(slashed, strings.TrimSuffix(f, "/")+"/") {
			return strings.TrimPrefix(slashed, strings.TrimSuffix(f, "/")+"/"), true
		}
	}
	return "", false
}

func (h *SyncHandler) addDirectories(fsw *fsnotify.Watcher, folder string) error {
	walkErr := filepath.WalkDir(folder, func(p string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			h.diagnostics.Warn("watch: skipping inaccessible path %q: %v", p, walkDirErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := h.relative(p); ok && rel != "." && (h.isIgnored(rel) || h.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return errors.WrapWatchError("add", p, err)
		}
		return nil
	})
	if walkErr != nil {
		if errors.IsCode(walkErr, errors.WatchErrorCode) {
			return walkErr
		}
		return errors.WrapWatchError("walk", folder, walkErr)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after startup
func (h *SyncHandler) maybeAddDir(fsw *fsnotify.Watcher, p string) {
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return
	}
	rel, ok := h.relative(p)
	if !ok || h.isIgnored(rel) || h.isIgnored(rel+"/") {
		return
	}
	if err := fsw.Add(p); err != nil {
		h.diagnostics.Warn("watch: add new directory %q: %v", p, err)
	}
}

func (h *SyncHandler) isIgnored(rel string) bool {
	return matchAny(h.ignores, rel)
}

func (h *SyncHandler) matches(rel string) bool {
	return matchAny(h.patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns
func DefaultIgnores() []string {
	out := make([]string, len(defaultIgnores))
	copy(out, defaultIgnores)
	return out
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return errors.NewValidationError(label+" pattern", "a valid glob", pat)
		}
	}
	return nil
}
