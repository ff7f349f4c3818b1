package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/internal/explorer"
	"github.com/toyz/classview/pkg/classview"
)

type refreshCall struct {
	debounced bool
	node      *classview.PackageNode
}

type recordingRefresher struct {
	mu    sync.Mutex
	calls []refreshCall
}

func (r *recordingRefresher) Refresh(debounced bool, node *classview.PackageNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, refreshCall{debounced: debounced, node: node})
}

func (r *recordingRefresher) snapshot() []refreshCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]refreshCall(nil), r.calls...)
}

// stubLookup answers from fixed maps keyed by URI
type stubLookup struct {
	data    map[string]*classview.PackageNode
	parents map[string]*classview.PackageNode
}

func (s stubLookup) DataNode(uri string) (*classview.PackageNode, bool) {
	n, ok := s.data[uri]
	return n, ok
}

func (s stubLookup) FindParent(uri string) (*classview.PackageNode, bool) {
	n, ok := s.parents[uri]
	return n, ok
}

func TestSyncHandler_HandleEvent(t *testing.T) {
	const folder = "/ws/demo"
	mainPath := folder + "/src/main/java/com/example/Main.java"
	newPath := folder + "/src/main/java/com/example/Added.java"

	mainType := classview.NewPackageNode("Main", "/demo/Main.java", classview.KindPrimaryType)
	pkg := classview.NewPackageNode("com.example", "/demo/com/example", classview.KindPackage)

	lookup := stubLookup{
		data:    map[string]*classview.PackageNode{explorer.FileURI(mainPath): mainType},
		parents: map[string]*classview.PackageNode{explorer.FileURI(newPath): pkg},
	}

	tests := []struct {
		name        string
		event       fsnotify.Event
		showMembers bool
		expected    []refreshCall
	}{
		{
			name:        "java write with members shown",
			event:       fsnotify.Event{Name: mainPath, Op: fsnotify.Write},
			showMembers: true,
			expected:    []refreshCall{{debounced: true, node: mainType}},
		},
		{
			name:  "java write without members",
			event: fsnotify.Event{Name: mainPath, Op: fsnotify.Write},
		},
		{
			name:        "uncached java write refreshes everything",
			event:       fsnotify.Event{Name: folder + "/src/Other.java", Op: fsnotify.Write},
			showMembers: true,
			expected:    []refreshCall{{debounced: true}},
		},
		{
			name:  "create refreshes the parent",
			event: fsnotify.Event{Name: newPath, Op: fsnotify.Create},
			expected: []refreshCall{{debounced: true, node: pkg}},
		},
		{
			name:     "remove refreshes the parent",
			event:    fsnotify.Event{Name: newPath, Op: fsnotify.Remove},
			expected: []refreshCall{{debounced: true, node: pkg}},
		},
		{
			name:     "rename counts as delete",
			event:    fsnotify.Event{Name: newPath, Op: fsnotify.Rename},
			expected: []refreshCall{{debounced: true, node: pkg}},
		},
		{
			name:     "create without cached parent refreshes everything",
			event:    fsnotify.Event{Name: folder + "/src/resources", Op: fsnotify.Create},
			expected: []refreshCall{{debounced: true}},
		},
		{
			name:  "non java write outside src",
			event: fsnotify.Event{Name: folder + "/pom.xml", Op: fsnotify.Write},
		},
		{
			name:  "non matching create",
			event: fsnotify.Event{Name: folder + "/README.md", Op: fsnotify.Create},
		},
		{
			name:  "ignored directory",
			event: fsnotify.Event{Name: folder + "/target/classes/Main.java", Op: fsnotify.Create},
		},
		{
			name:  "outside workspace",
			event: fsnotify.Event{Name: "/elsewhere/src/A.java", Op: fsnotify.Create},
		},
		{
			name:  "chmod only",
			event: fsnotify.Event{Name: mainPath, Op: fsnotify.Chmod},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresher := &recordingRefresher{}
			showMembers := tt.showMembers
			h, err := NewSyncHandler(Config{
				Workspace:   explorer.NewWorkspace(folder),
				Lookup:      lookup,
				Refresher:   refresher,
				ShowMembers: func() bool { return showMembers },
			})
			require.NoError(t, err)

			h.handleEvent(tt.event)

			calls := refresher.snapshot()
			require.Len(t, calls, len(tt.expected))
			for i, want := range tt.expected {
				assert.Equal(t, want.debounced, calls[i].debounced)
				assert.Same(t, want.node, calls[i].node)
			}
		})
	}
}

func TestNewSyncHandler_Validation(t *testing.T) {
	base := Config{
		Workspace: explorer.NewWorkspace("/ws"),
		Lookup:    stubLookup{},
		Refresher: &recordingRefresher{},
	}

	t.Run("missing collaborators", func(t *testing.T) {
		_, err := NewSyncHandler(Config{})
		assert.True(t, errors.IsCode(err, errors.ValidationErrorCode))
	})

	t.Run("bad pattern", func(t *testing.T) {
		cfg := base
		cfg.Patterns = []string{"src/[unclosed"}
		_, err := NewSyncHandler(cfg)
		assert.True(t, errors.IsCode(err, errors.ValidationErrorCode))
	})

	t.Run("bad ignore", func(t *testing.T) {
		cfg := base
		cfg.Ignore = []string{"{a,b"}
		_, err := NewSyncHandler(cfg)
		assert.True(t, errors.IsCode(err, errors.ValidationErrorCode))
	})

	t.Run("extra ignore applies", func(t *testing.T) {
		cfg := base
		cfg.Ignore = []string{"src/generated/**"}
		refresher := &recordingRefresher{}
		cfg.Refresher = refresher
		h, err := NewSyncHandler(cfg)
		require.NoError(t, err)

		h.handleEvent(fsnotify.Event{Name: "/ws/src/generated/A.java", Op: fsnotify.Create})
		h.handleEvent(fsnotify.Event{Name: "/ws/src/main/A.java", Op: fsnotify.Create})
		assert.Len(t, refresher.snapshot(), 1)
	})
}

func TestDefaultIgnores(t *testing.T) {
	ignores := DefaultIgnores()
	assert.Contains(t, ignores, "**/.git/**")
	ignores[0] = "changed"
	assert.Equal(t, "**/.git/**", DefaultIgnores()[0])
}

func TestSyncHandler_WatchesFolder(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "src", "main", "java")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))

	ws := explorer.NewWorkspace(dir)
	cache := explorer.NewNodeCache(ws)
	project := classview.NewPackageNode("demo", "/demo", classview.KindProject)
	project.SetURI(explorer.FileURI(dir))
	root := classview.NewPackageNode("src/main/java", "/demo/src/main/java", classview.KindPackageRoot)
	root.SetURI(explorer.FileURI(pkgDir))
	cache.Save(nil, project)
	cache.Save(project, root)

	refresher := &recordingRefresher{}
	h, err := NewSyncHandler(Config{Workspace: ws, Lookup: cache, Refresher: refresher})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, h.Update(ctx, true))
	require.NoError(t, h.Update(ctx, true), "enabling twice is a no-op")
	assert.True(t, h.Running())

	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "Added.java"), []byte("class Added {}"), 0o644))

	require.Eventually(t, func() bool {
		for _, call := range refresher.snapshot() {
			if call.node == project {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, h.Update(ctx, false))
	assert.False(t, h.Running())
	require.NoError(t, h.Close(), "closing a stopped handler is fine")
}

func TestSyncHandler_MissingFolder(t *testing.T) {
	h, err := NewSyncHandler(Config{
		Workspace: explorer.NewWorkspace(filepath.Join(t.TempDir(), "gone")),
		Lookup:    stubLookup{},
		Refresher: &recordingRefresher{},
	})
	require.NoError(t, err)

	// WalkDir reports the missing root to the callback, which skips it
	require.NoError(t, h.Update(context.Background(), true))
	require.NoError(t, h.Close())
}
