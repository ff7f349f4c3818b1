// Package explorer serves a project tree to a view: it lists nodes through a
// Source, remembers what it handed out and refreshes subtrees on demand.
package explorer

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/classview/internal/debounce"
	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/internal/utils"
	"github.com/toyz/classview/pkg/classview"
)

// DefaultRefreshDelay is used when neither the options nor SetRefreshDelay give one
const DefaultRefreshDelay = 2 * time.Second

// ErrNoWorkspace is returned when roots are requested with no workspace folder open
var ErrNoWorkspace = errors.WorkspaceError("no workspace found").
	WithSuggestion("Open a folder or set workspace_folders in the configuration")

// Options configures a TreeProvider. Nil fields get defaults.
type Options struct {
	Workspace    *Workspace
	Source       Source
	Cache        *NodeCache
	Index        *SourceIndex
	RefreshDelay time.Duration
	Diagnostics  *utils.DiagnosticSystem
}

// TreeProvider lists project tree nodes and refreshes them. Listing and
// refreshing may run on different goroutines; code that reads node children
// outside the provider does so through ReadTree.
type TreeProvider struct {
	// nodesMu guards the children of every node the provider hands out
	nodesMu sync.RWMutex

	mu           sync.Mutex
	workspace    *Workspace
	source       Source
	cache        *NodeCache
	index        *SourceIndex
	diagnostics  *utils.DiagnosticSystem
	roots        []*classview.PackageNode
	defaultDelay time.Duration
	trigger      *debounce.Trigger[*classview.PackageNode]

	subsMu sync.RWMutex
	subs   map[uuid.UUID]func(*classview.PackageNode)
}

// NewTreeProvider creates a provider over opts.Source
func NewTreeProvider(opts Options) *TreeProvider {
	ws := opts.Workspace
	if ws == nil {
		ws = NewWorkspace()
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewNodeCache(ws)
	}
	index := opts.Index
	if index == nil {
		index = NewSourceIndex()
	}
	diagnostics := opts.Diagnostics
	if diagnostics == nil {
		diagnostics = utils.NewSilentDiagnostics()
	}
	delay := opts.RefreshDelay
	if delay <= 0 {
		delay = DefaultRefreshDelay
	}

	p := &TreeProvider{
		workspace:    ws,
		source:       opts.Source,
		cache:        cache,
		index:        index,
		diagnostics:  diagnostics,
		defaultDelay: delay,
		subs:         make(map[uuid.UUID]func(*classview.PackageNode)),
	}
	p.SetRefreshDelay(0)
	return p
}

// Cache returns the node cache the provider writes to
func (p *TreeProvider) Cache() *NodeCache {
	return p.cache
}

// Index returns the source file index the provider writes to
func (p *TreeProvider) Index() *SourceIndex {
	return p.index
}

// Children lists the children of node. A nil node, or any node before roots
// have been listed, yields the roots. Children already on a node are reused.
func (p *TreeProvider) Children(ctx context.Context, node *classview.PackageNode) ([]*classview.PackageNode, error) {
	p.nodesMu.Lock()
	defer p.nodesMu.Unlock()

	p.mu.Lock()
	rootsLoaded := p.roots != nil
	p.mu.Unlock()

	if node == nil || !rootsLoaded {
		return p.rootNodes(ctx)
	}

	if children, ok := node.Children().Get(); ok {
		return children, nil
	}

	children, err := p.fetchChildren(ctx, node)
	if err != nil {
		return nil, err
	}

	node.SetChildren(children)
	p.cache.SaveAll(node, children)
	p.index.SaveAll(children)
	return children, nil
}

func (p *TreeProvider) fetchChildren(ctx context.Context, node *classview.PackageNode) ([]*classview.PackageNode, error) {
	if kind, _ := node.Kind().Get(); kind == classview.KindWorkspace {
		uri, ok := node.URI().Get()
		if !ok {
			return nil, errors.WorkspaceError("workspace node has no uri").
				WithContext("name", node.Name().OrElse(""))
		}
		return p.source.Projects(ctx, uri)
	}
	return p.source.Children(ctx, node)
}

// rootNodes builds one workspace node per folder when several are open, and
// the folder's projects when exactly one is.
func (p *TreeProvider) rootNodes(ctx context.Context) ([]*classview.PackageNode, error) {
	folders := p.workspace.Folders()
	if len(folders) == 0 {
		return nil, ErrNoWorkspace
	}

	var roots []*classview.PackageNode
	if len(folders) > 1 {
		for _, folder := range folders {
			node := classview.NewPackageNode(path.Base(folder), folder, classview.KindWorkspace)
			node.SetURI(FileURI(folder))
			roots = append(roots, node)
		}
	} else {
		projects, err := p.source.Projects(ctx, FileURI(folders[0]))
		if err != nil {
			return nil, errors.Wrap(errors.WorkspaceErrorCode, "failed to list projects", err).
				WithContext("folder", folders[0])
		}
		roots = projects
		p.cache.SaveAll(nil, projects)
		p.index.SaveAll(projects)
	}

	if roots == nil {
		roots = []*classview.PackageNode{}
	}

	p.mu.Lock()
	p.roots = roots
	p.mu.Unlock()

	p.diagnostics.Debug("listed %d root nodes", len(roots))
	return roots, nil
}

// Refresh schedules a refresh of node, or of the whole tree when node is nil.
// Without debounce the refresh runs before Refresh returns.
func (p *TreeProvider) Refresh(debounced bool, node *classview.PackageNode) {
	p.mu.Lock()
	trigger := p.trigger
	p.mu.Unlock()

	trigger.Call(node)
	if !debounced {
		trigger.Flush()
	}
}

// SetRefreshDelay replaces the debounce delay, dropping any pending refresh.
// A non-positive wait restores the provider's default.
func (p *TreeProvider) SetRefreshDelay(wait time.Duration) {
	if wait <= 0 {
		wait = p.defaultDelay
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.trigger != nil {
		p.trigger.Cancel()
	}
	p.trigger = debounce.New(wait, p.doRefresh)
}

// RefreshDelay returns the current debounce delay
func (p *TreeProvider) RefreshDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trigger.Wait()
}

// ReadTree runs fn while no listing or refresh changes node children
func (p *TreeProvider) ReadTree(fn func()) {
	p.nodesMu.RLock()
	defer p.nodesMu.RUnlock()
	fn()
}

func (p *TreeProvider) doRefresh(node *classview.PackageNode) {
	p.nodesMu.Lock()
	if node == nil {
		p.mu.Lock()
		roots := p.roots
		p.roots = nil
		p.mu.Unlock()
		for _, root := range roots {
			root.ClearChildren()
		}
	}
	p.cache.RemoveMutableChildren(node)
	p.nodesMu.Unlock()

	if node == nil {
		p.index.Clear()
		p.diagnostics.Verbose("refreshing whole tree")
	} else {
		p.diagnostics.Verbose("refreshing %s", node.Name().OrElse(node.URI().OrElse("<unnamed>")))
	}
	p.notify(node)
}

// Subscribe registers fn to be called after every refresh with the refreshed
// node (nil for the whole tree).
func (p *TreeProvider) Subscribe(fn func(*classview.PackageNode)) uuid.UUID {
	id := uuid.New()
	p.subsMu.Lock()
	p.subs[id] = fn
	p.subsMu.Unlock()
	return id
}

// Unsubscribe removes a subscription
func (p *TreeProvider) Unsubscribe(id uuid.UUID) {
	p.subsMu.Lock()
	delete(p.subs, id)
	p.subsMu.Unlock()
}

func (p *TreeProvider) notify(node *classview.PackageNode) {
	p.subsMu.RLock()
	fns := make([]func(*classview.PackageNode), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subsMu.RUnlock()

	for _, fn := range fns {
		fn(node)
	}
}

// Close drops any pending refresh
func (p *TreeProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trigger != nil {
		p.trigger.Cancel()
	}
}
