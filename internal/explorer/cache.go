package explorer

import (
	"sync"

	"github.com/toyz/classview/internal/trie"
	"github.com/toyz/classview/internal/utils"
	"github.com/toyz/classview/pkg/classview"
)

// cachedNode is a mutable node together with the node it was listed under
type cachedNode struct {
	node   *classview.PackageNode
	parent *classview.PackageNode
}

// NodeCache remembers nodes that have been handed to the view so that
// file-system events can be mapped back to them.
//
// Workspace nodes are indexed by path in a trie; read-only class nodes served
// under the jdt scheme live in a flat store. Anything else is ignored.
type NodeCache struct {
	mu        sync.RWMutex
	workspace *Workspace
	mutable   *trie.Trie[cachedNode]
	readonly  *utils.Cache[string, *classview.PackageNode]
}

// NewNodeCache creates an empty cache scoped to ws
func NewNodeCache(ws *Workspace) *NodeCache {
	return &NodeCache{
		workspace: ws,
		mutable:   trie.New[cachedNode](),
		readonly:  utils.NewCache[string, *classview.PackageNode](),
	}
}

// Save records node as a child of parent. Nodes without a parseable URI are skipped.
func (c *NodeCache) Save(parent, node *classview.PackageNode) {
	if node == nil {
		return
	}
	loc, ok := nodeLocation(node)
	if !ok {
		return
	}

	switch {
	case c.workspace.ContainsLocation(loc):
		c.mu.Lock()
		c.mutable.Insert(loc.FSPath, cachedNode{node: node, parent: parent})
		c.mu.Unlock()
	case loc.IsJDTClass():
		c.readonly.Set(loc.FSPath, node)
	}
}

// SaveAll records every node as a child of parent
func (c *NodeCache) SaveAll(parent *classview.PackageNode, nodes []*classview.PackageNode) {
	for _, node := range nodes {
		c.Save(parent, node)
	}
}

// DataNode returns the cached node for uri
func (c *NodeCache) DataNode(uri string) (*classview.PackageNode, bool) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, false
	}

	switch {
	case c.workspace.ContainsLocation(loc):
		c.mu.RLock()
		defer c.mu.RUnlock()
		found := c.mutable.Find(loc.FSPath)
		if found == nil {
			return nil, false
		}
		entry, ok := found.Value()
		if !ok {
			return nil, false
		}
		return entry.node, true
	case loc.IsJDTClass():
		return c.readonly.Get(loc.FSPath)
	}
	return nil, false
}

// FindParent returns the parent of the deepest cached node on uri's path.
// Only workspace resources have parents.
func (c *NodeCache) FindParent(uri string) (*classview.PackageNode, bool) {
	loc, err := ParseURI(uri)
	if err != nil || !c.workspace.ContainsLocation(loc) {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	nearest := c.mutable.FindNearest(loc.FSPath)
	if nearest == nil {
		return nil, false
	}
	entry, _ := nearest.Value()
	if entry.parent == nil {
		return nil, false
	}
	return entry.parent, true
}

// RemoveMutableChildren forgets everything cached below node and marks the
// children of node and of every forgotten node absent, so the next listing
// fetches them again. A nil node does this for the whole cache.
func (c *NodeCache) RemoveMutableChildren(node *classview.PackageNode) {
	if node == nil {
		c.Clear()
		return
	}

	loc, ok := nodeLocation(node)
	if !ok || !c.workspace.ContainsLocation(loc) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	found := c.mutable.Find(loc.FSPath)
	if found == nil {
		return
	}
	found.Walk(forget)
	found.RemoveChildren()
	node.ClearChildren()
}

// Clear drops every cached node and marks their children absent
func (c *NodeCache) Clear() {
	c.mu.Lock()
	c.mutable.Walk(forget)
	c.mutable.Clear()
	c.mu.Unlock()
	c.readonly.DeleteFunc(func(_ string, node *classview.PackageNode) bool {
		node.ClearChildren()
		return true
	})
}

func forget(entry cachedNode) {
	entry.node.ClearChildren()
}

// ReadonlyLen returns the number of cached class nodes
func (c *NodeCache) ReadonlyLen() int {
	return c.readonly.Size()
}

func nodeLocation(node *classview.PackageNode) (Location, bool) {
	uri, ok := node.URI().Get()
	if !ok {
		return Location{}, false
	}
	loc, err := ParseURI(uri)
	if err != nil {
		return Location{}, false
	}
	return loc, true
}
