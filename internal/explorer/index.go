package explorer

import (
	"net/url"
	"path"

	"github.com/toyz/classview/internal/utils"
	"github.com/toyz/classview/pkg/classview"
)

// SourceIndex maps normalized URIs of Java source files to their nodes
type SourceIndex struct {
	nodes *utils.Cache[string, *classview.PackageNode]
}

// NewSourceIndex creates an empty index
func NewSourceIndex() *SourceIndex {
	return &SourceIndex{nodes: utils.NewCache[string, *classview.PackageNode]()}
}

// Save indexes node if its URI names a .java file
func (s *SourceIndex) Save(node *classview.PackageNode) {
	if node == nil {
		return
	}
	raw, ok := node.URI().Get()
	if !ok {
		return
	}
	key, ok := normalizeSourceURI(raw)
	if !ok {
		return
	}
	s.nodes.Set(key, node)
}

// SaveAll indexes every node
func (s *SourceIndex) SaveAll(nodes []*classview.PackageNode) {
	for _, node := range nodes {
		s.Save(node)
	}
}

// Node returns the node indexed under uri
func (s *SourceIndex) Node(uri string) (*classview.PackageNode, bool) {
	key, ok := normalizeSourceURI(uri)
	if !ok {
		return nil, false
	}
	return s.nodes.Get(key)
}

// Clear drops every entry
func (s *SourceIndex) Clear() {
	s.nodes.Clear()
}

// Len returns the number of indexed files
func (s *SourceIndex) Len() int {
	return s.nodes.Size()
}

func normalizeSourceURI(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	normalized := parsed.String()
	if path.Ext(parsed.Path) != ".java" {
		return "", false
	}
	return normalized, true
}
