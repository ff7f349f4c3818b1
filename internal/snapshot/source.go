package snapshot

import (
	"context"
	"path"

	"github.com/toyz/classview/internal/explorer"
	"github.com/toyz/classview/pkg/classview"
)

// treeSource serves a document one level at a time, handing out fresh
// nodes on every call
type treeSource struct {
	projects map[string][]Node // keyed by folder URI
	children map[string][]Node // keyed by node URI
}

// Source returns an explorer.Source over the document. Children are looked
// up by node URI; nodes without a URI have no children to serve.
func (d *Document) Source() explorer.Source {
	src := &treeSource{
		projects: make(map[string][]Node),
		children: make(map[string][]Node),
	}
	for _, ws := range d.Workspaces {
		key := folderKey(ws.Folder)
		src.projects[key] = append(src.projects[key], ws.Nodes...)
		for _, node := range ws.Nodes {
			src.index(node)
		}
	}
	return src
}

func (s *treeSource) index(node Node) {
	if node.URI != "" {
		if _, seen := s.children[node.URI]; !seen {
			s.children[node.URI] = node.Children
		}
	}
	for _, child := range node.Children {
		s.index(child)
	}
}

func (s *treeSource) Projects(ctx context.Context, folderURI string) ([]*classview.PackageNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc, err := explorer.ParseURI(folderURI)
	if err != nil {
		return nil, err
	}
	return shallow(s.projects[folderKey(loc.FSPath)]), nil
}

func (s *treeSource) Children(ctx context.Context, node *classview.PackageNode) ([]*classview.PackageNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uri, ok := node.URI().Get()
	if !ok {
		return []*classview.PackageNode{}, nil
	}
	return shallow(s.children[uri]), nil
}

func shallow(nodes []Node) []*classview.PackageNode {
	out := make([]*classview.PackageNode, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node.build(false))
	}
	return out
}

func folderKey(folder string) string {
	return explorer.FileURI(path.Clean(folder))
}
