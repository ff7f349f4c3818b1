package explorer

import (
	"context"

	"github.com/toyz/classview/pkg/classview"
)

// Source produces tree nodes. It stands in for the language server that
// computes classpaths; implementations own all resolution logic.
type Source interface {
	// Projects lists the project nodes of the workspace folder at folderURI
	Projects(ctx context.Context, folderURI string) ([]*classview.PackageNode, error)
	// Children lists the direct children of node
	Children(ctx context.Context, node *classview.PackageNode) ([]*classview.PackageNode, error)
}

// Matcher selects a node during a reveal walk
type Matcher interface {
	Matches(node *classview.PackageNode) bool
}
