package explorer

import (
	"context"

	"github.com/toyz/classview/pkg/classview"
)

// RevealPaths walks from a root project down the tree, one matcher per level.
// The first matcher selects the project; with several workspace folders open
// projects are collected from every folder. It returns false when any level
// has no match.
func (p *TreeProvider) RevealPaths(ctx context.Context, steps []Matcher) (*classview.PackageNode, bool, error) {
	if len(steps) == 0 {
		return nil, false, nil
	}

	projects, err := p.rootProjects(ctx)
	if err != nil {
		return nil, false, err
	}

	current := findMatch(projects, steps[0])
	if current == nil {
		return nil, false, nil
	}

	for _, step := range steps[1:] {
		children, err := p.Children(ctx, current)
		if err != nil {
			return nil, false, err
		}
		current = findMatch(children, step)
		if current == nil {
			return nil, false, nil
		}
	}
	return current, true, nil
}

func (p *TreeProvider) rootProjects(ctx context.Context) ([]*classview.PackageNode, error) {
	p.mu.Lock()
	roots := p.roots
	p.mu.Unlock()

	if roots == nil {
		var err error
		roots, err = p.Children(ctx, nil)
		if err != nil {
			return nil, err
		}
	}

	if len(roots) == 0 {
		return roots, nil
	}
	if kind, _ := roots[0].Kind().Get(); kind == classview.KindProject {
		return roots, nil
	}

	var projects []*classview.PackageNode
	for _, workspaceNode := range roots {
		children, err := p.Children(ctx, workspaceNode)
		if err != nil {
			return nil, err
		}
		projects = append(projects, children...)
	}
	return projects, nil
}

func findMatch(nodes []*classview.PackageNode, m Matcher) *classview.PackageNode {
	for _, node := range nodes {
		if m.Matches(node) {
			return node
		}
	}
	return nil
}
