package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/internal/render"
	"github.com/toyz/classview/pkg/classview"
)

type treeOptions struct {
	showURI    bool
	showModule bool
	depth      int
}

func (t *treeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&t.showURI, "uri", false, "print each node's uri")
	cmd.Flags().BoolVar(&t.showModule, "module", false, "print each node's module name")
	cmd.Flags().IntVar(&t.depth, "depth", 0, "levels to print, 0 for all")
}

// countNodes counts the non-nil nodes within depth levels of roots
func countNodes(roots []*classview.PackageNode, level, depth int) int {
	count := 0
	for _, node := range roots {
		if node == nil {
			continue
		}
		count++
		if depth > 0 && level >= depth {
			continue
		}
		if children, ok := node.Children().Get(); ok {
			count += countNodes(children, level+1, depth)
		}
	}
	return count
}

func (t *treeOptions) validate() error {
	if t.depth < 0 {
		return errors.NewValidationError("depth", "zero or a positive number", "negative").
			WithSuggestion("Use --depth 0 to print the whole tree")
	}
	return nil
}

func (t *treeOptions) renderer(a *app, cmd *cobra.Command) *render.Renderer {
	return &render.Renderer{
		Writer:     cmd.OutOrStdout(),
		Color:      a.color,
		ShowURI:    t.showURI,
		ShowModule: t.showModule,
		MaxDepth:   t.depth,
	}
}

func newTreeCommand(opts *rootOptions) *cobra.Command {
	tree := &treeOptions{}
	var stats bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the project tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tree.validate(); err != nil {
				return err
			}

			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			roots, err := a.expand(cmd.Context(), tree.depth)
			if err != nil {
				return err
			}
			if err := tree.renderer(a, cmd).Render(roots); err != nil {
				return err
			}
			if stats {
				a.diagnostics.Summary("Tree", map[string]interface{}{
					"roots": len(roots),
					"nodes": countNodes(roots, 1, tree.depth),
				})
			}
			return nil
		},
	}
	tree.bind(cmd)
	cmd.Flags().BoolVar(&stats, "stats", false, "print node counts after the tree")
	return cmd
}
