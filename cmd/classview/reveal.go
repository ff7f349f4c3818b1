package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/internal/explorer"
	"github.com/toyz/classview/internal/render"
	"github.com/toyz/classview/internal/selector"
	"github.com/toyz/classview/pkg/classview"
)

func newRevealCommand(opts *rootOptions) *cobra.Command {
	var children bool

	cmd := &cobra.Command{
		Use:   "reveal <query>",
		Short: "Walk down the tree and print the node a query names",
		Long: `reveal walks from a project down the tree one step per level and prints
the node at the end of the walk.

A query is a list of steps separated by '>'. Each step names a kind and a
node name, optionally followed by the node path:

  project(demo) > packageRoot(src/main/java) > package(com.example)
  project(demo) > container("JRE System Library", org.eclipse.jdt.launching.JRE_CONTAINER)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selectors, err := selector.Parse(args[0])
			if err != nil {
				return err
			}

			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			a.diagnostics.Verbose("revealing %s", selector.Format(selectors))

			steps := make([]explorer.Matcher, len(selectors))
			for i, s := range selectors {
				steps[i] = s
			}

			node, found, err := a.provider.RevealPaths(cmd.Context(), steps)
			if err != nil {
				return err
			}
			if !found {
				return errors.New(errors.WorkspaceErrorCode, "no node matches the query").
					WithContext("query", args[0]).
					WithSuggestion("Run `classview tree` to see what the snapshot holds")
			}

			depth := 1
			if children {
				if _, err := a.provider.Children(cmd.Context(), node); err != nil {
					return err
				}
				depth = 2
			}

			r := &render.Renderer{
				Writer:     cmd.OutOrStdout(),
				Color:      a.color,
				ShowURI:    true,
				ShowModule: true,
				MaxDepth:   depth,
			}
			return r.Render([]*classview.PackageNode{node})
		},
	}
	cmd.Flags().BoolVar(&children, "children", false, "also print the node's direct children")
	return cmd
}
