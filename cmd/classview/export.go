package main

import (
	"bytes"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/internal/snapshot"
	"github.com/toyz/classview/internal/utils/fileops"
	"github.com/toyz/classview/pkg/classview"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var (
		depth int
		force bool
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the expanded tree to a snapshot file",
		Long: `export lists the tree down to --depth levels and writes what it found as a
snapshot. Nodes below the cut keep their children unlisted, so reading the
file back fetches nothing past that level.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 0 {
				return errors.NewValidationError("depth", "zero or a positive number", "negative").
					WithSuggestion("Use --depth 0 to export the whole tree")
			}

			files := fileops.NewFileOps()
			target, err := files.PathValidator().ValidateAndCleanOptional(args[0])
			if err != nil {
				return err
			}
			if !force && files.PathValidator().Exists(target) {
				return errors.New(errors.FileSystemErrorCode, "export target already exists").
					WithContext("path", target).
					WithSuggestion("Pass --force to overwrite it")
			}
			if dir := filepath.Dir(target); !files.PathValidator().IsDir(dir) {
				return errors.New(errors.FileSystemErrorCode, "export directory does not exist").
					WithContext("path", dir)
			}

			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			roots, err := a.expand(cmd.Context(), depth)
			if err != nil {
				return err
			}

			doc := exportDocument(a.workspace.Folders(), roots)
			var buf bytes.Buffer
			if err := snapshot.Encode(&buf, doc); err != nil {
				return err
			}
			if err := files.WriteFile(target, buf.Bytes(), 0o644); err != nil {
				return err
			}
			a.diagnostics.Success("wrote %s", target)
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "levels to export, 0 for all")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// exportDocument groups roots by workspace folder. A single folder lists its
// projects as roots; several folders list one workspace node each.
func exportDocument(folders []string, roots []*classview.PackageNode) *snapshot.Document {
	doc := &snapshot.Document{}
	if len(folders) == 1 {
		doc.AddWorkspace(folders[0], roots)
		return doc
	}
	for _, root := range roots {
		if root == nil {
			continue
		}
		folder, ok := root.Path().Get()
		if !ok {
			continue
		}
		projects, _ := root.Children().Get()
		doc.AddWorkspace(folder, projects)
	}
	return doc
}
