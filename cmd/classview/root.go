package main

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/toyz/classview/internal/utils"
)

// rootOptions holds the global flags
type rootOptions struct {
	configFile string
	snapshot   string
	verbose    bool
	quiet      bool
	noColor    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "classview",
		Short: "Browse a Java project tree",
		Long: `classview shows the classpath tree of Java projects: workspaces, projects,
containers, package roots, packages, types and plain files.

Trees are read from a snapshot file (TOML) recorded by a language server or
written by hand. The snapshot is named with --snapshot or the snapshot
setting in classview.toml.

Examples:
  classview tree --depth 2           Print the first two levels
  classview reveal 'project(demo) > packageRoot(src/main/java)'
  classview watch                    Re-print whenever the workspace changes
  classview export tree.toml --depth 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is ./classview.toml or the user config dir)")
	flags.StringVar(&opts.snapshot, "snapshot", "", "snapshot file to read trees from")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only print errors")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(newTreeCommand(opts))
	cmd.AddCommand(newRevealCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newKindsCommand())
	return cmd
}

// Execute runs the CLI with args and returns the process exit code
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	if err := cmd.ExecuteContext(ctx); err != nil {
		reportError(utils.NewQuietDiagnostics().WithWriters(out, errOut), err)
		return 1
	}
	return 0
}

// reportError prints err and any suggestions it carries
func reportError(diagnostics *utils.DiagnosticSystem, err error) {
	diagnostics.Error("%v", err)

	var hinted interface{ Suggestions() []string }
	if stderrors.As(err, &hinted) {
		for _, hint := range hinted.Suggestions() {
			diagnostics.Error("  hint: %s", hint)
		}
	}
}
