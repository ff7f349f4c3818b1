package main

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/internal/explorer"
	"github.com/toyz/classview/internal/settings"
	"github.com/toyz/classview/internal/snapshot"
	"github.com/toyz/classview/internal/utils"
	"github.com/toyz/classview/pkg/classview"
)

// app is everything a command needs once flags and settings are resolved
type app struct {
	diagnostics *utils.DiagnosticSystem
	settings    *settings.Manager
	source      *liveSource
	workspace   *explorer.Workspace
	provider    *explorer.TreeProvider
	color       bool
}

func (o *rootOptions) newDiagnostics(cmd *cobra.Command) *utils.DiagnosticSystem {
	var diagnostics *utils.DiagnosticSystem
	switch {
	case o.quiet:
		diagnostics = utils.NewQuietDiagnostics()
	case o.verbose:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	diagnostics = diagnostics.WithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if o.noColor {
		diagnostics = diagnostics.WithColors(false)
	}
	return diagnostics
}

func (o *rootOptions) useColor() bool {
	return !o.noColor && utils.ShouldUseColors()
}

// load resolves settings, reads the snapshot and builds the tree provider
func (o *rootOptions) load(cmd *cobra.Command) (*app, error) {
	diagnostics := o.newDiagnostics(cmd)

	mgr, err := settings.Load(settings.LoadOptions{ConfigFile: o.configFile})
	if err != nil {
		return nil, err
	}
	if file := mgr.ConfigFile(); file != "" {
		diagnostics.Verbose("using config file %s", file)
	}
	current := mgr.Settings()

	path := o.snapshot
	if path == "" {
		path = current.Snapshot
	}
	if path == "" {
		return nil, errors.ConfigurationError(settings.KeySnapshot, "no snapshot file given").
			WithSuggestion("Pass --snapshot or set snapshot in classview.toml")
	}

	source := newLiveSource(snapshot.NewLoader(), path)
	doc, err := source.document()
	if err != nil {
		return nil, err
	}

	folders := current.WorkspaceFolders
	if len(folders) == 0 {
		folders = doc.Folders()
	}
	workspace := explorer.NewWorkspace(folders...)

	provider := explorer.NewTreeProvider(explorer.Options{
		Workspace:    workspace,
		Source:       source,
		RefreshDelay: current.RefreshDelay,
		Diagnostics:  diagnostics,
	})

	diagnostics.Verbose("loaded %s with %d workspace folder(s)", path, workspace.Len())
	return &app{
		diagnostics: diagnostics,
		settings:    mgr,
		source:      source,
		workspace:   workspace,
		provider:    provider,
		color:       o.useColor(),
	}, nil
}

func (a *app) close() {
	a.provider.Close()
}

// expand lists the roots and their descendants down to depth levels.
// A depth of zero or less expands everything.
func (a *app) expand(ctx context.Context, depth int) ([]*classview.PackageNode, error) {
	roots, err := a.provider.Children(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := a.expandAll(ctx, roots, depth); err != nil {
		return nil, err
	}
	return roots, nil
}

// expandAll fetches whatever is missing below roots down to depth levels
func (a *app) expandAll(ctx context.Context, roots []*classview.PackageNode, depth int) error {
	for _, root := range roots {
		if err := a.expandNode(ctx, root, 1, depth); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) expandNode(ctx context.Context, node *classview.PackageNode, level, depth int) error {
	if depth > 0 && level >= depth {
		return nil
	}
	children, err := a.provider.Children(ctx, node)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := a.expandNode(ctx, child, level+1, depth); err != nil {
			return err
		}
	}
	return nil
}

// liveSource serves the snapshot at path and picks up edits to the file on
// the next listing
type liveSource struct {
	loader *snapshot.Loader

	mu     sync.Mutex
	path   string
	doc    *snapshot.Document
	source explorer.Source
}

func newLiveSource(loader *snapshot.Loader, path string) *liveSource {
	return &liveSource{loader: loader, path: path}
}

// SetPath switches to another snapshot file
func (s *liveSource) SetPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
}

func (s *liveSource) document() (*snapshot.Document, error) {
	_, doc, err := s.current()
	return doc, err
}

func (s *liveSource) current() (explorer.Source, *snapshot.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loader.Load(s.path)
	if err != nil {
		return nil, nil, err
	}
	if doc != s.doc {
		s.doc = doc
		s.source = doc.Source()
	}
	return s.source, s.doc, nil
}

func (s *liveSource) Projects(ctx context.Context, folderURI string) ([]*classview.PackageNode, error) {
	source, _, err := s.current()
	if err != nil {
		return nil, err
	}
	return source.Projects(ctx, folderURI)
}

func (s *liveSource) Children(ctx context.Context, node *classview.PackageNode) ([]*classview.PackageNode, error) {
	source, _, err := s.current()
	if err != nil {
		return nil, err
	}
	return source.Children(ctx, node)
}
