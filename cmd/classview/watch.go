package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/toyz/classview/internal/settings"
	"github.com/toyz/classview/internal/watch"
	"github.com/toyz/classview/pkg/classview"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	tree := &treeOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the project tree and print it again whenever it is refreshed",
		Long: `watch prints the tree, then follows the workspace folders and the config
file. Creating or deleting files refreshes the enclosing node; with
show_members on, saving a Java file refreshes its type. Edits to the
config file apply refresh_delay, auto_refresh, show_members and snapshot
without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tree.validate(); err != nil {
				return err
			}

			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			w := &treeWatcher{app: a, tree: tree, cmd: cmd, fixedSnapshot: opts.snapshot != ""}
			return w.run(cmd.Context())
		},
	}
	tree.bind(cmd)
	return cmd
}

// treeWatcher re-renders the tree after every refresh
type treeWatcher struct {
	app           *app
	tree          *treeOptions
	cmd           *cobra.Command
	fixedSnapshot bool

	showMembers atomic.Bool

	mu    sync.Mutex
	roots []*classview.PackageNode
}

func (w *treeWatcher) run(ctx context.Context) error {
	a := w.app
	current := a.settings.Settings()
	w.showMembers.Store(current.ShowMembers)

	handler, err := watch.NewSyncHandler(watch.Config{
		Workspace:   a.workspace,
		Lookup:      a.provider.Cache(),
		Refresher:   a.provider,
		ShowMembers: w.showMembers.Load,
		Diagnostics: a.diagnostics,
	})
	if err != nil {
		return err
	}

	if err := w.render(ctx, nil); err != nil {
		return err
	}

	id := a.provider.Subscribe(func(node *classview.PackageNode) {
		if ctx.Err() != nil {
			return
		}
		if err := w.render(ctx, node); err != nil {
			a.diagnostics.Warn("render: %v", err)
		}
	})
	defer a.provider.Unsubscribe(id)

	if err := handler.Update(ctx, current.AutoRefresh); err != nil {
		return err
	}
	defer handler.Close()

	if a.settings.Watch(func(old, updated settings.Settings) {
		w.apply(ctx, handler, old, updated)
	}) {
		a.diagnostics.Verbose("following %s", a.settings.ConfigFile())
	}

	if current.AutoRefresh {
		a.diagnostics.Info("watching %d workspace folder(s), press Ctrl+C to stop", a.workspace.Len())
	} else {
		a.diagnostics.Info("auto refresh is off, waiting for config changes")
	}

	<-ctx.Done()
	return nil
}

// apply reacts to an edited config file
func (w *treeWatcher) apply(ctx context.Context, handler *watch.SyncHandler, old, updated settings.Settings) {
	a := w.app

	if old.RefreshDelay != updated.RefreshDelay {
		a.provider.SetRefreshDelay(updated.RefreshDelay)
		a.diagnostics.Verbose("refresh delay is now %s", a.provider.RefreshDelay())
	}
	if old.ShowMembers != updated.ShowMembers {
		w.showMembers.Store(updated.ShowMembers)
	}
	if old.AutoRefresh != updated.AutoRefresh {
		if err := handler.Update(ctx, updated.AutoRefresh); err != nil {
			a.diagnostics.Warn("auto refresh: %v", err)
		}
	}
	if old.Snapshot != updated.Snapshot && !w.fixedSnapshot && updated.Snapshot != "" {
		a.source.SetPath(updated.Snapshot)
		a.provider.Refresh(false, nil)
	}
}

// render prints the tree. A nil node means the whole tree was refreshed and
// the roots are listed again; otherwise only missing children are fetched.
func (w *treeWatcher) render(ctx context.Context, node *classview.PackageNode) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	a := w.app
	if node == nil || w.roots == nil {
		roots, err := a.provider.Children(ctx, nil)
		if err != nil {
			return err
		}
		w.roots = roots
	}
	if err := a.expandAll(ctx, w.roots, w.tree.depth); err != nil {
		return err
	}

	if node != nil {
		a.diagnostics.Section(fmt.Sprintf("refreshed %s", node.Name().OrElse("<unnamed>")))
	} else {
		a.diagnostics.Section("tree")
	}
	var err error
	a.provider.ReadTree(func() {
		err = w.tree.renderer(a, w.cmd).Render(w.roots)
	})
	return err
}
