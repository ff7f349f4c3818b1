package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoSnapshot = "../../internal/snapshot/testdata/demo.toml"

const demoTree = `demo (project)
├── src/main/java (packageRoot)
│   └── com.example (package)
│       └── Main (primaryType)
└── JRE System Library (container)
    └── rt.jar (packageRoot)
`

// isolate keeps user configuration and environment overrides out of a test
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"SNAPSHOT", "WORKSPACE_FOLDERS", "REFRESH_DELAY", "AUTO_REFRESH", "SHOW_MEMBERS"} {
		t.Setenv("CLASSVIEW_"+key, "")
		require.NoError(t, os.Unsetenv("CLASSVIEW_"+key))
	}
}

func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestTreeCommand(t *testing.T) {
	isolate(t)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "whole tree",
			args:     []string{"tree"},
			expected: demoTree,
		},
		{
			name:     "depth",
			args:     []string{"tree", "--depth", "2"},
			expected: "demo (project)\n├── src/main/java (packageRoot)\n└── JRE System Library (container)\n",
		},
		{
			name:     "roots with uri",
			args:     []string{"tree", "--depth", "1", "--uri"},
			expected: "demo (project)  file:///ws/demo\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--no-color", "--snapshot", demoSnapshot}, tt.args...)
			out, errOut, code := run(t, args...)
			require.Equal(t, 0, code, errOut)
			assert.Equal(t, tt.expected, out)
		})
	}

	t.Run("module names", func(t *testing.T) {
		out, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot, "tree", "--module")
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "└── rt.jar (packageRoot) [java.base]\n")
	})

	t.Run("negative depth", func(t *testing.T) {
		_, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot, "tree", "--depth", "-1")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "depth")
	})
}

func TestTreeCommand_Stats(t *testing.T) {
	isolate(t)

	out, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot, "tree", "--stats")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, demoTree+"\nTree\n   nodes: 6\n   roots: 1\n\n", out)

	out, errOut, code = run(t, "--no-color", "--snapshot", demoSnapshot, "tree", "--depth", "2", "--stats")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "   nodes: 3\n")

	out, errOut, code = run(t, "--no-color", "-q", "--snapshot", demoSnapshot, "tree", "--stats")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, demoTree, out)
}

func TestExportCommand(t *testing.T) {
	isolate(t)

	t.Run("whole tree reads back", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "export.toml")
		out, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot, "export", target)
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "[SUCCESS] wrote "+target)

		out, errOut, code = run(t, "--no-color", "--snapshot", target, "tree", "--module")
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "└── rt.jar (packageRoot) [java.base]\n")
		assert.Contains(t, out, "│       └── Main (primaryType)\n")
	})

	t.Run("depth cuts the stored tree", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "export.toml")
		_, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot, "export", "--depth", "2", target)
		require.Equal(t, 0, code, errOut)

		out, errOut, code := run(t, "--no-color", "--snapshot", target, "tree")
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, "demo (project)\n├── src/main/java (packageRoot)\n└── JRE System Library (container)\n", out)
	})

	t.Run("existing file needs force", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "export.toml")
		require.NoError(t, os.WriteFile(target, []byte("keep"), 0o644))

		_, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot, "export", target)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "already exists")
		assert.Contains(t, errOut, "--force")
		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(data))

		_, errOut, code = run(t, "--no-color", "--snapshot", demoSnapshot, "export", "-f", target)
		require.Equal(t, 0, code, errOut)
		data, err = os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), "[[workspace]]")
	})

	t.Run("missing directory", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "nope", "export.toml")
		_, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot, "export", target)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "does not exist")
	})
}

func TestTreeCommand_SnapshotFromConfig(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	data, err := os.ReadFile(demoSnapshot)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree.toml"), data, 0o644))

	config := filepath.Join(dir, "classview.toml")
	require.NoError(t, os.WriteFile(config, []byte("snapshot = \"tree.toml\"\n"), 0o644))

	out, errOut, code := run(t, "--no-color", "--config", config, "tree")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, demoTree, out)
}

func TestTreeCommand_Errors(t *testing.T) {
	isolate(t)

	t.Run("no snapshot", func(t *testing.T) {
		_, errOut, code := run(t, "--no-color", "tree")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "no snapshot file given")
		assert.Contains(t, errOut, "--snapshot")
	})

	t.Run("missing snapshot", func(t *testing.T) {
		_, errOut, code := run(t, "--no-color", "--snapshot", filepath.Join(t.TempDir(), "gone.toml"), "tree")
		assert.Equal(t, 1, code)
		assert.NotEmpty(t, errOut)
	})

	t.Run("verbose and quiet", func(t *testing.T) {
		_, errOut, code := run(t, "--snapshot", demoSnapshot, "-v", "-q", "tree")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "verbose")
	})
}

func TestRevealCommand(t *testing.T) {
	isolate(t)

	t.Run("package root", func(t *testing.T) {
		out, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot,
			"reveal", "project(demo) > packageRoot(src/main/java)")
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, "src/main/java (packageRoot)  file:///ws/demo/src/main/java\n", out)
	})

	t.Run("with children", func(t *testing.T) {
		out, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot,
			"reveal", "--children", "project(demo) > packageRoot(src/main/java)")
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "└── com.example (package)  file:///ws/demo/src/main/java/com/example\n")
	})

	t.Run("quoted name and path", func(t *testing.T) {
		out, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot,
			"reveal", `project(demo) > container("JRE System Library", org.eclipse.jdt.launching.JRE_CONTAINER) > packageRoot(rt.jar)`)
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, "rt.jar (packageRoot) [java.base]\n", out)
	})

	t.Run("no match", func(t *testing.T) {
		_, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot, "reveal", "project(other)")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "no node matches the query")
		assert.Contains(t, errOut, "classview tree")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, errOut, code := run(t, "--no-color", "--snapshot", demoSnapshot, "reveal", "module(java.base)")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "unknown node kind")
		assert.Contains(t, errOut, "classview kinds")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, code := run(t, "--no-color", "--snapshot", demoSnapshot, "reveal")
		assert.Equal(t, 1, code)
	})
}

func TestKindsCommand(t *testing.T) {
	out, errOut, code := run(t, "kinds")
	require.Equal(t, 0, code, errOut)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "1\tworkspace", lines[0])
	assert.Equal(t, "4\tpackageRoot", lines[3])
	assert.Equal(t, "8\tfile", lines[7])
}

// syncBuffer lets the test read output while the watch command writes it
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommand(t *testing.T) {
	isolate(t)

	ws := t.TempDir()
	src := filepath.Join(ws, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))

	dir := t.TempDir()
	snapshotFile := filepath.Join(dir, "tree.toml")
	require.NoError(t, os.WriteFile(snapshotFile, []byte(fmt.Sprintf(`[[workspace]]
folder = %q

  [[workspace.node]]
  name = "demo"
  kind = "project"
  path = "/demo"
  uri = "file://%s"

    [[workspace.node.children]]
    name = "src"
    kind = "folder"
    path = "/demo/src"
    uri = "file://%s"
    leaf = true
`, ws, filepath.ToSlash(ws), filepath.ToSlash(src))), 0o644))

	config := filepath.Join(dir, "classview.toml")
	require.NoError(t, os.WriteFile(config, []byte("refresh_delay = \"20ms\"\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out, errOut syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- Execute(ctx, []string{"--no-color", "--config", config, "--snapshot", snapshotFile, "watch"}, &out, &errOut)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "watching 1 workspace folder(s)")
	}, 5*time.Second, 20*time.Millisecond, errOut.String())
	assert.Contains(t, out.String(), "demo (project)\n└── src (folder)\n")

	require.NoError(t, os.WriteFile(filepath.Join(src, "Added.java"), []byte("class Added {}"), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "refreshed demo")
	}, 5*time.Second, 20*time.Millisecond, out.String())

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code, errOut.String())
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
