package explorer

import (
	"context"
	"sync"

	"github.com/toyz/classview/pkg/classview"
)

// fakeSource serves a fixed tree and counts how often children are fetched
type fakeSource struct {
	mu       sync.Mutex
	projects map[string][]*classview.PackageNode
	children map[string][]*classview.PackageNode // keyed by node uri
	fetches  map[string]int
	err      error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		projects: make(map[string][]*classview.PackageNode),
		children: make(map[string][]*classview.PackageNode),
		fetches:  make(map[string]int),
	}
}

func (f *fakeSource) Projects(_ context.Context, folderURI string) ([]*classview.PackageNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.fetches[folderURI]++
	return f.projects[folderURI], nil
}

func (f *fakeSource) Children(_ context.Context, node *classview.PackageNode) ([]*classview.PackageNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	uri := node.URI().OrElse("")
	f.fetches[uri]++
	// Hand out a fresh slice each time, like a real producer would
	return append([]*classview.PackageNode(nil), f.children[uri]...), nil
}

func (f *fakeSource) fetchCount(uri string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[uri]
}

func newNode(name, path, uri string, kind classview.NodeKind) *classview.PackageNode {
	node := classview.NewPackageNode(name, path, kind)
	if uri != "" {
		node.SetURI(uri)
	}
	return node
}

// demoTree is a single-project workspace rooted at /ws/demo
type demoTree struct {
	source      *fakeSource
	project     *classview.PackageNode
	packageRoot *classview.PackageNode
	pkg         *classview.PackageNode
	mainType    *classview.PackageNode
	container   *classview.PackageNode
	classFile   *classview.PackageNode
}

const (
	demoFolder      = "/ws/demo"
	demoProjectURI  = "file:///ws/demo"
	demoRootURI     = "file:///ws/demo/src/main/java"
	demoPackageURI  = "file:///ws/demo/src/main/java/com/example"
	demoMainURI     = "file:///ws/demo/src/main/java/com/example/Main.java"
	demoContainer   = "file:///ws/demo/JRE_CONTAINER"
	demoClassURI    = "jdt://contents/rt.jar/java.lang/String.class"
	demoContainerID = "org.eclipse.jdt.launching.JRE_CONTAINER"
)

func newDemoTree() *demoTree {
	tree := &demoTree{
		source:      newFakeSource(),
		project:     newNode("demo", "/demo", demoProjectURI, classview.KindProject),
		packageRoot: newNode("src/main/java", "/demo/src/main/java", demoRootURI, classview.KindPackageRoot),
		pkg:         newNode("com.example", "/demo/src/main/java/com/example", demoPackageURI, classview.KindPackage),
		mainType:    newNode("Main", "/demo/src/main/java/com/example/Main.java", demoMainURI, classview.KindPrimaryType),
		container:   newNode("JRE System Library", demoContainerID, demoContainer, classview.KindContainer),
		classFile:   newNode("String.class", "/rt.jar/java/lang/String.class", demoClassURI, classview.KindFile),
	}

	src := tree.source
	src.projects[demoProjectURI] = []*classview.PackageNode{tree.project}
	src.children[demoProjectURI] = []*classview.PackageNode{tree.packageRoot, tree.container}
	src.children[demoRootURI] = []*classview.PackageNode{tree.pkg}
	src.children[demoPackageURI] = []*classview.PackageNode{tree.mainType}
	src.children[demoContainer] = []*classview.PackageNode{tree.classFile}
	return tree
}

type matchFunc func(*classview.PackageNode) bool

func (m matchFunc) Matches(node *classview.PackageNode) bool { return m(node) }

func byName(name string) Matcher {
	return matchFunc(func(node *classview.PackageNode) bool {
		return node.Name().OrElse("") == name
	})
}
