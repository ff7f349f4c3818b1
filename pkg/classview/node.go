// Package classview models one entry of a Java project's classpath tree as shown
// in a project explorer view.
package classview

// PackageNode is a single node of the classpath tree. The zero value has every
// field unset. A node exclusively owns its children and keeps no reference to
// its parent.
//
// PackageNode performs no validation and no synchronization; callers sharing a
// node across goroutines must guard it themselves.
type PackageNode struct {
	name       Optional[string]
	moduleName Optional[string] // Java 9+ module name
	path       Optional[string] // portable path string
	uri        Optional[string]
	kind       Optional[NodeKind]
	children   Optional[[]*PackageNode]
}

// NewPackageNode creates a node with name, path and kind set
func NewPackageNode(name, path string, kind NodeKind) *PackageNode {
	return &PackageNode{
		name: Some(name),
		path: Some(path),
		kind: Some(kind),
	}
}

// NewPathlessNode creates a node with name and kind set and no path
func NewPathlessNode(name string, kind NodeKind) *PackageNode {
	return &PackageNode{
		name: Some(name),
		kind: Some(kind),
	}
}

// Name returns the display name
func (n *PackageNode) Name() Optional[string] {
	return n.name
}

// SetModuleName sets the Java module name
func (n *PackageNode) SetModuleName(moduleName string) {
	n.moduleName = Some(moduleName)
}

// ModuleName returns the Java module name
func (n *PackageNode) ModuleName() Optional[string] {
	return n.moduleName
}

// Path returns the portable path string
func (n *PackageNode) Path() Optional[string] {
	return n.path
}

// Kind returns the node kind. There is no setter; kind is fixed at construction.
func (n *PackageNode) Kind() Optional[NodeKind] {
	return n.kind
}

// URI returns the resource locator
func (n *PackageNode) URI() Optional[string] {
	return n.uri
}

// SetURI sets the resource locator
func (n *PackageNode) SetURI(uri string) {
	n.uri = Some(uri)
}

// Children returns the child list exactly as it was last set
func (n *PackageNode) Children() Optional[[]*PackageNode] {
	return n.children
}

// SetChildren replaces the child list. The slice is stored as given; a nil
// slice marks the children as present but empty.
func (n *PackageNode) SetChildren(children []*PackageNode) {
	n.children = Some(children)
}

// ClearChildren marks the children as absent so they are fetched again
func (n *PackageNode) ClearChildren() {
	n.children = None[[]*PackageNode]()
}
