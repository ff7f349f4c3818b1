// Package snapshot reads and writes project trees stored as TOML, and serves
// them to the explorer as a Source.
//
// A snapshot lists one table per workspace folder, each holding the folder's
// project nodes with their children nested below:
//
//	[[workspace]]
//	folder = "/ws/demo"
//
//	  [[workspace.node]]
//	  name = "demo"
//	  kind = "project"
//	  path = "/demo"
//	  uri = "file:///ws/demo"
//
//	    [[workspace.node.children]]
//	    name = "src/main/java"
//	    kind = "packageRoot"
package snapshot

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/pkg/classview"
)

// Document is a decoded snapshot
type Document struct {
	Workspaces []Workspace `toml:"workspace"`
}

// Workspace holds the project nodes of one workspace folder
type Workspace struct {
	Folder string `toml:"folder"`
	Nodes  []Node `toml:"node,omitempty"`
}

// Node is the stored form of a PackageNode. Leaf marks a node whose children
// are known to be empty, as opposed to not listed. A nil Path is an absent
// path; an empty one is present.
type Node struct {
	Name     string  `toml:"name"`
	Kind     string  `toml:"kind"`
	Path     *string `toml:"path,omitempty"`
	URI      string `toml:"uri,omitempty"`
	Module   string `toml:"module,omitempty"`
	Leaf     bool   `toml:"leaf,omitempty"`
	Children []Node `toml:"children,omitempty"`
}

// Decode reads a snapshot and checks every node's kind
func Decode(r io.Reader) (*Document, error) {
	return decode(r, "")
}

func decode(r io.Reader, file string) (*Document, error) {
	var doc Document
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&doc); err != nil {
		return nil, decodeError(err, file)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode writes doc as TOML
func Encode(w io.Writer, doc *Document) error {
	enc := toml.NewEncoder(w).SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.UnknownErrorCode, "failed to encode snapshot", err)
	}
	return nil
}

// Validate reports every node with a missing name or kind, or a kind that is
// not a NodeKind name
func (d *Document) Validate() error {
	var problems *errors.MultipleErrors
	for i, ws := range d.Workspaces {
		if strings.TrimSpace(ws.Folder) == "" {
			errors.AddToMultiple(&problems, errors.NewValidationError(
				fmt.Sprintf("workspace[%d].folder", i), "a folder path", ws.Folder))
		}
		for j, node := range ws.Nodes {
			validateNode(node, fmt.Sprintf("workspace[%d].node[%d]", i, j), &problems)
		}
	}
	return problems.ErrOrNil()
}

func validateNode(node Node, trail string, problems **errors.MultipleErrors) {
	switch {
	case node.Name == "":
		errors.AddToMultiple(problems, errors.NewValidationError(trail+".name", "a node name", node.Name))
	case node.Kind == "":
		errors.AddToMultiple(problems, errors.NewValidationError(trail+".kind", "a node kind", node.Kind))
	default:
		if _, err := classview.ParseNodeKind(node.Kind); err != nil {
			syntaxErr := errors.NewSyntaxErrorWithToken("unknown node kind", node.Kind, -1).WithCause(err)
			syntaxErr.WithContext("node", trail).WithContext("name", node.Name)
			errors.AddToMultiple(problems, syntaxErr)
		}
	}
	for i, child := range node.Children {
		validateNode(child, fmt.Sprintf("%s.children[%d]", trail, i), problems)
	}
}

// Folders returns the workspace folders in document order
func (d *Document) Folders() []string {
	folders := make([]string, 0, len(d.Workspaces))
	for _, ws := range d.Workspaces {
		folders = append(folders, ws.Folder)
	}
	return folders
}

// Trees builds every stored project node with its full subtree
func (d *Document) Trees() []*classview.PackageNode {
	var trees []*classview.PackageNode
	for _, ws := range d.Workspaces {
		for _, node := range ws.Nodes {
			trees = append(trees, node.build(true))
		}
	}
	return trees
}

// AddWorkspace stores nodes and their listed subtrees under folder
func (d *Document) AddWorkspace(folder string, nodes []*classview.PackageNode) {
	ws := Workspace{Folder: folder}
	for _, node := range nodes {
		if node != nil {
			ws.Nodes = append(ws.Nodes, FromPackageNode(node))
		}
	}
	d.Workspaces = append(d.Workspaces, ws)
}

// FromPackageNode converts a node and its present children to stored form
func FromPackageNode(n *classview.PackageNode) Node {
	stored := Node{
		Name:   n.Name().OrElse(""),
		URI:    n.URI().OrElse(""),
		Module: n.ModuleName().OrElse(""),
	}
	if path, ok := n.Path().Get(); ok {
		stored.Path = &path
	}
	if kind, ok := n.Kind().Get(); ok {
		stored.Kind = kind.String()
	}
	if children, ok := n.Children().Get(); ok {
		stored.Leaf = len(children) == 0
		for _, child := range children {
			if child != nil {
				stored.Children = append(stored.Children, FromPackageNode(child))
			}
		}
	}
	return stored
}

// build turns the stored node into a PackageNode. Only a deep build sets
// children; a shallow node leaves them absent to be fetched later.
func (n Node) build(deep bool) *classview.PackageNode {
	kind, _ := classview.ParseNodeKind(n.Kind)
	var node *classview.PackageNode
	if n.Path != nil {
		node = classview.NewPackageNode(n.Name, *n.Path, kind)
	} else {
		node = classview.NewPathlessNode(n.Name, kind)
	}
	if n.URI != "" {
		node.SetURI(n.URI)
	}
	if n.Module != "" {
		node.SetModuleName(n.Module)
	}
	if deep && (n.Leaf || len(n.Children) > 0) {
		children := make([]*classview.PackageNode, 0, len(n.Children))
		for _, child := range n.Children {
			children = append(children, child.build(true))
		}
		node.SetChildren(children)
	}
	return node
}

func decodeError(err error, file string) error {
	var strict *toml.StrictMissingError
	if stderrors.As(err, &strict) && len(strict.Errors) > 0 {
		first := &strict.Errors[0]
		row, col := first.Position()
		return errors.NewSyntaxErrorWithToken("unknown field in snapshot", strings.Join(first.Key(), "."), -1).
			WithLocation(errors.SourceLocation{File: file, Line: row, Column: col}).
			WithSuggestion("Node tables accept name, kind, path, uri, module, leaf and children")
	}

	var decodeErr *toml.DecodeError
	if stderrors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return errors.WrapParseError("snapshot", decodeErr).
			WithLocation(errors.SourceLocation{File: file, Line: row, Column: col})
	}

	return errors.WrapParseError("snapshot", err).
		WithLocation(errors.SourceLocation{File: file})
}
